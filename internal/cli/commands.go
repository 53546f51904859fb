package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go-myshop-agent/internal/reports"
	"go-myshop-agent/internal/session"
)

// NewStateCommand creates the state command group.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect the owner's business state",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print the owner's inventory, sales, customers and expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(s *session.Session) error {
				return printState(cmd.OutOrStdout(), rootOpts.Format, s)
			})
		},
	})
	return cmd
}

func printState(w io.Writer, format string, s *session.Session) error {
	state := s.State()
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"profile": s.Profile(), "state": state})
	}

	fmt.Fprintf(w, "%s\n", s.Profile().BusinessName)
	fmt.Fprintf(w, "  products:  %d\n", len(state.Inventory))
	fmt.Fprintf(w, "  sales:     %d\n", len(state.Sales))
	fmt.Fprintf(w, "  customers: %d\n", len(state.Customers))
	fmt.Fprintf(w, "  expenses:  %d\n", len(state.Expenses))
	sum := reports.Summarize(state)
	fmt.Fprintf(w, "  revenue:   %.2f\n", sum.TotalRevenue)
	fmt.Fprintf(w, "  profit:    %.2f\n", sum.NetProfit)
	return nil
}

// NewDemoCommand creates the demo command group.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Manage demo data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "load",
		Short: "Replace the owner's data with the demo shop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(s *session.Session) error {
				state, err := s.LoadDemo(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "loaded demo data: %d products, %d sales, %d customers, %d expenses\n",
					len(state.Inventory), len(state.Sales), len(state.Customers), len(state.Expenses))
				return nil
			})
		},
	})
	return cmd
}

// NewDataCommand creates the data command group.
func NewDataCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every record the owner has",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete data for %s without --yes", rootOpts.Owner)
			}
			return withSession(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(s *session.Session) error {
				if err := s.ClearData(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared data for %s\n", rootOpts.Owner)
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")

	cmd := &cobra.Command{
		Use:   "data",
		Short: "Manage the owner's stored data",
	}
	cmd.AddCommand(clearCmd)
	return cmd
}

// NewReportCommand creates the report command group.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	export := &cobra.Command{
		Use:   "export",
		Short: "Write the owner's data to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(s *session.Session) error {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := reports.ExportWorkbook(f, s.State(), s.Profile()); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
				return nil
			})
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "report.xlsx", "output file")

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build reports",
	}
	cmd.AddCommand(export)
	return cmd
}
