// Package cli is the shopctl admin tool: it works on one owner's data in the
// configured store, outside any HTTP session.
package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go-myshop-agent/internal/config"
	"go-myshop-agent/internal/models"
	"go-myshop-agent/internal/reconcile"
	"go-myshop-agent/internal/session"
	"go-myshop-agent/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Owner   string
	Format  string // "json" | "text"
	Verbose bool

	open Opener
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Opener returns the store backend, the sales sync mode and a logger.
type Opener func(ctx context.Context, verbose bool) (*store.Backend, reconcile.SalesMode, *logrus.Logger, error)

// NewRootCommand creates the root command, reading the store settings from
// the environment.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(openFromEnv)
}

// NewRootCommandWith creates the root command on top of open.
func NewRootCommandWith(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "shopctl",
		Short: "shopctl - MyShop admin tool",
		Long:  "Inspect, seed and export the business data one owner keeps in the MyShop store.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Owner == "" {
				return fmt.Errorf("--owner is required")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Owner, "owner", "", "owner (user) id to work on")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewStateCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))
	cmd.AddCommand(NewDataCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))

	return cmd
}

func openFromEnv(ctx context.Context, verbose bool) (*store.Backend, reconcile.SalesMode, *logrus.Logger, error) {
	cfg, _ := config.Load()
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log := config.NewLogger(level)

	mode, err := reconcile.ParseSalesMode(cfg.SalesSyncMode)
	if err != nil {
		return nil, "", nil, err
	}
	backend, err := store.Open(ctx, store.Options{
		Driver:    cfg.DBDriver,
		DSN:       cfg.DBDSN,
		RedisAddr: cfg.RedisAddr,
		CacheTTL:  cfg.CacheTTL,
	}, log)
	if err != nil {
		return nil, "", nil, err
	}
	return backend, mode, log, nil
}

// withSession opens the store, signs a session in as the owner and runs fn.
func withSession(ctx context.Context, opts *RootOptions, errOut io.Writer, fn func(*session.Session) error) error {
	backend, mode, log, err := opts.open(ctx, opts.Verbose)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer backend.Close()
	log.SetOutput(errOut)

	s := session.New(backend.Gateway, reconcile.New(backend.Gateway, mode, log), log)
	if err := s.SignIn(ctx, models.Authenticated{ID: opts.Owner}); err != nil {
		return err
	}
	defer s.Wait()
	return fn(s)
}
