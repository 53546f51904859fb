package mapper

import "go-myshop-agent/internal/store"

// SchemaVersion is the row layout written by this mapper. Version 1 rows
// stored in-memory field names verbatim and a single product category.
const SchemaVersion = 2

// Schema describes how one entity type is laid out remotely.
type Schema struct {
	Version int
	// Renames maps an in-memory field name to the column it is written to.
	// Reads accept both names and prefer the in-memory one.
	Renames map[string]string
}

// Schemas is the rename table per collection. A future migration is a new
// entry here, not a new branch in the mapping code.
var Schemas = map[store.Collection]Schema{
	store.Inventory: {Version: SchemaVersion},
	store.Sales: {
		Version: SchemaVersion,
		Renames: map[string]string{
			"customerName": "customer_name",
			"totalAmount":  "total_amount",
		},
	},
	store.Customers: {
		Version: SchemaVersion,
		Renames: map[string]string{
			"totalSpent": "total_spent",
		},
	},
	store.Expenses: {Version: SchemaVersion},
}

var profileSchema = Schema{
	Version: SchemaVersion,
	Renames: map[string]string{
		"businessName":   "business_name",
		"profilePicture": "profile_picture",
	},
}

func (s Schema) column(field string) string {
	if col, ok := s.Renames[field]; ok {
		return col
	}
	return field
}

// encode turns in-memory fields into a remote row.
func (s Schema) encode(fields map[string]any) store.Row {
	row := make(store.Row, len(fields))
	for k, v := range fields {
		row[s.column(k)] = v
	}
	return row
}

// lookup finds field in row under its in-memory name first, then under its
// remote column.
func (s Schema) lookup(row store.Row, field string) (any, bool) {
	if v, ok := row[field]; ok && v != nil {
		return v, true
	}
	if col := s.column(field); col != field {
		if v, ok := row[col]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (s Schema) text(row store.Row, field string) string {
	v, _ := s.lookup(row, field)
	return asString(v)
}

func (s Schema) number(row store.Row, field string) float64 {
	v, _ := s.lookup(row, field)
	return asFloat(v)
}

func (s Schema) whole(row store.Row, field string) int {
	v, _ := s.lookup(row, field)
	return asInt(v)
}
