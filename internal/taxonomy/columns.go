package taxonomy

import "strings"

var columnReplacer = strings.NewReplacer(
	FieldSeparator, "_",
	".", "_",
	" ", "_",
	",", "",
	"(", "",
	")", "",
	"-", "_",
	"/", "_",
	"+", "plus",
)

// FieldToColumn encodes a field name as a flat-table column identifier:
// "Strategic forces - 1. Personnel" becomes "Strategic_forces_1__Personnel".
func FieldToColumn(field string) string {
	return columnReplacer.Replace(field)
}

// ColumnToField recovers the field name of a column identifier. The lookup
// table is the forward encoding of every field, computed once in New.
// Identifiers that are not a taxonomy column come back unchanged.
func (t Taxonomy) ColumnToField(column string) string {
	field, ok := t.columns[column]
	if !ok {
		return column
	}
	return field
}

// Columns returns the column identifiers in field order.
func (t Taxonomy) Columns() []string {
	out := make([]string, len(t.fields))
	for i, f := range t.fields {
		out[i] = FieldToColumn(f)
	}
	return out
}
