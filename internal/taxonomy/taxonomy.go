// Package taxonomy holds the fixed set of MILEX force groups (categories) and
// cost categories (subcategories) and the canonical field names they form.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/titanous/json5"
)

//go:embed milex_fields.json5
var defaultFields []byte

// FieldSeparator joins a category and a subcategory into a field name.
const FieldSeparator = " - "

type fieldsFile struct {
	Categories    []string `json:"categories"`
	Subcategories []string `json:"subcategories"`
}

// Taxonomy is an immutable category × subcategory product. The zero value is
// empty and matches nothing.
type Taxonomy struct {
	categories    []string
	subcategories []string
	fields        []string
	fieldSet      map[string]struct{}
	columns       map[string]string
}

// New builds a taxonomy, it fails when a list is empty, has duplicates, or
// when two field names would share a storage column.
func New(categories, subcategories []string) (Taxonomy, error) {
	if len(categories) == 0 {
		return Taxonomy{}, errors.New("taxonomy has no categories")
	}
	if len(subcategories) == 0 {
		return Taxonomy{}, errors.New("taxonomy has no subcategories")
	}
	err := checkUnique("category", categories)
	if err != nil {
		return Taxonomy{}, err
	}
	err = checkUnique("subcategory", subcategories)
	if err != nil {
		return Taxonomy{}, err
	}

	t := Taxonomy{
		categories:    append([]string(nil), categories...),
		subcategories: append([]string(nil), subcategories...),
		fields:        make([]string, 0, len(categories)*len(subcategories)),
		fieldSet:      make(map[string]struct{}, len(categories)*len(subcategories)),
		columns:       make(map[string]string, len(categories)*len(subcategories)),
	}
	for _, c := range t.categories {
		for _, s := range t.subcategories {
			field := FieldName(c, s)
			column := FieldToColumn(field)
			if other, taken := t.columns[column]; taken {
				return Taxonomy{}, fmt.Errorf(
					"fields %q and %q both map to column %q",
					other, field, column,
				)
			}
			t.columns[column] = field
			t.fields = append(t.fields, field)
			t.fieldSet[field] = struct{}{}
		}
	}
	return t, nil
}

func checkUnique(kind string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return fmt.Errorf("blank %s name", kind)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("duplicate %s %q", kind, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

func parse(contents []byte) (Taxonomy, error) {
	var file fieldsFile
	err := json5.Unmarshal(contents, &file)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("parse fields: %w", err)
	}
	return New(file.Categories, file.Subcategories)
}

// Default is the taxonomy shipped with the binary.
func Default() (Taxonomy, error) {
	return parse(defaultFields)
}

// Load reads a taxonomy from a json5 file with `categories` and
// `subcategories` lists, an empty path gives Default.
func Load(path string) (Taxonomy, error) {
	if path == "" {
		return Default()
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return Taxonomy{}, err
	}
	return parse(contents)
}

// FieldName composes the canonical name of a category/subcategory pair.
func FieldName(category, subcategory string) string {
	return category + FieldSeparator + subcategory
}

// Categories returns the categories in taxonomy order.
func (t Taxonomy) Categories() []string {
	return append([]string(nil), t.categories...)
}

// Subcategories returns the subcategories in taxonomy order.
func (t Taxonomy) Subcategories() []string {
	return append([]string(nil), t.subcategories...)
}

// Fields returns every canonical field name, category-major.
func (t Taxonomy) Fields() []string {
	return append([]string(nil), t.fields...)
}

// Size is the number of canonical fields.
func (t Taxonomy) Size() int {
	return len(t.fields)
}

// Contains reports whether a field name belongs to the taxonomy.
func (t Taxonomy) Contains(field string) bool {
	_, ok := t.fieldSet[field]
	return ok
}
