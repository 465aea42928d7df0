package catalog

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Columns used when compiling filters. Queries must alias products as p and
// categories as c.
var columns = map[Field]string{
	FieldName:        "p.name",
	FieldBrand:       "p.brand",
	FieldDescription: "p.description",
	FieldCategory:    "c.name",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Compiler turns filters into a PostgreSQL boolean expression with positional args.
type Compiler struct {
	args []interface{}
}

// NewCompiler returns a compiler whose first placeholder is $1.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Args returns the accumulated query arguments.
func (c *Compiler) Args() []interface{} {
	return c.args
}

// Bind adds an argument and returns its placeholder.
func (c *Compiler) Bind(v interface{}) string {
	c.args = append(c.args, v)
	return fmt.Sprintf("$%d", len(c.args))
}

// Where compiles f into an expression suitable after WHERE.
func (c *Compiler) Where(f Filter) string {
	switch f := f.(type) {
	case nil, matchAll:
		return "TRUE"
	case matchNone:
		return "FALSE"
	case CategoryIn:
		if len(f.Names) == 0 {
			return "FALSE"
		}
		lowered := make([]string, len(f.Names))
		for i, n := range f.Names {
			lowered[i] = strings.ToLower(n)
		}
		return fmt.Sprintf("LOWER(c.name) = ANY(%s)", c.Bind(pq.Array(lowered)))
	case CategoryIDIn:
		if len(f.IDs) == 0 {
			return "FALSE"
		}
		return fmt.Sprintf("p.category_id = ANY(%s)", c.Bind(pq.Array(toInt64(f.IDs))))
	case IDIn:
		if len(f.IDs) == 0 {
			return "FALSE"
		}
		return fmt.Sprintf("p.id = ANY(%s)", c.Bind(pq.Array(toInt64(f.IDs))))
	case Contains:
		if len(f.Fields) == 0 || len(f.Terms) == 0 {
			return "FALSE"
		}
		var parts []string
		for _, term := range f.Terms {
			ph := c.Bind("%" + likeEscaper.Replace(term) + "%")
			for _, field := range f.Fields {
				parts = append(parts, fmt.Sprintf("%s ILIKE %s", columns[field], ph))
			}
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	case PriceBetween:
		if f.Min > f.Max {
			return "FALSE"
		}
		var parts []string
		if isFinite(f.Min) {
			parts = append(parts, "p.price >= "+c.Bind(f.Min))
		}
		if isFinite(f.Max) {
			parts = append(parts, "p.price <= "+c.Bind(f.Max))
		}
		if len(parts) == 0 {
			return "TRUE"
		}
		return "(" + strings.Join(parts, " AND ") + ")"
	case And:
		if len(f) == 0 {
			return "TRUE"
		}
		return c.join(f, " AND ")
	case Or:
		if len(f) == 0 {
			return "FALSE"
		}
		return c.join(f, " OR ")
	}
	return "FALSE"
}

func (c *Compiler) join(filters []Filter, op string) string {
	parts := make([]string, len(filters))
	for i, sub := range filters {
		parts[i] = c.Where(sub)
	}
	return "(" + strings.Join(parts, op) + ")"
}

// OrderBy returns the ORDER BY expression for o.
func OrderBy(o Order) string {
	switch o {
	case OrderTopRated:
		return "p.rating DESC, p.num_reviews DESC, p.id ASC"
	case OrderNewest:
		return "p.created_at DESC, p.id DESC"
	}
	return "p.id ASC"
}

func toInt64(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
