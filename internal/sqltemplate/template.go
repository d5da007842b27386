package sqltemplate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/sqlwrap/internal/value"
)

const (
	// Placeholder is the positional parameter marker written between fragments.
	Placeholder = "?"

	// Marker separates fragments in Format's text.
	Marker = "{}"

	// EscapedMarker in Format's text stands for a literal Marker.
	EscapedMarker = "{{}}"
)

// ErrFragmentCount is returned when fragments and values do not interleave.
var ErrFragmentCount = errors.New("fragment count must be one more than value count")

// Template is a compiled, parameterized statement.
// Only SQL is worth caching; a Template is built fresh per call.
type Template struct {
	SQL    string
	Params []value.Value
}

// Compile joins fragments with Placeholder and converts args into the
// parameter list. len(fragments) must equal len(args)+1.
//
// With zero args the single fragment is returned unchanged and Params is an
// empty, non-nil slice.
func Compile(fragments []string, args ...any) (Template, error) {
	if len(fragments) != len(args)+1 {
		return Template{}, fmt.Errorf("compile template: %w (got %d fragments, %d values)",
			ErrFragmentCount, len(fragments), len(args))
	}

	params, err := value.OfAll(args)
	if err != nil {
		return Template{}, fmt.Errorf("compile template: %w", err)
	}

	return Template{
		SQL:    strings.Join(fragments, Placeholder),
		Params: params,
	}, nil
}

// Format splits text on Marker and compiles the pieces with args.
// The number of markers must equal len(args).
//
// Every Marker is a parameter, including one inside a string literal; write
// EscapedMarker for a literal "{}", as in "SELECT json('{{}}'), {}".
func Format(text string, args ...any) (Template, error) {
	return Compile(splitMarkers(text), args...)
}

func splitMarkers(text string) []string {
	if !strings.Contains(text, EscapedMarker) {
		return strings.Split(text, Marker)
	}

	var (
		frags []string
		b     strings.Builder
	)
	for i := 0; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], EscapedMarker):
			b.WriteString(Marker)
			i += len(EscapedMarker)
		case strings.HasPrefix(text[i:], Marker):
			frags = append(frags, b.String())
			b.Reset()
			i += len(Marker)
		default:
			b.WriteByte(text[i])
			i++
		}
	}
	return append(frags, b.String())
}

// MustFormat is like Format but panics on error.
// Intended for package-level templates whose shape is fixed at compile time.
func MustFormat(text string, args ...any) Template {
	t, err := Format(text, args...)
	if err != nil {
		panic(err)
	}
	return t
}

// Raw wraps SQL text that takes no parameters.
func Raw(sql string) Template {
	return Template{SQL: sql, Params: []value.Value{}}
}

// Args returns the parameters in the form database/sql binds.
func (t Template) Args() []any {
	return value.Args(t.Params)
}

// Placeholders counts the placeholder markers in the compiled SQL.
// It equals len(Params) whenever the fragments themselves contain no "?".
func (t Template) Placeholders() int {
	return strings.Count(t.SQL, Placeholder)
}

// String renders the SQL followed by its parameters, for logs and errors.
func (t Template) String() string {
	if len(t.Params) == 0 {
		return t.SQL
	}
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("%s [%s]", t.SQL, strings.Join(parts, ", "))
}
