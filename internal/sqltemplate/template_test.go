package sqltemplate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlwrap/internal/value"
)

func TestCompile_SingleValue(t *testing.T) {
	tmpl, err := Compile([]string{"SELECT * FROM my_table WHERE key = ", ""}, 1)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM my_table WHERE key = ?", tmpl.SQL)
	assert.Equal(t, []value.Value{value.Int(1)}, tmpl.Params)
}

func TestCompile_ValuesNeverInSQL(t *testing.T) {
	evil := "'; DROP TABLE users; --"
	tmpl, err := Compile([]string{"SELECT * FROM users WHERE name = ", ""}, evil)
	require.NoError(t, err)

	assert.NotContains(t, tmpl.SQL, "DROP")
	assert.Equal(t, []any{evil}, tmpl.Args())
}

func TestCompile_ZeroValues(t *testing.T) {
	tmpl, err := Compile([]string{"SELECT 1"})
	require.NoError(t, err)

	assert.Equal(t, "SELECT 1", tmpl.SQL)
	assert.NotNil(t, tmpl.Params)
	assert.Empty(t, tmpl.Params)
	assert.Equal(t, 0, tmpl.Placeholders())
}

func TestCompile_FragmentsNotEscaped(t *testing.T) {
	tmpl, err := Compile([]string{"SELECT 'it''s' AS s, ", " AS n"}, 2)
	require.NoError(t, err)

	assert.Equal(t, "SELECT 'it''s' AS s, ? AS n", tmpl.SQL)
}

func TestCompile_FragmentCountMismatch(t *testing.T) {
	testCases := []struct {
		name      string
		fragments []string
		args      []any
	}{
		{"too few fragments", []string{"a"}, []any{1}},
		{"too many fragments", []string{"a", "b", "c"}, []any{1}},
		{"no fragments", nil, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(tc.fragments, tc.args...)
			assert.ErrorIs(t, err, ErrFragmentCount)
		})
	}
}

func TestCompile_UnsupportedValue(t *testing.T) {
	_, err := Compile([]string{"SELECT ", ""}, struct{}{})
	assert.ErrorIs(t, err, value.ErrUnsupportedType)
}

func TestCompile_PlaceholderCountMatchesValues(t *testing.T) {
	for n := 0; n <= 8; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			fragments := make([]string, n+1)
			args := make([]any, n)
			for i := range fragments {
				fragments[i] = fmt.Sprintf(" f%d ", i)
			}
			for i := range args {
				args[i] = i
			}

			tmpl, err := Compile(fragments, args...)
			require.NoError(t, err)

			assert.Len(t, tmpl.Params, n)
			assert.Equal(t, n, tmpl.Placeholders())
			assert.Equal(t, strings.Join(fragments, "?"), tmpl.SQL)
			for i, p := range tmpl.Params {
				assert.Equal(t, value.Int(i), p)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tmpl, err := Format("INSERT INTO my_table VALUES ({},{})", 1, "uno momento")
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO my_table VALUES (?,?)", tmpl.SQL)
	assert.Equal(t, []value.Value{value.Int(1), value.Text("uno momento")}, tmpl.Params)
}

func TestFormat_MarkerMismatch(t *testing.T) {
	_, err := Format("SELECT {}", 1, 2)
	assert.ErrorIs(t, err, ErrFragmentCount)
}

func TestFormat_EscapedMarker(t *testing.T) {
	_, err := Format("SELECT json('{}') AS j, {} AS x", 1)
	require.ErrorIs(t, err, ErrFragmentCount)

	tmpl, err := Format("SELECT json('{{}}') AS j, {} AS x", 1)
	require.NoError(t, err)
	assert.Equal(t, "SELECT json('{}') AS j, ? AS x", tmpl.SQL)
	assert.Equal(t, []value.Value{value.Int(1)}, tmpl.Params)

	tmpl, err = Format("SELECT '{{}}{{}}'")
	require.NoError(t, err)
	assert.Equal(t, "SELECT '{}{}'", tmpl.SQL)
	assert.Empty(t, tmpl.Params)
}

func TestMustFormat_Panics(t *testing.T) {
	assert.Panics(t, func() { MustFormat("SELECT {}") })
	assert.NotPanics(t, func() { MustFormat("SELECT {}", nil) })
}

func TestRaw(t *testing.T) {
	tmpl := Raw("SELECT * FROM sqlite_schema")
	assert.Equal(t, "SELECT * FROM sqlite_schema", tmpl.SQL)
	assert.Empty(t, tmpl.Args())
}

func TestString(t *testing.T) {
	tmpl := MustFormat("SELECT * FROM t WHERE a = {} AND b = {}", 1, nil)
	assert.Equal(t, "SELECT * FROM t WHERE a = ? AND b = ? [1, NULL]", tmpl.String())
	assert.Equal(t, "SELECT 1", Raw("SELECT 1").String())
}
