// Package sqltemplate turns literal SQL fragments and interpolated values
// into parameterized SQL.
//
// Fragments are joined with a "?" placeholder between each adjacent pair and
// the values become the positional parameter list, in order. Fragments are
// never escaped or quoted, and values never appear in the SQL text. That is
// the whole injection defense: values only ever travel as bound parameters.
//
// Go has no tagged template literals, so Format does the fragment splitting
// at the call site using a "{}" marker:
//
//	tmpl, err := sqltemplate.Format("SELECT * FROM users WHERE id = {} AND org = {}", id, org)
//	// tmpl.SQL    == "SELECT * FROM users WHERE id = ? AND org = ?"
//	// tmpl.Params == []value.Value{value.Int(id), value.Text(org)}
//
// Compile is pure: no I/O, no engine access, no caching.
package sqltemplate
