// Package value defines the closed set of values that can be bound as SQL
// parameters or read back from result columns.
//
// Only Null, Int, Float, Text and Blob implement Value. Go natives are
// converted with Of on the way in and FromColumn on the way out, so the rest
// of the module never passes an arbitrary any to the driver.
//
// This package imports nothing internal.
package value
