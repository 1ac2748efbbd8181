// Package progress narrates a running sort as short status lines. It is purely
// observational; nothing in a run depends on its output.
package progress
