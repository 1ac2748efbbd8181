// Package relocate moves one classified file into its managed bucket.
//
// A Relocator maps the detected kind to a destination directory and a
// canonical extension, corrects mislabeled extensions, picks a collision-free
// name, and performs a single no-replace rename. Every call yields exactly one
// immutable Outcome; failures are captured in the Outcome and never leave a
// partially moved file behind.
package relocate
