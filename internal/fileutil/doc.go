// Package fileutil provides collision-safe naming and no-replace rename
// primitives for moving files into shared destination directories.
//
// ResolveName implements the stem_N.ext suffix scheme. MoveUnique pairs it
// with RenameNoReplace so a name taken between the check and the rename is
// detected atomically and the next suffix is tried instead of clobbering the
// existing file.
package fileutil
