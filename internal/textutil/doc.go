// Package textutil provides small text helpers shared by the sorter and CLI:
// bounded truncation of diagnostic strings and a generic conditional.
package textutil
