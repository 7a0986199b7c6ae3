package store

import (
	"strconv"
	"strings"
)

// Placeholders returns "$start, $start+1, ..." for n arguments.
func Placeholders(start, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("$")
		b.WriteString(strconv.Itoa(start + i))
	}
	return b.String()
}

// Rows returns n parenthesized groups of width placeholders, numbered from 1.
func Rows(n, width int) string {
	groups := make([]string, n)
	for i := range groups {
		groups[i] = "(" + Placeholders(i*width+1, width) + ")"
	}
	return strings.Join(groups, ", ")
}
