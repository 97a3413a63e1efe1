package repositories

import (
	"strconv"
	"strings"
)

// Dialect selects the placeholder style of the backing store. Queries in
// this package are written with canonical ? placeholders; the pgx
// stdlib driver passes SQL through verbatim, so the Postgres path needs
// them rewritten to $1-style ordinals.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// rebind rewrites ? placeholders for the dialect. Queries here never
// carry a literal '?' inside a string, so a byte scan is enough.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}

	return b.String()
}
