package database

import (
	"strings"
)

// Dialect renders the few statements whose syntax differs between the
// supported engines. Identifiers are quoted with backticks, which both accept.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

// InsertIgnore renders an insert that silently skips rows whose key exists.
func (d Dialect) InsertIgnore(table string, cols []string) string {
	verb := "INSERT IGNORE INTO "
	if d == SQLite {
		verb = "INSERT OR IGNORE INTO "
	}
	return verb + insertBody(table, cols)
}

// Insert renders a plain insert.
func (d Dialect) Insert(table string, cols []string) string {
	return "INSERT INTO " + insertBody(table, cols)
}

// Upsert renders an insert that, on a conflict over keys, overwrites only the
// update columns with the incoming values.
func (d Dialect) Upsert(table string, cols, keys, update []string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(insertBody(table, cols))

	sets := make([]string, len(update))
	if d == SQLite {
		for i, c := range update {
			sets[i] = Quote(c) + " = excluded." + Quote(c)
		}
		quotedKeys := make([]string, len(keys))
		for i, k := range keys {
			quotedKeys[i] = Quote(k)
		}
		b.WriteString(" ON CONFLICT (")
		b.WriteString(strings.Join(quotedKeys, ", "))
		b.WriteString(") DO UPDATE SET ")
	} else {
		for i, c := range update {
			sets[i] = Quote(c) + " = VALUES(" + Quote(c) + ")"
		}
		b.WriteString(" ON DUPLICATE KEY UPDATE ")
	}
	b.WriteString(strings.Join(sets, ", "))
	return b.String()
}

// Lower renders a Unicode-aware lowercase of expr.
func (d Dialect) Lower(expr string) string {
	if d == SQLite {
		return unicodeLowerFunc + "(" + expr + ")"
	}
	return "LOWER(" + expr + ")"
}

// Quote wraps an identifier in backticks.
func Quote(ident string) string {
	return "`" + ident + "`"
}

func insertBody(table string, cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = Quote(c)
	}
	return Quote(table) + " (" + strings.Join(quoted, ", ") + ") VALUES (" + Placeholders(len(cols)) + ")"
}

// Placeholders returns n comma separated bind markers.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
