package repository

import (
	"strings"

	"github.com/digkill/TGUpdateStore/internal/database"
)

// clause is a SQL boolean expression with its bind values. Values are only
// ever bound through "?" markers, never spliced into the text.
type clause struct {
	text string
	args []any
}

func cond(text string, args ...any) clause {
	return clause{text: text, args: args}
}

// in renders col IN (?, ...); an empty value list matches nothing.
func in(col string, vals ...any) clause {
	if len(vals) == 0 {
		return cond("1 = 0")
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(vals)), ", ")
	return cond(col+" IN ("+marks+")", vals...)
}

func allOf(cs ...clause) clause {
	return join(" AND ", cs)
}

func anyOf(cs ...clause) clause {
	return join(" OR ", cs)
}

func join(sep string, cs []clause) clause {
	var (
		parts []string
		args  []any
	)
	for _, c := range cs {
		if c.text == "" {
			continue
		}
		parts = append(parts, c.text)
		args = append(args, c.args...)
	}
	switch len(parts) {
	case 0:
		return clause{}
	case 1:
		return clause{text: parts[0], args: args}
	}
	return clause{text: "(" + strings.Join(parts, sep) + ")", args: args}
}

// likeEscaper escapes LIKE wildcards with '!', which both engines accept in
// an ESCAPE clause.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsFold matches a case-insensitive substring of col. Both sides are
// lowercased with Unicode rules, so LIKE never has to fold case itself.
func containsFold(d database.Dialect, col, text string) clause {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
	return cond(d.Lower(col)+" LIKE ? ESCAPE '!'", pattern)
}
