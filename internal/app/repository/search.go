package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching term anywhere, with LIKE
// wildcards in term taken literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// whereContainsAny narrows query to rows where any of columns contains term,
// ignoring case. Columns not present in allowed are rejected so callers can
// pass admin configuration straight through.
func whereContainsAny(query *gorm.DB, term string, columns []string, allowed map[string]bool) (*gorm.DB, error) {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return query, nil
	}

	pattern := containsPattern(term)
	conds := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		if !allowed[col] {
			return nil, fmt.Errorf("column %q is not searchable", col)
		}
		conds = append(conds, fmt.Sprintf(`LOWER(%q) LIKE ? ESCAPE '\'`, col))
		args = append(args, pattern)
	}
	return query.Where("("+strings.Join(conds, " OR ")+")", args...), nil
}
