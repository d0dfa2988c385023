package query

import (
	"strings"

	"golang.org/x/text/cases"

	"client_registry/internal/model"
)

// Matches вычисляет предикат для клиента в памяти.
// Семантика совпадает с SQL-версией: точное сравнение для Equals
// и вхождение подстроки без учета регистра (Unicode case folding) для Search.
func (p Predicate) Matches(c *model.Client) bool {
	if len(p.Equals) > 0 {
		for _, cond := range p.Equals {
			if c.Value(cond.Field) != cond.Value {
				return false
			}
		}
		return true
	}

	if p.Search == "" {
		return true
	}

	// Caser хранит состояние, поэтому создается на каждый вызов
	fold := cases.Fold()
	term := fold.String(p.Search)
	for _, f := range p.SearchFields {
		v := c.Value(f)
		if v != "" && strings.Contains(fold.String(v), term) {
			return true
		}
	}
	return false
}
