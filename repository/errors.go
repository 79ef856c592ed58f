package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err came from a unique constraint. gorm translates most
// dialect errors when TranslateError is on; the remaining checks cover raw driver errors.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate entry")
}

// likePattern builds a case-insensitive substring pattern, escaping LIKE wildcards with '!'.
func likePattern(s string) string {
	var b []rune
	for _, r := range s {
		switch r {
		case '!', '%', '_':
			b = append(b, '!')
		}
		b = append(b, r)
	}
	return "%" + string(b) + "%"
}
