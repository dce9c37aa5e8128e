package database

import (
	"strconv"
	"strings"
)

// SubstringFilter returns a WHERE fragment matching rows where the bound
// parameter $argPos is a case-sensitive substring of any of the given columns.
// Columns must be compile-time constants; the search text is only ever bound.
func SubstringFilter(columns []string, argPos int) string {
	if len(columns) == 0 {
		return "TRUE"
	}
	param := "$" + strconv.Itoa(argPos)
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = "strpos(" + c + ", " + param + ") > 0"
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// SearchQuery builds "SELECT <cols> FROM <table> [WHERE filter] ORDER BY created_at DESC"
// and the matching argument list for an optional free-text query.
func SearchQuery(selectCols, table string, filterCols []string, q string) (string, []any) {
	sql := "SELECT " + selectCols + " FROM " + table
	var args []any
	if q != "" {
		sql += " WHERE " + SubstringFilter(filterCols, 1)
		args = append(args, q)
	}
	sql += " ORDER BY created_at DESC"
	return sql, args
}
