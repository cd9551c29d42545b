// Package querybuilder assembles parameterized SQL for the repository
// layer. Values never appear in the generated text; they are returned as a
// positional argument slice for the driver. Filters are an explicit
// argument so the WHERE predicate can never be confused with the set
// clause.
package querybuilder

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Fields holds column -> value pairs for an INSERT column list or an
// UPDATE set clause.
type Fields map[string]any

// Filter holds column -> value pairs ANDed into a WHERE clause.
type Filter map[string]any

var (
	ErrNoFields = errors.New("querybuilder: no fields given")
	ErrNoFilter = errors.New("querybuilder: no filter given")
)

// identPattern is deliberately strict: snake_case column and table names
// only, matching the schema. Anything else is rejected rather than quoted
// around.
var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("querybuilder: invalid identifier %q", name)
	}
	return nil
}

// sortedKeys gives the generated SQL a stable column order regardless of
// map iteration.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// InsertReturning builds INSERT INTO table (cols...) VALUES ($1...), with
// an optional RETURNING clause so the caller gets the stored row,
// server-generated identifier included.
func InsertReturning(table string, fields Fields, returning []string) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	if len(fields) == 0 {
		return "", nil, ErrNoFields
	}

	cols := sortedKeys(fields)
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		if err := checkIdent(c); err != nil {
			return "", nil, err
		}
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = fields[c]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	if len(returning) > 0 {
		for _, c := range returning {
			if err := checkIdent(c); err != nil {
				return "", nil, err
			}
		}
		fmt.Fprintf(&b, " RETURNING %s", strings.Join(returning, ", "))
	}

	return b.String(), args, nil
}

// Select builds SELECT cols FROM table WHERE filter. An empty column list
// selects *.
func Select(table string, columns []string, filter Filter) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	if len(filter) == 0 {
		return "", nil, ErrNoFilter
	}

	colList := "*"
	if len(columns) > 0 {
		for _, c := range columns {
			if err := checkIdent(c); err != nil {
				return "", nil, err
			}
		}
		colList = strings.Join(columns, ", ")
	}

	where, args, err := whereClause(filter, 1)
	if err != nil {
		return "", nil, err
	}

	return fmt.Sprintf("SELECT %s FROM %s WHERE %s", colList, table, where), args, nil
}

// UpdateReturning builds UPDATE table SET fields WHERE filter, with an
// optional RETURNING clause. The filter is required; an unfiltered UPDATE
// is never generated.
func UpdateReturning(table string, set Fields, filter Filter, returning []string) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	if len(set) == 0 {
		return "", nil, ErrNoFields
	}
	if len(filter) == 0 {
		return "", nil, ErrNoFilter
	}

	cols := sortedKeys(set)
	assignments := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(filter))
	for i, c := range cols {
		if err := checkIdent(c); err != nil {
			return "", nil, err
		}
		assignments[i] = fmt.Sprintf("%s = $%d", c, i+1)
		args = append(args, set[c])
	}

	where, whereArgs, err := whereClause(filter, len(cols)+1)
	if err != nil {
		return "", nil, err
	}
	args = append(args, whereArgs...)

	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET %s WHERE %s",
		table, strings.Join(assignments, ", "), where)

	if len(returning) > 0 {
		for _, c := range returning {
			if err := checkIdent(c); err != nil {
				return "", nil, err
			}
		}
		fmt.Fprintf(&b, " RETURNING %s", strings.Join(returning, ", "))
	}

	return b.String(), args, nil
}

// Delete builds DELETE FROM table WHERE filter.
func Delete(table string, filter Filter) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	if len(filter) == 0 {
		return "", nil, ErrNoFilter
	}

	where, args, err := whereClause(filter, 1)
	if err != nil {
		return "", nil, err
	}

	return fmt.Sprintf("DELETE FROM %s WHERE %s", table, where), args, nil
}

func whereClause(filter Filter, firstPlaceholder int) (string, []any, error) {
	cols := sortedKeys(filter)
	conds := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		if err := checkIdent(c); err != nil {
			return "", nil, err
		}
		conds[i] = fmt.Sprintf("%s = $%d", c, firstPlaceholder+i)
		args[i] = filter[c]
	}
	return strings.Join(conds, " AND "), args, nil
}
