package querybuilder

import (
	"errors"
	"reflect"
	"slices"
	"strings"
)

// InsertModel inserts every db-tagged field of a row struct.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	cols, vals, err := dbFields(model)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).Columns(cols...).Values(vals...).Suffix(suffix).ToSQL()
}

// UpdateModel sets every db-tagged column of model except the ones in skip.
func UpdateModel(table string, model any, skip []string, conditions ...Condition) (string, []any, error) {
	cols, vals, err := dbFields(model)
	if err != nil {
		return "", nil, err
	}

	u := Update(table)
	for i, col := range cols {
		if !slices.Contains(skip, col) {
			u.Set(col, vals[i])
		}
	}
	return u.Where(conditions...).ToSQL()
}

func dbFields(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, errors.New("model: nil pointer")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, errors.New("model: not a struct")
	}

	var (
		cols []string
		vals []any
	)
	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		cols = append(cols, name)
		vals = append(vals, v.Field(i).Interface())
	}
	if len(cols) == 0 {
		return nil, nil, errors.New("model: no db columns")
	}
	return cols, vals, nil
}
