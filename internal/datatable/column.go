// Package datatable implements a generic sortable, paginated and selectable
// table component for bubbletea programs.
//
// The pure pieces (SortRows, Paginate, Selection, CellRenderers) carry no
// terminal state and can be used on their own; Model composes them into a
// header, body, toolbar and footer.
package datatable

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrEmptyColumnID   = errors.New("datatable: column id is empty")
	ErrDuplicateColumn = errors.New("datatable: duplicate column id")
)

// Column describes how one field of a row is labeled, extracted, sorted and
// rendered.
type Column[T any] struct {
	ID             string
	Label          string
	Numeric        bool
	DisableSort    bool
	Width          int
	DisablePadding bool

	// GetValue extracts the displayed value. When nil the value is looked up
	// by ID on the row.
	GetValue func(row T) any

	// RenderCell fully overrides rendering for this column.
	RenderCell func(value any, row T, index int) string
}

// Sortable reports whether the column exposes a sort control.
func (c Column[T]) Sortable() bool { return !c.DisableSort }

// Fielder lets a row type expose named values without reflection.
type Fielder interface {
	Field(name string) (any, bool)
}

// CellValue returns the value displayed in the cell of col for row.
func CellValue[T any](col Column[T], row T) any {
	if col.GetValue != nil {
		return col.GetValue(row)
	}
	v, _ := Lookup(row, col.ID)
	return v
}

// Lookup resolves name as a property of row. Fielder implementations win,
// then map[string]any, then exported struct fields matched by `table` tag or
// case-insensitive field name.
func Lookup(row any, name string) (any, bool) {
	if row == nil {
		return nil, false
	}
	if f, ok := row.(Fielder); ok {
		return f.Field(name)
	}
	if m, ok := row.(map[string]any); ok {
		v, ok := m[name]
		return v, ok
	}

	rv := reflect.ValueOf(row)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		return structField(rv, name)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	}
	return nil, false
}

func structField(rv reflect.Value, name string) (any, bool) {
	rt := rv.Type()
	fallback := -1
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("table")
		if tag == "-" {
			continue
		}
		if tag != "" {
			if strings.Split(tag, ",")[0] == name {
				return rv.Field(i).Interface(), true
			}
			continue
		}
		if fallback < 0 && strings.EqualFold(f.Name, name) {
			fallback = i
		}
	}
	if fallback >= 0 {
		return rv.Field(fallback).Interface(), true
	}
	return nil, false
}

// RowID returns the string identity of row stored at idField.
func RowID(row any, idField string) string {
	v, ok := Lookup(row, idField)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// ValidateColumns checks that every column has a non-empty, unique id.
func ValidateColumns[T any](cols []Column[T]) error {
	seen := make(map[string]struct{}, len(cols))
	for i, c := range cols {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("column %d: %w", i, ErrEmptyColumnID)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("column %q: %w", c.ID, ErrDuplicateColumn)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}
