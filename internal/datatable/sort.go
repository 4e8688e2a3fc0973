package datatable

import (
	"reflect"
	"slices"
	"strings"
	"time"
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Toggle returns the opposite direction.
func (o Order) Toggle() Order {
	if o == Desc {
		return Asc
	}
	return Desc
}

// ParseOrder accepts "asc"/"desc" in any case and defaults to Asc.
func ParseOrder(s string) Order {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// SortState is the active sort column and direction.
type SortState struct {
	OrderBy string
	Order   Order
}

// Comparator returns the comparison function for order on the raw property
// orderBy. Asc is the negation of Desc, so the two are exact mirrors.
func Comparator[T any](orderBy string, order Order) func(a, b T) int {
	desc := func(a, b T) int {
		av, _ := Lookup(a, orderBy)
		bv, _ := Lookup(b, orderBy)
		switch {
		case less(bv, av):
			return -1
		case less(av, bv):
			return 1
		}
		return 0
	}
	if order == Desc {
		return desc
	}
	return func(a, b T) int { return -desc(a, b) }
}

// SortRows returns a stably sorted copy of rows.
//
// The key is the raw property named orderBy, not the column's GetValue
// extractor, so a column whose extractor differs from the same-named field
// sorts by the field.
func SortRows[T any](rows []T, orderBy string, order Order) []T {
	type indexed struct {
		row T
		idx int
	}
	decorated := make([]indexed, len(rows))
	for i, r := range rows {
		decorated[i] = indexed{row: r, idx: i}
	}
	cmp := Comparator[T](orderBy, order)
	slices.SortFunc(decorated, func(a, b indexed) int {
		if c := cmp(a.row, b.row); c != 0 {
			return c
		}
		return a.idx - b.idx
	})
	out := make([]T, len(decorated))
	for i, d := range decorated {
		out[i] = d.row
	}
	return out
}

// less reports a < b using plain relational semantics: numbers numerically,
// strings by bytes, bools false before true, times chronologically. Values of
// different or unsupported kinds are never less than each other.
func less(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Before(bt)
	}
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if af, ok := numeric(av); ok {
		bf, ok := numeric(bv)
		return ok && af < bf
	}
	switch av.Kind() {
	case reflect.String:
		return bv.Kind() == reflect.String && av.String() < bv.String()
	case reflect.Bool:
		return bv.Kind() == reflect.Bool && !av.Bool() && bv.Bool()
	}
	return false
}

func numeric(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}
