package datatable

import (
	"fmt"
	"reflect"
	"strings"
)

// CellRenderer turns a cell value into display text.
type CellRenderer[T any] func(value any, row T, index int) string

// RendererKind names the strategy that rendered a cell.
type RendererKind int

const (
	RenderFallback RendererKind = iota
	RenderColumn
	RenderCustom
	RenderStatus
	RenderDate
	RenderNumeric
	RenderBoolean
)

func (k RendererKind) String() string {
	switch k {
	case RenderColumn:
		return "column"
	case RenderCustom:
		return "custom"
	case RenderStatus:
		return "status"
	case RenderDate:
		return "date"
	case RenderNumeric:
		return "numeric"
	case RenderBoolean:
		return "boolean"
	default:
		return "fallback"
	}
}

// EmptyCell is shown for nil values by the fallback renderer.
const EmptyCell = "—"

// CellRenderers holds per-column and per-type rendering overrides.
type CellRenderers[T any] struct {
	Custom  map[string]CellRenderer[T]
	Status  CellRenderer[T]
	Date    CellRenderer[T]
	Numeric CellRenderer[T]
	Boolean CellRenderer[T]
}

type resolveStep[T any] func(r CellRenderers[T], col Column[T], value any) (CellRenderer[T], RendererKind, bool)

// The order of this chain decides which renderer wins for ambiguous columns,
// e.g. a numeric "status" column renders through Status.
func resolveChain[T any]() []resolveStep[T] {
	return []resolveStep[T]{
		func(_ CellRenderers[T], col Column[T], _ any) (CellRenderer[T], RendererKind, bool) {
			if col.RenderCell == nil {
				return nil, 0, false
			}
			return CellRenderer[T](col.RenderCell), RenderColumn, true
		},
		func(r CellRenderers[T], col Column[T], _ any) (CellRenderer[T], RendererKind, bool) {
			fn, ok := r.Custom[col.ID]
			return fn, RenderCustom, ok && fn != nil
		},
		func(r CellRenderers[T], col Column[T], _ any) (CellRenderer[T], RendererKind, bool) {
			return r.Status, RenderStatus, col.ID == "status" && r.Status != nil
		},
		func(r CellRenderers[T], col Column[T], _ any) (CellRenderer[T], RendererKind, bool) {
			isDate := strings.Contains(strings.ToLower(col.ID), "date")
			return r.Date, RenderDate, isDate && r.Date != nil
		},
		func(r CellRenderers[T], col Column[T], _ any) (CellRenderer[T], RendererKind, bool) {
			return r.Numeric, RenderNumeric, col.Numeric && r.Numeric != nil
		},
		func(r CellRenderers[T], _ Column[T], value any) (CellRenderer[T], RendererKind, bool) {
			_, isBool := value.(bool)
			return r.Boolean, RenderBoolean, isBool && r.Boolean != nil
		},
	}
}

// Resolve renders one cell and reports which strategy produced it.
func (r CellRenderers[T]) Resolve(col Column[T], value any, row T, index int) (string, RendererKind) {
	for _, step := range resolveChain[T]() {
		if fn, kind, ok := step(r, col, value); ok {
			return fn(value, row, index), kind
		}
	}
	return FormatValue(value), RenderFallback
}

// Render is Resolve without the strategy.
func (r CellRenderers[T]) Render(col Column[T], value any, row T, index int) string {
	s, _ := r.Resolve(col, value, row, index)
	return s
}

// FormatValue is the default rendering: EmptyCell for nil, Yes/No for bools,
// otherwise the value's default string form.
func FormatValue(value any) string {
	if isNil(value) {
		return EmptyCell
	}
	if b, ok := value.(bool); ok {
		if b {
			return "Yes"
		}
		return "No"
	}
	return fmt.Sprint(value)
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
