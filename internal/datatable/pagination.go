package datatable

// DefaultRowsPerPageOptions is used when a Config leaves the options empty.
var DefaultRowsPerPageOptions = []int{5, 10, 25}

// PageState is the current page index and page size.
type PageState struct {
	Page        int
	RowsPerPage int
}

// Paginate returns the window [page*rowsPerPage, page*rowsPerPage+rowsPerPage)
// of rows clamped to its bounds, and the number of blank filler rows needed to
// keep the last page at full height.
func Paginate[T any](rows []T, page, rowsPerPage int) ([]T, int) {
	if rowsPerPage <= 0 || page < 0 {
		return nil, 0
	}
	total := len(rows)
	start := min(page*rowsPerPage, total)
	end := min(start+rowsPerPage, total)

	empty := 0
	if page > 0 {
		empty = max(0, (page+1)*rowsPerPage-total)
	}
	return rows[start:end], empty
}

// PageCount is the number of pages needed for total rows, never less than one.
func PageCount(total, rowsPerPage int) int {
	if rowsPerPage <= 0 || total <= 0 {
		return 1
	}
	return (total + rowsPerPage - 1) / rowsPerPage
}

// ClampPage bounds page to the last page that holds rows.
func ClampPage(page, total, rowsPerPage int) int {
	if page < 0 {
		return 0
	}
	return min(page, PageCount(total, rowsPerPage)-1)
}
