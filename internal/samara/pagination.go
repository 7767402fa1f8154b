package samara

// DefaultPageSize — размер страницы списка бронирований.
const DefaultPageSize = 10

// Page описывает одну страницу элементов.
type Page[T any] struct {
	Items    []T // элементы на текущей странице
	Page     int // номер страницы (с 1)
	PageSize int // количество элементов на странице
	Pages    int // всего страниц, ceil(Total / PageSize)
	HasNext  bool
	HasPrev  bool
	Total    int // общее количество элементов
}

// Window переводит номер страницы (с 1) в limit/offset для хранилища.
// При некорректных значениях используются дефолты.
func Window(page, pageSize int) (limit, offset int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}

// NewPage собирает метаданные страницы, когда items уже выбраны хранилищем,
// а total — общее число записей.
func NewPage[T any](items []T, total, page, pageSize int) Page[T] {
	pageSize, _ = Window(page, pageSize)
	if page <= 0 {
		page = 1
	}
	if total < 0 {
		total = 0
	}

	pages := (total + pageSize - 1) / pageSize

	return Page[T]{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Pages:    pages,
		HasNext:  page < pages,
		HasPrev:  page > 1,
		Total:    total,
	}
}

// Slice возвращает items[offset:offset+limit] с обрезкой по границам.
// limit <= 0 означает «без ограничения».
func Slice[T any](items []T, limit, offset int) []T {
	total := len(items)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return items[offset:end]
}

// RowNumber — сквозной номер строки в таблице (с 1).
func (p Page[T]) RowNumber(index int) int {
	return (p.Page-1)*p.PageSize + index + 1
}
