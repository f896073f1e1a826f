package utils

// Pagination описывает страницу результата, нарезанного в памяти
type Pagination struct {
	Page       int  `json:"page"`       // Номер страницы (начиная с 1)
	Limit      int  `json:"limit"`      // Размер страницы
	Total      int  `json:"total"`      // Общее количество элементов
	TotalPages int  `json:"totalPages"` // Общее количество страниц
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPagination создает новый экземпляр Pagination с заданными параметрами
func NewPagination(page, limit, defaultLimit int) *Pagination {
	if page < 1 {
		page = 1
	}

	if limit < 1 {
		limit = defaultLimit
	}
	if limit < 1 {
		limit = 1
	}

	return &Pagination{
		Page:  page,
		Limit: limit,
	}
}

// SetTotal устанавливает общее количество элементов, пересчитывает число страниц
// и прижимает номер страницы к диапазону [1, TotalPages].
// Пустой результат считается одной пустой страницей.
func (p *Pagination) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	p.Total = total
	p.TotalPages = (total + p.Limit - 1) / p.Limit
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}

	if p.Page > p.TotalPages {
		p.Page = p.TotalPages
	}
	if p.Page < 1 {
		p.Page = 1
	}

	p.HasNext = p.Page < p.TotalPages
	p.HasPrev = p.Page > 1
}

// GetOffset возвращает смещение первой записи страницы
func (p *Pagination) GetOffset() int {
	return (p.Page - 1) * p.Limit
}

// Bounds возвращает границы среза [start, end) для текущей страницы.
// Вызывать после SetTotal.
func (p *Pagination) Bounds() (int, int) {
	start := p.GetOffset()
	if start > p.Total {
		start = p.Total
	}
	end := start + p.Limit
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// Paginate возвращает срез элементов текущей страницы
func Paginate[T any](items []T, p *Pagination) []T {
	p.SetTotal(len(items))
	start, end := p.Bounds()
	page := make([]T, end-start)
	copy(page, items[start:end])
	return page
}
