package models

import (
	"strconv"
	"strings"
)

// CatalogFilters фильтры каталога, применяемые в памяти после объединения
type CatalogFilters struct {
	// Search подстрока без учета регистра по SKU, названию, бренду и модели
	Search string `json:"search,omitempty"`
	Brand  string `json:"brand,omitempty"`
	Model  string `json:"model,omitempty"`

	// Границы годов совместимости
	YearFrom *int `json:"yearFrom,omitempty"`
	YearTo   *int `json:"yearTo,omitempty"`
}

// IsEmpty сообщает, что ни один фильтр не активен
func (f *CatalogFilters) IsEmpty() bool {
	if f == nil {
		return true
	}
	return normalize(f.Search) == "" &&
		normalize(f.Brand) == "" &&
		normalize(f.Model) == "" &&
		f.YearFrom == nil &&
		f.YearTo == nil
}

// Matches проверяет товар по всем активным фильтрам (логическое И)
func (f *CatalogFilters) Matches(p *ProductSummary) bool {
	if f == nil {
		return true
	}

	if search := normalize(f.Search); search != "" {
		found := false
		for _, field := range []string{p.SKU, p.Name, deref(p.Brand), deref(p.Model)} {
			if field != "" && strings.Contains(strings.ToLower(field), search) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if brand := normalize(f.Brand); brand != "" && !strings.Contains(strings.ToLower(deref(p.Brand)), brand) {
		return false
	}

	if model := normalize(f.Model); model != "" && !strings.Contains(strings.ToLower(deref(p.Model)), model) {
		return false
	}

	// Товар без годов совместимости проходит любой фильтр по годам
	if p.YearFrom == nil && p.YearTo == nil {
		return true
	}

	if f.YearFrom != nil {
		upper := p.YearTo
		if upper == nil {
			upper = p.YearFrom
		}
		if *upper < *f.YearFrom {
			return false
		}
	}

	if f.YearTo != nil {
		lower := p.YearFrom
		if lower == nil {
			lower = p.YearTo
		}
		if *lower > *f.YearTo {
			return false
		}
	}

	return true
}

// ToMap преобразует фильтры в map, используется для ключей кэша и логов
func (f *CatalogFilters) ToMap() map[string]string {
	result := make(map[string]string)
	if f == nil {
		return result
	}

	if v := normalize(f.Search); v != "" {
		result["search"] = v
	}
	if v := normalize(f.Brand); v != "" {
		result["brand"] = v
	}
	if v := normalize(f.Model); v != "" {
		result["model"] = v
	}
	if f.YearFrom != nil {
		result["yearFrom"] = strconv.Itoa(*f.YearFrom)
	}
	if f.YearTo != nil {
		result["yearTo"] = strconv.Itoa(*f.YearTo)
	}

	return result
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
