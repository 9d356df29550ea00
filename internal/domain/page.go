package domain

import (
	"net/url"
	"strconv"
)

// Page представляет каноническую пагинированную выборку.
// Все потребители листинговых эндпоинтов ожидают именно эту форму,
// независимо от того в каком виде ответил бэкенд.
type Page[T any] struct {
	Items       []T `json:"items"`
	TotalCount  int `json:"totalCount"`
	PageCount   int `json:"pageCount"`
	CurrentPage int `json:"currentPage"`
}

// EmptyPage возвращает пустую но валидную выборку (fail-open результат)
func EmptyPage[T any]() Page[T] {
	return Page[T]{Items: []T{}}
}

// PageRequest представляет параметры запроса листингового эндпоинта
type PageRequest struct {
	PageNumber int
	PageSize   int
	Search     string
	IsDelete   bool
}

// Values кодирует параметры в query string.
// Бэкенд ожидает все значения строками, включая isDelete.
func (r PageRequest) Values() url.Values {
	v := url.Values{}
	v.Set("pageNumber", strconv.Itoa(r.PageNumber))
	v.Set("pageSize", strconv.Itoa(r.PageSize))
	if r.Search != "" {
		v.Set("search", r.Search)
	}
	v.Set("isDelete", strconv.FormatBool(r.IsDelete))
	return v
}

// PageCountFor считает число страниц: ceil(totalCount / pageSize)
func PageCountFor(totalCount, pageSize int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}
