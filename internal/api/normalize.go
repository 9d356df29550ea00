package api

import (
	"bytes"
	"encoding/json"

	"github.com/aidar/taskboard-client/internal/domain"
)

// Listing collection keys used by the backend's enveloped payloads.
const (
	KeyProjects   = "projects"
	KeyWorkAreas  = "workAreas"
	KeyWorkTasks  = "workTasks"
	KeyObjectives = "taskObjectives"
	KeyComments   = "comments"
	KeyMembers    = "members"
)

// pageMeta carries backend-supplied pagination fields from enveloped shapes.
type pageMeta struct {
	TotalCount  int `json:"totalCount"`
	PageCount   int `json:"pageCount"`
	CurrentPage int `json:"currentPage"`
}

// NormalizeList converts a listing payload of unknown shape into the
// canonical page. The backend answers the same endpoint in at least five
// different forms; they are probed in a fixed order, first match wins:
//
//  1. a bare array of entities
//  2. {success:true, data:[...]}
//  3. {success:true, data:{<key>:[...], totalCount, pageCount, currentPage}}
//  4. {data:{<key>:[...], ...}} without a success flag
//  5. {data:[...]}
//  6. {<key>:[...], totalCount, pageCount, currentPage} at the root
//
// Anything else normalizes to an empty valid page (fail-open); the second
// return value reports whether any shape matched so callers can count
// fallbacks. Shapes 1, 2 and 5 are unpaginated from the backend's point of
// view and get paginated client-side.
func NormalizeList[T any](body []byte, key string, req domain.PageRequest) (domain.Page[T], bool) {
	return NormalizeFilteredList[T](body, key, req, nil)
}

// NormalizeFilteredList is NormalizeList with a visibility filter. The
// filter runs before the client-side pagination math, so totalCount and
// pageCount reflect the filtered set, not the raw backend set.
func NormalizeFilteredList[T any](body []byte, key string, req domain.PageRequest, keep func(*T) bool) (domain.Page[T], bool) {
	items, meta, matched := probeShapes[T](body, key)
	if !matched {
		return domain.EmptyPage[T](), false
	}
	return finalize(items, meta, req, keep), true
}

// probeShapes runs the ordered shape probe. A nil meta means the payload
// was unpaginated and counts must be computed client-side.
func probeShapes[T any](body []byte, key string) ([]T, *pageMeta, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil, true
	}

	// Shape 1: bare array.
	if trimmed[0] == '[' {
		arr, ok := asArray[T](trimmed)
		return arr, nil, ok
	}

	var env struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, nil, false
	}

	// Shapes 2 and 3: explicit success flag.
	if env.Success != nil && *env.Success {
		if arr, ok := asArray[T](env.Data); ok {
			return arr, nil, true
		}
		if items, meta, ok := asKeyedObject[T](env.Data, key); ok {
			return items, meta, true
		}
	}

	// Shape 4: enveloped data without a success flag.
	if env.Success == nil {
		if items, meta, ok := asKeyedObject[T](env.Data, key); ok {
			return items, meta, true
		}
	}

	// Shape 5: data is itself an array.
	if arr, ok := asArray[T](env.Data); ok {
		return arr, nil, true
	}

	// Shape 6: collection key at the root.
	if items, meta, ok := asKeyedObject[T](trimmed, key); ok {
		return items, meta, true
	}

	return nil, nil, false
}

// asArray decodes raw as a JSON array of T.
func asArray[T any](raw json.RawMessage) ([]T, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var arr []T
	if err := json.Unmarshal(trimmed, &arr); err != nil {
		return nil, false
	}
	return arr, true
}

// asKeyedObject decodes raw as an object holding the collection under key
// plus pagination fields alongside it.
func asKeyedObject[T any](raw json.RawMessage, key string) ([]T, *pageMeta, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, nil, false
	}
	itemsRaw, ok := obj[key]
	if !ok {
		return nil, nil, false
	}
	items, ok := asArray[T](itemsRaw)
	if !ok {
		return nil, nil, false
	}
	meta := &pageMeta{}
	// Pagination fields are best-effort: a decode failure leaves zero meta,
	// which finalize backfills from the item count.
	_ = json.Unmarshal(trimmed, meta)
	return items, meta, true
}

// finalize applies the visibility filter and the pagination invariants.
func finalize[T any](items []T, meta *pageMeta, req domain.PageRequest, keep func(*T) bool) domain.Page[T] {
	if keep != nil {
		filtered := make([]T, 0, len(items))
		for i := range items {
			if keep(&items[i]) {
				filtered = append(filtered, items[i])
			}
		}
		items = filtered
	}

	if meta != nil {
		// Backend-paginated: counts come from the backend, with zero-value
		// backfill for payloads that omit them.
		page := domain.Page[T]{
			Items:       items,
			TotalCount:  meta.TotalCount,
			PageCount:   meta.PageCount,
			CurrentPage: meta.CurrentPage,
		}
		if page.Items == nil {
			page.Items = []T{}
		}
		if page.TotalCount == 0 && len(items) > 0 {
			page.TotalCount = len(items)
		}
		if page.PageCount == 0 && page.TotalCount > 0 {
			page.PageCount = domain.PageCountFor(page.TotalCount, req.PageSize)
		}
		if page.CurrentPage == 0 {
			page.CurrentPage = req.PageNumber
		}
		return page
	}

	// Unpaginated from the backend's perspective: count first, then slice.
	total := len(items)
	return domain.Page[T]{
		Items:       paginateLocally(items, req),
		TotalCount:  total,
		PageCount:   domain.PageCountFor(total, req.PageSize),
		CurrentPage: req.PageNumber,
	}
}

// paginateLocally slices a full result set for listing endpoints where the
// backend does not support server-side pagination. Kept as its own path:
// counts here describe the fetched snapshot, which can go stale between
// refetches of the same page.
func paginateLocally[T any](items []T, req domain.PageRequest) []T {
	if req.PageSize <= 0 {
		return items
	}
	start := 0
	if req.PageNumber > 1 {
		start = (req.PageNumber - 1) * req.PageSize
	}
	if start >= len(items) {
		return []T{}
	}
	end := min(start+req.PageSize, len(items))
	return items[start:end]
}
