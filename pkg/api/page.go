package api

import "fmt"

// PageRequest is the caller-facing pagination request. Page is 1-based;
// Size <= 0 asks for the backend default with no client-side bound.
type PageRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// FirstPage requests the first page of the given size.
func FirstPage(size int) PageRequest {
	return PageRequest{Page: 1, Size: size}
}

// Normalize fills in defaults: page 1 when unset.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Size < 0 {
		r.Size = 0
	}
	return r
}

// Offset returns the zero-based offset for limit/offset backends.
func (r PageRequest) Offset() int {
	r = r.Normalize()
	if r.Size == 0 {
		return 0
	}
	return (r.Page - 1) * r.Size
}

// Bounded reports whether the request carries a size limit.
func (r PageRequest) Bounded() bool {
	return r.Size > 0
}

// Page is one page of a collection. Total is nil when the backend did not
// report a total; it is never estimated.
type Page[T any] struct {
	Items []T  `json:"items"`
	Total *int `json:"total,omitempty"`

	// Page and Size are set when the backend echoed them.
	Page int `json:"page,omitempty"`
	Size int `json:"size,omitempty"`
}

// Len returns the number of items on the page.
func (p *Page[T]) Len() int {
	return len(p.Items)
}

// Check verifies the page invariants against the request that produced it.
func (p *Page[T]) Check(req PageRequest) error {
	if req.Bounded() && len(p.Items) > req.Size {
		return fmt.Errorf("page holds %d items, more than requested size %d", len(p.Items), req.Size)
	}
	if p.Total != nil && *p.Total < len(p.Items) {
		return fmt.Errorf("page total %d is less than item count %d", *p.Total, len(p.Items))
	}
	return nil
}

// MapPage converts the items of a page, keeping its metadata.
func MapPage[S, T any](p *Page[S], fn func(S) T) *Page[T] {
	out := &Page[T]{
		Items: make([]T, 0, len(p.Items)),
		Total: p.Total,
		Page:  p.Page,
		Size:  p.Size,
	}
	for _, item := range p.Items {
		out.Items = append(out.Items, fn(item))
	}
	return out
}

// Window applies a page request to a complete, unpaginated list. It is
// used for endpoints that return every record at once; Total stays nil
// because the backend reported none.
func Window[T any](all []T, req PageRequest) *Page[T] {
	req = req.Normalize()
	if !req.Bounded() {
		return &Page[T]{Items: all}
	}
	start := req.Offset()
	if start >= len(all) {
		return &Page[T]{Items: []T{}}
	}
	end := start + req.Size
	if end > len(all) {
		end = len(all)
	}
	return &Page[T]{Items: all[start:end]}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
