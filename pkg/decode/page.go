package decode

import (
	"encoding/json"
	"fmt"

	"github.com/rhuss/opexcore/pkg/api"
)

// Flat decodes a bare JSON array. The backend reports no total, so the
// page's Total stays nil.
func Flat[T any](data []byte, req api.PageRequest, required ...string) (*api.Page[T], error) {
	items, err := List[T](data, required...)
	if err != nil {
		return nil, err
	}
	return finish(&api.Page[T]{Items: items}, req)
}

// Totaled decodes an object carrying the items under itemsKey and the total
// under totalKey.
func Totaled[T any](data []byte, itemsKey, totalKey string, req api.PageRequest, required ...string) (*api.Page[T], error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, syntaxError(err)
	}
	if err := requireKeys(fields, []string{itemsKey, totalKey}); err != nil {
		return nil, err
	}
	items, err := List[T](fields[itemsKey], required...)
	if err != nil {
		return nil, err
	}
	var total int
	if err := json.Unmarshal(fields[totalKey], &total); err != nil {
		return nil, api.NewDecodeError(totalKey, fmt.Sprintf("%q is not an integer", totalKey), err)
	}
	return finish(&api.Page[T]{Items: items, Total: &total}, req)
}

// echoed is the {items,total,page,size} envelope. Pages and sizes are
// optional: some releases omit them.
type echoed struct {
	Items json.RawMessage `json:"items"`
	Total *int            `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
	Pages int             `json:"pages"`
}

// Echoed decodes a page envelope that echoes the request's page and size.
func Echoed[T any](data []byte, req api.PageRequest, required ...string) (*api.Page[T], error) {
	var env echoed
	if err := Object(data, &env, "items"); err != nil {
		return nil, err
	}
	items, err := List[T](env.Items, required...)
	if err != nil {
		return nil, err
	}
	return finish(&api.Page[T]{Items: items, Total: env.Total, Page: env.Page, Size: env.Size}, req)
}

// finish enforces the page invariants: a reported total below the item
// count is a decode error, and items beyond the requested size are clipped.
func finish[T any](p *api.Page[T], req api.PageRequest) (*api.Page[T], error) {
	if p.Total != nil && *p.Total < len(p.Items) {
		return nil, api.NewDecodeError("total",
			fmt.Sprintf("reported total %d is less than the %d items returned", *p.Total, len(p.Items)), nil)
	}
	req = req.Normalize()
	if req.Bounded() && len(p.Items) > req.Size {
		p.Items = p.Items[:req.Size]
	}
	return p, nil
}
