package gqlx

import "github.com/aussiebroadwan/banksync/pkg/paging"

// Connection is the wire shape of every paginated field.
type Connection[T any] struct {
	Nodes      []T             `json:"nodes"`
	PageInfo   paging.PageInfo `json:"pageInfo"`
	TotalCount int             `json:"totalCount"`
}

// Page converts the connection for a paging.Pager.
func (c Connection[T]) Page() paging.Page[T] {
	return paging.Page[T]{
		Nodes:      c.Nodes,
		PageInfo:   c.PageInfo,
		TotalCount: c.TotalCount,
	}
}

// PageVariables builds the cursor variables of a paginated operation. An
// empty cursor means "from the start".
func PageVariables(vars map[string]any, after string, first int) map[string]any {
	out := make(map[string]any, len(vars)+2)
	for k, v := range vars {
		out[k] = v
	}
	out["first"] = first
	if after != "" {
		out["after"] = after
	}
	return out
}
