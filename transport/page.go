package transport

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/tomnomnom/linkheader"
)

// Response headers of paged endpoints.
const (
	HeaderTotalCount = "X-Total-Count"
	HeaderLink       = "Link"
)

// DefaultPageSize is used when a PageRequest has no size.
const DefaultPageSize = 20

// PageRequest selects one page of a list, optionally filtered by q.
type PageRequest struct {
	Q    string
	Page int
	Size int
}

// Normalized clamps the page to zero, applies the default size and trims q.
func (r PageRequest) Normalized() PageRequest {
	out := PageRequest{Q: strings.TrimSpace(r.Q), Page: r.Page, Size: r.Size}
	if out.Page < 0 {
		out.Page = 0
	}
	if out.Size <= 0 {
		out.Size = DefaultPageSize
	}
	return out
}

func (r PageRequest) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(r.Page))
	v.Set("size", strconv.Itoa(r.Size))
	if r.Q != "" {
		v.Set("q", r.Q)
	}
	return v
}

// Page is one page of a list together with the total count across pages.
type Page[T any] struct {
	Items []T
	Total int
	Page  int
	Size  int
	// Links maps relation names ("next", "prev", "first", "last") to URLs.
	Links map[string]string
}

// HasPrev reports whether an earlier page exists.
func (p Page[T]) HasPrev() bool {
	return p.Page > 0
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool {
	return (p.Page+1)*p.Size < p.Total
}

func newPage[T any](resp *response, req PageRequest, items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	page := Page[T]{
		Items: items,
		Page:  req.Page,
		Size:  req.Size,
		Total: parseTotal(resp.header.Get(HeaderTotalCount), req.Page*req.Size+len(items)),
		Links: parseLinks(resp.header.Values(HeaderLink)),
	}
	return page
}

// parseTotal reads X-Total-Count; a missing or malformed header falls back to
// what the response itself proves exists.
func parseTotal(header string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func parseLinks(headers []string) map[string]string {
	links := map[string]string{}
	for _, link := range linkheader.ParseMultiple(headers) {
		if link.Rel != "" {
			links[link.Rel] = link.URL
		}
	}
	return links
}
