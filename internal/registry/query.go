package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/peterhellberg/link"

	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
)

// Paging relations carried in Query API Link headers.
var pagingRels = []string{"first", "prev", "next", "last"}

// ListParams selects a page of a resource list.
type ListParams struct {
	// Filter holds basic query filters such as label=...
	Filter map[string]string
	// Cursor is an opaque value taken from ListResult.Links.
	Cursor string
	Limit  int
}

// ListResult is one page of a resource list.
type ListResult struct {
	Data []models.Resource `json:"data"`
	// URL is the upstream request URL, shown as the "raw" link.
	URL string `json:"url"`
	// Links maps paging relations (first, prev, next, last) to cursors.
	Links map[string]string `json:"links"`
}

// QueryAPI reads resources from one registry's Query API.
type QueryAPI struct {
	client   *Client
	base     string
	pageSize int
}

// NewQueryAPI returns a QueryAPI for the versioned base URL
// (e.g. http://registry/x-nmos/query/v1.3).
func NewQueryAPI(client *Client, base string, pageSize int) *QueryAPI {
	return &QueryAPI{client: client, base: strings.TrimRight(base, "/"), pageSize: pageSize}
}

// Base returns the versioned base URL.
func (q *QueryAPI) Base() string { return q.base }

// ResourceURL returns the URL of a single resource.
func (q *QueryAPI) ResourceURL(resourceType, id string) string {
	return q.base + "/" + resourceType + "/" + url.PathEscape(id)
}

// Get fetches a single resource.
func (q *QueryAPI) Get(ctx context.Context, resourceType, id string) (models.Resource, error) {
	var r models.Resource
	if _, err := q.client.GetJSON(ctx, q.ResourceURL(resourceType, id), nil, &r); err != nil {
		return nil, fmt.Errorf("fetching %s %s: %w", resourceType, id, err)
	}
	if r == nil {
		return nil, fmt.Errorf("fetching %s %s: empty response: %w", resourceType, id, ErrNotFound)
	}
	return r, nil
}

// List fetches one page of resources.
func (q *QueryAPI) List(ctx context.Context, resourceType string, p ListParams) (*ListResult, error) {
	params, err := cursorParams(p.Cursor)
	if err != nil {
		return nil, err
	}
	for k, v := range p.Filter {
		if v != "" {
			params.Set(k, v)
		}
	}
	limit := p.Limit
	if limit <= 0 {
		limit = q.pageSize
	}
	if limit > 0 && params.Get("paging.limit") == "" {
		params.Set("paging.limit", strconv.Itoa(limit))
	}

	endpoint := q.base + "/" + resourceType + "/"
	body, header, err := q.client.Get(ctx, endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", resourceType, err)
	}
	var data []models.Resource
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing %s list: %w", resourceType, err)
	}

	result := &ListResult{Data: data, URL: endpoint, Links: pagingLinks(header)}
	if len(params) > 0 {
		result.URL += "?" + params.Encode()
	}
	return result, nil
}

// pagingLinks turns the Link header into cursors keyed by relation.
func pagingLinks(header http.Header) map[string]string {
	links := map[string]string{}
	group := link.ParseHeader(header)
	for _, rel := range pagingRels {
		l := group[rel]
		if l == nil {
			continue
		}
		u, err := url.Parse(l.URI)
		if err != nil {
			continue
		}
		cursor := url.Values{}
		for k, vs := range u.Query() {
			if strings.HasPrefix(k, "paging.") {
				cursor[k] = vs
			}
		}
		links[rel] = cursor.Encode()
	}
	return links
}

// cursorParams decodes a cursor, which may only carry paging parameters.
func cursorParams(cursor string) (url.Values, error) {
	if cursor == "" {
		return url.Values{}, nil
	}
	params, err := url.ParseQuery(cursor)
	if err != nil {
		return nil, &ValidationError{Field: "cursor", Message: err.Error()}
	}
	for k := range params {
		if !strings.HasPrefix(k, "paging.") {
			return nil, &ValidationError{Field: "cursor", Message: fmt.Sprintf("unexpected parameter %q", k)}
		}
	}
	return params, nil
}
