package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan-r-thorpe/nmos-js/internal/version"
)

// ParseAPIRoot parses an NMOS API root listing such as
// ["v1.0/", "v1.1/", "v1.2/", "v1.3/"]. Entries are returned without the
// trailing slash, in version order; entries that are not versions are
// dropped.
func ParseAPIRoot(body []byte) ([]string, error) {
	var entries []string
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parsing API root response: %w", err)
	}
	type parsed struct {
		v   version.Version
		raw string
	}
	var vs []parsed
	for _, e := range entries {
		v, err := version.Parse(e)
		if err != nil {
			continue
		}
		vs = append(vs, parsed{v, strings.TrimSuffix(e, "/")})
	}
	sort.Slice(vs, func(i, j int) bool { return version.Compare(vs[i].v, vs[j].v) == version.Less })
	result := make([]string, len(vs))
	for i, p := range vs {
		result[i] = p.raw
	}
	return result, nil
}

// DiscoverVersions lists the versions served under an API root URL
// (".../x-nmos/query/").
func (c *Client) DiscoverVersions(ctx context.Context, root string) ([]string, error) {
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	body, _, err := c.Get(ctx, root, nil)
	if err != nil {
		return nil, err
	}
	return ParseAPIRoot(body)
}

// PreferredQueryAPI returns the Query API URL for the highest version served
// under root, or "" if none was found.
func PreferredQueryAPI(root string, versions []string) string {
	best, ok := version.Highest(versions)
	if !ok {
		return ""
	}
	return strings.TrimRight(root, "/") + "/" + best.String()
}
