package console

import (
	"strings"

	"github.com/jonathan-r-thorpe/nmos-js/internal/version"
)

// RenderContext carries everything a render needs besides the record: the
// API version that gates rules, the Query API to read from and the path the
// console is mounted under.
type RenderContext struct {
	Version  version.Version
	QueryAPI string
	BasePath string
}

// ResolveContext builds a RenderContext from the stored Query API selection
// (the browser cookie), falling back to the configured default. Neither
// being usable is a *version.ConfigurationError; there is no silent default
// version.
func ResolveContext(stored, fallback, basePath string) (RenderContext, error) {
	queryAPI := strings.TrimSpace(stored)
	if queryAPI == "" {
		queryAPI = strings.TrimSpace(fallback)
	}
	v, err := version.Resolve(queryAPI)
	if err != nil {
		return RenderContext{}, err
	}
	return RenderContext{
		Version:  v,
		QueryAPI: strings.TrimRight(queryAPI, "/"),
		BasePath: strings.TrimRight(basePath, "/"),
	}, nil
}

// ResourcePath returns the console path of a resource type's pages.
func (rc RenderContext) ResourcePath(resourceType string) string {
	return rc.BasePath + "/" + resourceType
}
