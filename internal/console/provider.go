package console

import (
	"context"

	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
	"github.com/jonathan-r-thorpe/nmos-js/internal/registry"
)

// Provider is the data source behind the console. Errors are
// registry.ErrNotFound, *registry.NetworkError or *registry.ValidationError.
type Provider interface {
	QueryAPI() string
	ResourceURL(resourceType, id string) string
	// Get returns the Query API record only.
	Get(ctx context.Context, resourceType, id string) (models.Resource, error)
	// Fetch returns the record with any Connection API documents merged in.
	Fetch(ctx context.Context, resourceType, id string) (models.Resource, error)
	List(ctx context.Context, resourceType string, params registry.ListParams) (*registry.ListResult, error)
	Save(ctx context.Context, resourceType, id string, patch map[string]interface{}) (map[string]interface{}, error)
}

// ProviderSource returns the Provider for a versioned Query API URL.
type ProviderSource interface {
	For(queryAPI string) Provider
}

// ProviderFunc adapts a function to ProviderSource.
type ProviderFunc func(queryAPI string) Provider

func (f ProviderFunc) For(queryAPI string) Provider { return f(queryAPI) }
