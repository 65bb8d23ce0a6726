package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
)

// Provider reads NMOS resources from one Query API and, for senders and
// receivers, merges in the documents of the owning node's Connection API.
type Provider struct {
	client *Client
	query  *QueryAPI
	logger *zap.Logger
}

// NewProvider creates a Provider for a versioned Query API URL.
func NewProvider(client *Client, queryAPI string, pageSize int, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		client: client,
		query:  NewQueryAPI(client, queryAPI, pageSize),
		logger: logger.With(zap.String("query_api", queryAPI)),
	}
}

// QueryAPI returns the versioned Query API URL.
func (p *Provider) QueryAPI() string { return p.query.Base() }

// ResourceURL returns the upstream URL of a resource.
func (p *Provider) ResourceURL(resourceType, id string) string {
	return p.query.ResourceURL(resourceType, id)
}

// Get returns the Query API record of a resource alone.
func (p *Provider) Get(ctx context.Context, resourceType, id string) (models.Resource, error) {
	return p.query.Get(ctx, resourceType, id)
}

// Fetch returns a resource. Connection API failures are logged and leave
// the "$" keys out; the Query API record is still returned.
func (p *Provider) Fetch(ctx context.Context, resourceType, id string) (models.Resource, error) {
	r, err := p.query.Get(ctx, resourceType, id)
	if err != nil {
		return nil, err
	}
	rt, ok := models.LookupResourceType(resourceType)
	if !ok || !rt.Connection {
		return r, nil
	}

	conn, err := p.connectionAPI(ctx, r)
	if err != nil {
		p.logger.Warn("connection API unavailable",
			zap.String("resource", resourceType), zap.String("id", id), zap.Error(err))
		return r, nil
	}
	if conn == nil {
		return r, nil
	}
	docs, err := conn.Endpoints(ctx, resourceType, id)
	if err != nil {
		p.logger.Warn("fetching connection endpoints failed",
			zap.String("resource", resourceType), zap.String("id", id), zap.Error(err))
		return r, nil
	}
	for k, v := range docs {
		r[k] = v
	}
	return r, nil
}

// List returns one page of resources.
func (p *Provider) List(ctx context.Context, resourceType string, params ListParams) (*ListResult, error) {
	return p.query.List(ctx, resourceType, params)
}

// Save patches the staged parameters of a sender or receiver.
func (p *Provider) Save(ctx context.Context, resourceType, id string, patch map[string]interface{}) (map[string]interface{}, error) {
	rt, ok := models.LookupResourceType(resourceType)
	if !ok || !rt.Connection {
		return nil, &ValidationError{Message: fmt.Sprintf("%s have no staged parameters", resourceType)}
	}
	r, err := p.query.Get(ctx, resourceType, id)
	if err != nil {
		return nil, err
	}
	conn, err := p.connectionAPI(ctx, r)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, &ValidationError{Message: fmt.Sprintf("device of %s %s has no Connection API", resourceType, id)}
	}
	p.logger.Debug("patching staged parameters",
		zap.String("resource", resourceType), zap.String("id", id), zap.String("connection_api", conn.Href()))
	return conn.PatchStaged(ctx, resourceType, id, patch)
}

// connectionAPI locates the Connection API of a sender or receiver through
// its device. It returns nil if the device advertises none.
func (p *Provider) connectionAPI(ctx context.Context, r models.Resource) (*ConnectionAPI, error) {
	deviceID, _ := r["device_id"].(string)
	if deviceID == "" {
		return nil, nil
	}
	device, err := p.query.Get(ctx, "devices", deviceID)
	if err != nil {
		return nil, err
	}
	href := ConnectionHref(device)
	if href == "" {
		return nil, nil
	}
	return NewConnectionAPI(p.client, href, p.logger), nil
}

// Check pings a registry by listing the versions under its Query API root.
func Check(ctx context.Context, client *Client, reg *models.Registry) ([]string, error) {
	versions, err := client.DiscoverVersions(ctx, reg.Root())
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("no Query API versions under %s", reg.Root())
	}
	return versions, nil
}

// Providers hands out Providers for Query API URLs, reusing one Client per
// URL. TLS settings come from the matching configured registry.
type Providers struct {
	store    *models.RegistryStore
	pageSize int
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[string]*Client
}

// NewProviders creates a Providers backed by a registry store.
func NewProviders(store *models.RegistryStore, pageSize int, logger *zap.Logger) *Providers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Providers{
		store:    store,
		pageSize: pageSize,
		logger:   logger,
		clients:  make(map[string]*Client),
	}
}

// For returns a Provider for queryAPI.
func (f *Providers) For(queryAPI string) *Provider {
	return NewProvider(f.ClientFor(queryAPI), queryAPI, f.pageSize, f.logger)
}

// ClientFor returns the shared Client for queryAPI.
func (f *Providers) ClientFor(queryAPI string) *Client {
	key := strings.TrimRight(queryAPI, "/")
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.clients[key]; ok {
		return c
	}
	reg := &models.Registry{QueryAPI: key}
	for _, r := range f.store.List() {
		if strings.TrimRight(r.QueryAPI, "/") == key {
			reg = r
			break
		}
	}
	c := NewClient(reg, f.logger)
	f.clients[key] = c
	return c
}

// Forget drops the cached Client for queryAPI, e.g. after its registry was
// deleted or its TLS settings changed.
func (f *Providers) Forget(queryAPI string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.clients, strings.TrimRight(queryAPI, "/"))
}
