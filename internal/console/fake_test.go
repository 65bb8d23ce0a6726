package console

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
	"github.com/jonathan-r-thorpe/nmos-js/internal/registry"
)

// fakeProvider serves records from memory and counts upstream calls.
type fakeProvider struct {
	queryAPI string
	records  map[string]models.Resource // "type/id"
	fetches  atomic.Int32
	gets     atomic.Int32
	saveErr  error
	block    chan struct{}

	mu    sync.Mutex
	saved map[string]interface{}
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		queryAPI: "http://registry/x-nmos/query/v1.3",
		records:  map[string]models.Resource{},
	}
}

func (f *fakeProvider) add(resourceType string, r models.Resource) {
	f.records[resourceType+"/"+r.ID()] = r
}

func (f *fakeProvider) QueryAPI() string { return f.queryAPI }

func (f *fakeProvider) ResourceURL(resourceType, id string) string {
	return f.queryAPI + "/" + resourceType + "/" + id
}

func (f *fakeProvider) Get(ctx context.Context, resourceType, id string) (models.Resource, error) {
	f.gets.Add(1)
	r, ok := f.records[resourceType+"/"+id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", resourceType, id, registry.ErrNotFound)
	}
	return r, nil
}

func (f *fakeProvider) Fetch(ctx context.Context, resourceType, id string) (models.Resource, error) {
	f.fetches.Add(1)
	if f.block != nil {
		<-f.block
	}
	r, ok := f.records[resourceType+"/"+id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", resourceType, id, registry.ErrNotFound)
	}
	return r, nil
}

func (f *fakeProvider) List(ctx context.Context, resourceType string, params registry.ListParams) (*registry.ListResult, error) {
	res := &registry.ListResult{URL: f.queryAPI + "/" + resourceType + "/", Links: map[string]string{}}
	for key, r := range f.records {
		if len(key) <= len(resourceType) || key[:len(resourceType)+1] != resourceType+"/" {
			continue
		}
		match := true
		for k, v := range params.Filter {
			if fmt.Sprint(r[k]) != v {
				match = false
			}
		}
		if match {
			res.Data = append(res.Data, r)
		}
	}
	if params.Cursor == "" {
		res.Links["next"] = "paging.since=1:0"
	}
	return res, nil
}

func (f *fakeProvider) Save(ctx context.Context, resourceType, id string, patch map[string]interface{}) (map[string]interface{}, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = patch
	return patch, nil
}

func (f *fakeProvider) lastSaved() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved
}

func (f *fakeProvider) source() ProviderSource {
	return ProviderFunc(func(string) Provider { return f })
}
