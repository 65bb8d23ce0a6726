package models

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry represents a user-configured NMOS registry, addressed by its
// versioned Query API URL.
type Registry struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	QueryAPI    string     `json:"query_api"` // e.g. "http://registry:8010/x-nmos/query/v1.3"
	Insecure    bool       `json:"insecure"`  // skip TLS verification
	CACert      string     `json:"ca_cert,omitempty"`
	Versions    []string   `json:"versions,omitempty"` // discovered from the API root
	PingStatus  string     `json:"ping_status"`        // "unknown", "ok", "error"
	PingError   string     `json:"ping_error,omitempty"`
	LastChecked *time.Time `json:"last_checked,omitempty"`
}

// Root returns the Query API root (the URL without its version segment),
// used for version discovery.
func (r *Registry) Root() string {
	u := strings.TrimRight(r.QueryAPI, "/")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[:i+1]
	}
	return u + "/"
}

// Host returns the host:port of the Query API, or "" if it does not parse.
func (r *Registry) Host() string {
	u, err := url.Parse(r.QueryAPI)
	if err != nil {
		return ""
	}
	return u.Host
}

// RegistryStore is an in-memory thread-safe store for registries.
type RegistryStore struct {
	mu   sync.RWMutex
	regs map[string]*Registry
}

// NewRegistryStore creates an empty registry store.
func NewRegistryStore() *RegistryStore {
	return &RegistryStore{regs: make(map[string]*Registry)}
}

// Create adds a new registry, assigning it a UUID.
func (s *RegistryStore) Create(r *Registry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = uuid.New().String()
	r.PingStatus = "unknown"
	s.regs[r.ID] = r
}

// Get returns a copy of a registry by ID, or nil if not found.
func (s *RegistryStore) Get(id string) *Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.regs[id]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

// FindByName returns a copy of the first registry with the given name.
func (s *RegistryStore) FindByName(name string) *Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.regs {
		if r.Name == name {
			cp := *r
			return &cp
		}
	}
	return nil
}

// List returns copies of all registries, ordered by name.
func (s *RegistryStore) List() []*Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Registry, 0, len(s.regs))
	for _, r := range s.regs {
		cp := *r
		result = append(result, &cp)
	}
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].Name < result[i].Name {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result
}

// Delete removes a registry by ID.
func (s *RegistryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.regs[id]; !ok {
		return false
	}
	delete(s.regs, id)
	return true
}

// SetHealth records the outcome of a connectivity check.
func (s *RegistryStore) SetHealth(id, pingStatus, pingError string, versions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.regs[id]
	if !ok {
		return
	}
	now := time.Now()
	r.PingStatus = pingStatus
	r.PingError = pingError
	if versions != nil {
		r.Versions = versions
	}
	r.LastChecked = &now
}
