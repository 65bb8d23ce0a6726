package models

// Resource represents a generic NMOS resource (node, sender, etc.) as decoded
// from the Query API, with any Connection API documents merged in under
// "$"-prefixed keys.
type Resource map[string]interface{}

// ID returns the resource's "id" field, or "" if it has none.
func (r Resource) ID() string {
	if id, ok := r["id"].(string); ok {
		return id
	}
	return ""
}

// Label returns the resource's "label" field, or "" if it has none.
func (r Resource) Label() string {
	if l, ok := r["label"].(string); ok {
		return l
	}
	return ""
}

// ResourceType describes a browsable resource type on the Query API.
type ResourceType struct {
	Name       string   `json:"name"`       // "senders", "nodes", etc.
	Label      string   `json:"label"`      // Human-readable: "Senders"
	Singular   string   `json:"singular"`   // Used in titles: "Sender"
	Connection bool     `json:"connection"` // Controllable via a Connection API
	Filters    []string `json:"filters"`    // List columns that accept a filter
}

// ResourceTypes is the registry of resource types, in navigation order.
var ResourceTypes = []ResourceType{
	{Name: "nodes", Label: "Nodes", Singular: "Node", Filters: []string{"label", "hostname"}},
	{Name: "devices", Label: "Devices", Singular: "Device", Filters: []string{"label", "type"}},
	{Name: "sources", Label: "Sources", Singular: "Source", Filters: []string{"label", "format"}},
	{Name: "flows", Label: "Flows", Singular: "Flow", Filters: []string{"label", "format"}},
	{Name: "senders", Label: "Senders", Singular: "Sender", Connection: true, Filters: []string{"label", "transport"}},
	{Name: "receivers", Label: "Receivers", Singular: "Receiver", Connection: true, Filters: []string{"label", "format"}},
}

// LookupResourceType returns the registered type with the given name.
func LookupResourceType(name string) (ResourceType, bool) {
	for _, rt := range ResourceTypes {
		if rt.Name == name {
			return rt, true
		}
	}
	return ResourceType{}, false
}
