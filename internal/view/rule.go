package view

import (
	"fmt"

	"github.com/jonathan-r-thorpe/nmos-js/internal/version"
)

// Renderer selects how a field's value is formatted.
type Renderer string

const (
	RenderText          Renderer = "text"
	RenderBoolean       Renderer = "boolean"
	RenderURL           Renderer = "url"
	RenderTable         Renderer = "array-of-subrows"
	RenderTags          Renderer = "tagged-map"
	RenderTimestamp     Renderer = "timestamp"
	RenderItems         Renderer = "items"
	RenderReference     Renderer = "reference"
	RenderBackReference Renderer = "back-reference"
	RenderJSON          Renderer = "json"
	RenderVerbatim      Renderer = "verbatim"
)

// Rule projects one field of a record into a display row.
type Rule struct {
	// Path is dot-delimited and may traverse nested mappings. The empty path
	// addresses the record itself.
	Path  string
	Label string
	// Since is the first Query API version that has the field. The zero
	// Version means always visible.
	Since    version.Version
	Renderer Renderer
	// Columns is the nested rule set applied to each element of a
	// RenderTable field. Empty means one column per key.
	Columns []Rule
	// Reference is the target resource type of RenderReference and
	// RenderBackReference. For back-references Path names the field on the
	// target that holds this record's id.
	Reference string
	// OmitIfAbsent drops the row when the path is absent or null instead of
	// rendering a placeholder.
	OmitIfAbsent bool
	// Transform, if set, maps the resolved value before formatting.
	Transform func(Value) Value
}

// UnknownResourceTypeError is returned for resource types with no rules.
type UnknownResourceTypeError struct {
	ResourceType string
}

func (e *UnknownResourceTypeError) Error() string {
	return fmt.Sprintf("unknown resource type: %s", e.ResourceType)
}

// RulesFor returns the Summary rules for a resource type.
func RulesFor(resourceType string) ([]Rule, error) {
	return TabRules(resourceType, TabSummary)
}

// TabRules returns the rules for one tab of a resource type. Tabs the type
// does not have fall back to its Summary rules.
func TabRules(resourceType string, tab Tab) ([]Rule, error) {
	tabs, ok := ruleSets[resourceType]
	if !ok {
		return nil, &UnknownResourceTypeError{ResourceType: resourceType}
	}
	if rules, ok := tabs[tab]; ok {
		return rules, nil
	}
	return tabs[TabSummary], nil
}

// HasTab reports whether a resource type defines rules for a tab.
func HasTab(resourceType string, tab Tab) bool {
	_, ok := ruleSets[resourceType][tab]
	return ok
}

// ruleSets is fixed at build time.
var ruleSets = map[string]map[Tab][]Rule{
	"nodes": {
		TabSummary: nodeRules,
	},
	"devices": {
		TabSummary: deviceRules,
	},
	"sources": {
		TabSummary: sourceRules,
	},
	"flows": {
		TabSummary: flowRules,
	},
	"senders": {
		TabSummary:       senderRules,
		TabActive:        senderEndpointRules("$active"),
		TabStaged:        senderEndpointRules("$staged"),
		TabTransportFile: transportFileRules,
	},
	"receivers": {
		TabSummary: receiverRules,
		TabActive:  receiverEndpointRules("$active"),
		TabStaged:  receiverEndpointRules("$staged"),
		TabConnect: connectRules,
	},
}
