package view

import (
	"fmt"
	"strings"

	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
)

// Tab names a panel of a show view.
type Tab string

const (
	TabSummary       Tab = "summary"
	TabActive        Tab = "active"
	TabStaged        Tab = "staged"
	TabTransportFile Tab = "transportfile"
	TabConnect       Tab = "connect"
)

// TabDescriptor describes one tab. Suffix is the path segment after
// ".../show"; Summary has none.
type TabDescriptor struct {
	Tab     Tab
	Name    string
	Suffix  string
	Enabled func(models.Resource) bool
}

// UnknownTabError is returned for navigation suffixes that match no tab.
type UnknownTabError struct {
	Suffix string
}

func (e *UnknownTabError) Error() string {
	return fmt.Sprintf("unknown tab: %q", e.Suffix)
}

func always(models.Resource) bool { return true }

// Descriptors lists every tab in display order.
var Descriptors = []TabDescriptor{
	{Tab: TabSummary, Name: "Summary", Suffix: "", Enabled: always},
	{Tab: TabActive, Name: "Active", Suffix: "active", Enabled: always},
	{Tab: TabStaged, Name: "Staged", Suffix: "staged", Enabled: always},
	{Tab: TabTransportFile, Name: "Transport File", Suffix: "transportfile", Enabled: func(r models.Resource) bool {
		return !Lookup(r, "$transportfile").Missing()
	}},
	{Tab: TabConnect, Name: "Connect", Suffix: "connect", Enabled: func(r models.Resource) bool {
		return !Lookup(r, "$connectionapi").Missing()
	}},
}

// ActiveTab matches a navigation suffix ("", "/", "active", "/staged/")
// to its descriptor.
func ActiveTab(suffix string) (TabDescriptor, error) {
	s := strings.Trim(suffix, "/")
	for _, d := range Descriptors {
		if d.Suffix == s {
			return d, nil
		}
	}
	return TabDescriptor{}, &UnknownTabError{Suffix: suffix}
}

// SelectTab resolves a suffix for a resource type, defaulting to Summary when
// the suffix is unknown or the type has no such tab. The error reports why
// the default was taken and is informational only.
func SelectTab(resourceType, suffix string) (TabDescriptor, error) {
	d, err := ActiveTab(suffix)
	if err != nil {
		return Descriptors[0], err
	}
	if d.Tab != TabSummary && !HasTab(resourceType, d.Tab) {
		return Descriptors[0], &UnknownTabError{Suffix: suffix}
	}
	return d, nil
}

// TabState is a tab as shown in a tab bar.
type TabState struct {
	Tab     Tab    `json:"tab"`
	Name    string `json:"name"`
	Href    string `json:"href"`
	Enabled bool   `json:"enabled"`
	Current bool   `json:"current"`
}

// TabsFor lists the tabs of a resource type for a record. Types without
// connection tabs get Summary only.
func TabsFor(resourceType, basePath, id string, r models.Resource, current Tab) []TabState {
	var tabs []TabState
	for _, d := range Descriptors {
		if d.Tab != TabSummary && !HasTab(resourceType, d.Tab) {
			continue
		}
		tabs = append(tabs, TabState{
			Tab:     d.Tab,
			Name:    d.Name,
			Href:    ShowPath(basePath, id, d.Tab),
			Enabled: d.Enabled(r),
			Current: d.Tab == current,
		})
	}
	return tabs
}

// ShowPath builds "{basePath}/{id}/show[/{tabName}]".
func ShowPath(basePath, id string, tab Tab) string {
	p := strings.TrimRight(basePath, "/") + "/" + id + "/show"
	if tab == TabSummary || tab == "" {
		return p
	}
	return p + "/" + string(tab)
}

// EditPath builds "{basePath}/{id}", the staged edit form.
func EditPath(basePath, id string) string {
	return strings.TrimRight(basePath, "/") + "/" + id
}
