package view

import (
	"errors"
	"testing"

	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
)

func TestActiveTab(t *testing.T) {
	tests := []struct {
		suffix string
		want   Tab
	}{
		{"", TabSummary},
		{"/", TabSummary},
		{"active", TabActive},
		{"/active", TabActive},
		{"/staged/", TabStaged},
		{"transportfile", TabTransportFile},
		{"/connect", TabConnect},
	}
	for _, tc := range tests {
		t.Run(tc.suffix, func(t *testing.T) {
			d, err := ActiveTab(tc.suffix)
			if err != nil {
				t.Fatalf("ActiveTab(%q) returned error: %v", tc.suffix, err)
			}
			if d.Tab != tc.want {
				t.Errorf("ActiveTab(%q) = %s, want %s", tc.suffix, d.Tab, tc.want)
			}
		})
	}
}

func TestActiveTab_Unknown(t *testing.T) {
	_, err := ActiveTab("/foo")
	var unknown *UnknownTabError
	if !errors.As(err, &unknown) {
		t.Fatalf("ActiveTab(/foo) error = %v, want *UnknownTabError", err)
	}
}

func TestSelectTab_FallsBackToSummary(t *testing.T) {
	d, err := SelectTab("senders", "/foo")
	if d.Tab != TabSummary {
		t.Errorf("SelectTab(/foo) = %s, want summary", d.Tab)
	}
	if err == nil {
		t.Error("SelectTab(/foo) should report why it fell back")
	}

	d, _ = SelectTab("nodes", "active")
	if d.Tab != TabSummary {
		t.Errorf("nodes have no active tab, got %s", d.Tab)
	}

	d, _ = SelectTab("senders", "connect")
	if d.Tab != TabSummary {
		t.Errorf("senders have no connect tab, got %s", d.Tab)
	}

	d, err = SelectTab("senders", "staged")
	if err != nil || d.Tab != TabStaged {
		t.Errorf("SelectTab(senders, staged) = (%s, %v)", d.Tab, err)
	}
}

func TestTabsFor(t *testing.T) {
	sender := models.Resource{"id": "s1"}
	tabs := TabsFor("senders", "/senders", "s1", sender, TabActive)
	if len(tabs) != 4 {
		t.Fatalf("senders have %d tabs, want 4", len(tabs))
	}
	if tabs[3].Enabled {
		t.Error("Transport File tab should be disabled without $transportfile")
	}
	if !tabs[1].Current || tabs[1].Href != "/senders/s1/show/active" {
		t.Errorf("active tab = %+v", tabs[1])
	}

	sender["$transportfile"] = "v=0\r\n"
	tabs = TabsFor("senders", "/senders", "s1", sender, TabSummary)
	if !tabs[3].Enabled {
		t.Error("Transport File tab should be enabled with $transportfile")
	}

	receiverTabs := TabsFor("receivers", "/receivers", "r1", models.Resource{}, TabSummary)
	if len(receiverTabs) != 4 {
		t.Fatalf("receivers have %d tabs, want 4", len(receiverTabs))
	}
	if receiverTabs[3].Tab != TabConnect || receiverTabs[3].Enabled {
		t.Errorf("Connect tab should be disabled without a Connection API, got %+v", receiverTabs[3])
	}
	receiverTabs = TabsFor("receivers", "/receivers", "r1", models.Resource{"$connectionapi": "http://node/x-nmos/connection/v1.1/"}, TabConnect)
	if !receiverTabs[3].Enabled || !receiverTabs[3].Current || receiverTabs[3].Href != "/receivers/r1/show/connect" {
		t.Errorf("Connect tab = %+v", receiverTabs[3])
	}
	if nodeTabs := TabsFor("nodes", "/nodes", "n1", models.Resource{}, TabSummary); len(nodeTabs) != 1 {
		t.Errorf("nodes have %d tabs, want 1", len(nodeTabs))
	}
}

func TestShowPath(t *testing.T) {
	tests := []struct {
		base string
		tab  Tab
		want string
	}{
		{"/senders", TabSummary, "/senders/abc/show"},
		{"/senders/", TabActive, "/senders/abc/show/active"},
		{"/ui/senders", TabTransportFile, "/ui/senders/abc/show/transportfile"},
	}
	for _, tc := range tests {
		if got := ShowPath(tc.base, "abc", tc.tab); got != tc.want {
			t.Errorf("ShowPath(%q, abc, %s) = %q, want %q", tc.base, tc.tab, got, tc.want)
		}
	}
	if got := EditPath("/senders/", "abc"); got != "/senders/abc" {
		t.Errorf("EditPath = %q", got)
	}
}
