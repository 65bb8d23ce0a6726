package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseAPIRoot(t *testing.T) {
	got, err := ParseAPIRoot([]byte(`["v1.3/", "v1.0/", "v1.10/", "v1.2/", "other/"]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"v1.0", "v1.2", "v1.3", "v1.10"}
	if len(got) != len(want) {
		t.Fatalf("ParseAPIRoot = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ParseAPIRoot[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseAPIRoot_InvalidJSON(t *testing.T) {
	if _, err := ParseAPIRoot([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestPreferredQueryAPI(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		versions []string
		want     string
	}{
		{"highest", "http://reg/x-nmos/query/", []string{"v1.0", "v1.3", "v1.2"}, "http://reg/x-nmos/query/v1.3"},
		{"no slash", "http://reg/x-nmos/query", []string{"v1.1"}, "http://reg/x-nmos/query/v1.1"},
		{"none", "http://reg/x-nmos/query/", nil, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PreferredQueryAPI(tc.root, tc.versions); got != tc.want {
				t.Errorf("PreferredQueryAPI = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDiscoverVersions_Integration(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/x-nmos/query/" {
			t.Errorf("path = %s, want /x-nmos/query/", r.URL.Path)
		}
		w.Write([]byte(`["v1.2/","v1.3/"]`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	got, err := c.DiscoverVersions(context.Background(), ts.URL+"/x-nmos/query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1] != "v1.3" {
		t.Errorf("DiscoverVersions = %v, want [v1.2 v1.3]", got)
	}
}
