package registry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"go.uber.org/zap"

	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
)

func newTestClient(ts *httptest.Server) *Client {
	return &Client{
		httpClient: ts.Client(),
		logger:     zap.NewNop(),
	}
}

func TestClient_Get_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q, want application/json", r.Header.Get("Accept"))
		}
		w.Header().Set("X-Paging-Limit", "10")
		w.Write([]byte(`[{"id":"a"}]`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	body, header, err := c.Get(context.Background(), ts.URL+"/x-nmos/query/v1.3/nodes", nil)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(body) != `[{"id":"a"}]` {
		t.Errorf("body = %q", string(body))
	}
	if header.Get("X-Paging-Limit") != "10" {
		t.Errorf("X-Paging-Limit = %q, want 10", header.Get("X-Paging-Limit"))
	}
}

func TestClient_Get_Params(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("paging.limit"); got != "5" {
			t.Errorf("paging.limit = %q, want 5", got)
		}
		w.Write([]byte("[]"))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	if _, _, err := c.Get(context.Background(), ts.URL, url.Values{"paging.limit": {"5"}}); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
}

func TestClient_Get_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":404,"error":"Not Found"}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, _, err := c.Get(context.Background(), ts.URL+"/senders/x", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
}

func TestClient_Get_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`boom`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, _, err := c.Get(context.Background(), ts.URL, nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Get error = %v, want *NetworkError", err)
	}
	if netErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", netErr.Status)
	}
}

func TestClient_Get_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := ts.URL
	ts.Close()

	c := &Client{httpClient: http.DefaultClient, logger: zap.NewNop()}
	_, _, err := c.Get(context.Background(), target, nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Get error = %v, want *NetworkError", err)
	}
	if netErr.Status != 0 {
		t.Errorf("Status = %d, want 0 for transport failure", netErr.Status)
	}
}

func TestClient_GetJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"n1","label":"Node"}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	var node models.Resource
	if _, err := c.GetJSON(context.Background(), ts.URL, nil, &node); err != nil {
		t.Fatalf("GetJSON returned error: %v", err)
	}
	if node.Label() != "Node" {
		t.Errorf("label = %q, want Node", node.Label())
	}

	var list []interface{}
	if _, err := c.GetJSON(context.Background(), ts.URL, nil, &list); err == nil {
		t.Error("GetJSON into a slice should fail for an object body")
	}
}

func TestClient_Patch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["master_enable"] != true {
			t.Errorf("master_enable = %v, want true", payload["master_enable"])
		}
		w.Write([]byte(`{"master_enable":true}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	body, err := c.Patch(context.Background(), ts.URL+"/staged", map[string]interface{}{"master_enable": true})
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	if string(body) != `{"master_enable":true}` {
		t.Errorf("body = %q", string(body))
	}
}

func TestClient_Patch_Rejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":400,"error":"Invalid JSON","debug":"mode is not valid"}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, err := c.Patch(context.Background(), ts.URL, map[string]interface{}{})
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Patch error = %v, want *ValidationError", err)
	}
	if valErr.Message != "Invalid JSON: mode is not valid" {
		t.Errorf("Message = %q", valErr.Message)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		expect string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 5, "hello..."},
		{"empty", "", 5, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncate(tc.input, tc.maxLen)
			if got != tc.expect {
				t.Errorf("truncate(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.expect)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	c := NewClient(&models.Registry{QueryAPI: "https://reg/x-nmos/query/v1.3", Insecure: true}, nil)
	transport, ok := c.httpClient.Transport.(*http.Transport)
	if !ok || transport.TLSClientConfig == nil || !transport.TLSClientConfig.InsecureSkipVerify {
		t.Error("insecure registry should skip TLS verification")
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
	}
	if c.logger == nil {
		t.Error("nil logger should be replaced")
	}
}
