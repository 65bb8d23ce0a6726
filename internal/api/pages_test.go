package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestShowPage(t *testing.T) {
	nmos := newFakeNMOS(t)
	h := NewRouter(newTestServer(t, nmos.queryAPI(), ""))

	rec := do(t, h, http.MethodGet, "/senders/s1/show", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Sender: Camera 1</title>")
	assert.Contains(t, body, "2015-09-09 15:21:56.154331951 UTC")
	assert.Contains(t, body, `href="/flows/f1/show"`)
	assert.Contains(t, body, `href="/senders/s1"`, "edit link")

	rec = do(t, h, http.MethodGet, "/senders/s1/show/transportfile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "o=- 1 1 IN IP4 10.0.0.1")
}

func TestListPage(t *testing.T) {
	nmos := newFakeNMOS(t)
	h := NewRouter(newTestServer(t, nmos.queryAPI(), ""))

	rec := do(t, h, http.MethodGet, "/senders", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, `<a href="/senders/s1/show">Camera 1</a>`)
	assert.Contains(t, body, ">NEXT</a>")
	assert.Contains(t, body, "cursor=paging.limit")
}

func TestErrorPage(t *testing.T) {
	h := NewRouter(newTestServer(t, "", ""))
	rec := do(t, h, http.MethodGet, "/senders/s1/show", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "no Query API configured")

	rec = do(t, NewRouter(newTestServer(t, "http://reg/x-nmos/query/v1.3", "")), http.MethodGet, "/widgets", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndexAndSettingsForm(t *testing.T) {
	h := NewRouter(newTestServer(t, "", ""))

	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No registries configured.")

	rec = postForm(t, h, "/settings", url.Values{"query_api": {"http://reg/x-nmos/query/v1.1"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Query API=http:%2F%2Freg")

	rec = postForm(t, h, "/settings", url.Values{"query_api": {"http://reg/"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditForm(t *testing.T) {
	nmos := newFakeNMOS(t)
	s := newTestServer(t, nmos.queryAPI(), "")
	h := NewRouter(s)

	rec := do(t, h, http.MethodGet, "/senders/s1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `name="receiver_id"`)
	assert.Contains(t, rec.Body.String(), "activate_scheduled_absolute")

	rec = postForm(t, h, "/senders/s1", url.Values{
		"receiver_id":   {""},
		"master_enable": {"on"},
		"mode":          {"activate_immediate"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/senders/s1/show/staged?job="))

	rec = postForm(t, h, "/senders/s1", url.Values{"mode": {"activate_scheduled_relative"}, "requested_time": {"soon"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "requested_time")

	rec = do(t, h, http.MethodGet, "/flows/f1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "flows have no edit form")
}

func TestReceiverConnectPages(t *testing.T) {
	nmos := newFakeNMOS(t)
	h := NewRouter(newTestServer(t, nmos.queryAPI(), ""))

	rec := do(t, h, http.MethodGet, "/receivers/r1/show/connect", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, `action="/receivers/r1/connect"`)
	assert.Contains(t, body, `name="activate"`)
	assert.Contains(t, body, `value="s1"`)

	rec = do(t, h, http.MethodGet, "/receivers", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `action="/receivers/r1/disconnect"`)

	rec = postForm(t, h, "/receivers/r1/connect", url.Values{"sender_id": {"s1"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/receivers/r1/show/active?job="))

	rec = postForm(t, h, "/receivers/r1/disconnect", url.Values{"active": {"false"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/receivers?job="))

	rec = postForm(t, h, "/senders/s1/disconnect", url.Values{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
