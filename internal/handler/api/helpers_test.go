package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/relayhq/relay-go/internal/identity"
	"github.com/relayhq/relay-go/internal/model"
	"github.com/relayhq/relay-go/internal/store"
	"github.com/relayhq/relay-go/internal/testutil"
)

// testEnv is a full API stack over a temporary database, with one user per
// role. Bearer tokens are user IDs.
type testEnv struct {
	handler  http.Handler
	db       *sql.DB
	company  store.Company
	admin    store.User
	editor   store.User
	employee store.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	h := NewHandler(db, nil, testutil.TestLoggerSilent())
	r := chi.NewRouter()
	h.Routes(r, identity.NewStoreResolver(db), 1000, 1000)

	company := testutil.CreateCompany(t, db, "acme")
	return &testEnv{
		handler:  r,
		db:       db,
		company:  company,
		admin:    testutil.CreateUser(t, db, company.ID, "admin@acme.test", model.RoleAdmin),
		editor:   testutil.CreateUser(t, db, company.ID, "editor@acme.test", model.RoleEditor),
		employee: testutil.CreateUser(t, db, company.ID, "emp@acme.test", model.RoleEmployee),
	}
}

// request performs an HTTP request against the test stack. An empty token
// leaves the request unauthenticated.
func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a response envelope into dst and
// returns the meta block, if any.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst any) *Meta {
	t.Helper()

	var resp struct {
		Data json.RawMessage `json:"data"`
		Meta *Meta           `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if dst != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, dst); err != nil {
			t.Fatalf("failed to unmarshal data: %v", err)
		}
	}
	return resp.Meta
}

// createPage creates a draft page through the API as the admin.
func (e *testEnv) createPage(t *testing.T, title string) AdminPage {
	t.Helper()

	w := e.request(t, http.MethodPost, "/admin/pages", e.admin.ID, map[string]any{
		"title":   title,
		"content": map[string]any{
			"type": "doc",
			"content": []map[string]any{
				{"type": "paragraph", "content": []map[string]any{{"type": "text", "text": "Hello"}}},
			},
		},
	})
	assertStatusCode(t, w, http.StatusCreated)

	var page AdminPage
	decodeData(t, w, &page)
	return page
}

// publishAll publishes a page to the whole company through the API.
func (e *testEnv) publishAll(t *testing.T, pageID string) PublicationView {
	t.Helper()

	w := e.request(t, http.MethodPost, "/admin/pages/"+pageID+"/publish", e.admin.ID, map[string]any{
		"targetType": "all",
	})
	assertStatusCode(t, w, http.StatusCreated)

	var pub PublicationView
	decodeData(t, w, &pub)
	return pub
}
