package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/dfryer1193/inkfront/blog/application"
	"github.com/dfryer1193/inkfront/blog/domain"
	"github.com/dfryer1193/inkfront/blog/persistence"
	"github.com/dfryer1193/inkfront/internal/middleware"
	"github.com/dfryer1193/inkfront/shared/contentapi"
	"github.com/dfryer1193/inkfront/shared/db/sqlite"
	"github.com/dfryer1193/inkfront/shared/github"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeUpstream is an in-memory content API speaking the real wire format.
type fakeUpstream struct {
	mu       sync.Mutex
	posts    []map[string]any
	trash    []map[string]any
	photos   []map[string]any
	failWith int
	requests int
}

func newFakeUpstream(t *testing.T) (*fakeUpstream, *httptest.Server) {
	t.Helper()

	u := &fakeUpstream{
		posts: []map[string]any{
			{"id": "1", "title": "Old", "category": "技术", "tags": "a, b", "created": "2024-01-01", "content": "---\ntitle: Old\n---\nhello **world**"},
			{"id": "2", "title": "New", "category": "生活", "tags": []any{"b", "c"}, "created": "2024-02-01"},
		},
		photos: []map[string]any{
			{"id": "p1", "title": "Noodles", "category": "food", "created": "2024-01-01", "urls": []any{"https://img.test/a.jpg"}},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, u.posts)
	})
	mux.HandleFunc("GET /posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		if p := find(u.posts, r.PathValue("id")); p != nil {
			writeJSON(w, http.StatusOK, p)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "文章不存在"})
	})
	mux.HandleFunc("POST /posts", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]any{"message": "saved", "url": "fresh", "title": body["title"]})
	})
	mux.HandleFunc("DELETE /posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		var p map[string]any
		u.posts, p = remove(u.posts, r.PathValue("id"))
		if p == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "文章不存在"})
			return
		}
		u.trash = append(u.trash, p)
		writeJSON(w, http.StatusOK, map[string]any{"message": "文章已删除"})
	})
	mux.HandleFunc("GET /trash", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"posts": u.trash})
	})
	mux.HandleFunc("POST /trash/{id}/restore", func(w http.ResponseWriter, r *http.Request) {
		var p map[string]any
		u.trash, p = remove(u.trash, r.PathValue("id"))
		if p == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "文章不存在"})
			return
		}
		u.posts = append(u.posts, p)
		writeJSON(w, http.StatusOK, map[string]any{"message": "文章已恢复"})
	})
	mux.HandleFunc("DELETE /trash/{id}/permanent", func(w http.ResponseWriter, r *http.Request) {
		var p map[string]any
		u.trash, p = remove(u.trash, r.PathValue("id"))
		if p == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "文章不存在"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "文章已永久删除"})
	})
	mux.HandleFunc("GET /photos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"photos": u.photos})
	})
	mux.HandleFunc("GET /photos/{id}", func(w http.ResponseWriter, r *http.Request) {
		if p := find(u.photos, r.PathValue("id")); p != nil {
			writeJSON(w, http.StatusOK, p)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "照片不存在"})
	})
	mux.HandleFunc("POST /validate-passphrase", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Passphrase string `json:"passphrase"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]any{"isValid": body.Passphrase == "secret"})
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()
		u.requests++
		if u.failWith != 0 {
			writeJSON(w, u.failWith, map[string]any{"error": "boom"})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return u, srv
}

func (u *fakeUpstream) requestCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.requests
}

func (u *fakeUpstream) fail(status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failWith = status
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func find(items []map[string]any, id string) map[string]any {
	for _, item := range items {
		if item["id"] == id {
			return item
		}
	}
	return nil
}

func remove(items []map[string]any, id string) ([]map[string]any, map[string]any) {
	for i, item := range items {
		if item["id"] == id {
			return append(items[:i:i], items[i+1:]...), item
		}
	}
	return items, nil
}

// fakeIdentity signs in whoever owns the "good" code.
type fakeIdentity struct {
	enabled bool
	login   string
	allowed string
}

func (f *fakeIdentity) Enabled() bool { return f.enabled }

func (f *fakeIdentity) AuthCodeURL(state string) string {
	return "https://github.test/login/oauth/authorize?state=" + state
}

func (f *fakeIdentity) Authenticate(ctx context.Context, code string) (*github.Identity, error) {
	if code != "good" {
		return nil, context.DeadlineExceeded
	}
	identity := &github.Identity{ID: 1, Login: f.login}
	if f.login != f.allowed {
		return identity, github.ErrNotAllowed
	}
	return identity, nil
}

type testEnv struct {
	router   *gin.Engine
	upstream *fakeUpstream
	theme    *application.ThemeStore
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	upstream, srv := newFakeUpstream(t)

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, database.Connect())
	t.Cleanup(func() { database.Close() })

	client := contentapi.NewClient(srv.URL)
	content := application.NewContentService(client, application.NewNormalizer(""), application.NewMarkdownRenderer())
	sessions := application.NewSessionGate(persistence.NewSessionRepository(database.DB()), client)
	theme := application.NewThemeStore(persistence.NewPreferenceRepository(database.DB()), domain.ThemeDark)
	require.NoError(t, theme.Init(context.Background()))

	router := gin.New()
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	NewApi(router, NewHandlers(content, sessions, theme, opts...))

	return &testEnv{router: router, upstream: upstream, theme: theme}
}

func (e *testEnv) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// login grants a passphrase session and returns its cookie.
func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := e.do(http.MethodPost, "/api/session/passphrase", `{"passphrase":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := cookieNamed(rec, middleware.SessionCookie)
	require.NotNil(t, cookie)
	return cookie
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
