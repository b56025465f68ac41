package rest

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postIDsOf(t *testing.T, body map[string]any) []string {
	t.Helper()
	posts, ok := body["posts"].([]any)
	require.True(t, ok, "posts missing from %v", body)
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.(map[string]any)["id"].(string))
	}
	return ids
}

func TestListPosts(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		path     string
		expected []string
	}{
		{name: "All posts", path: "/api/posts", expected: []string{"2", "1"}},
		{name: "By tag", path: "/api/posts?tag=a", expected: []string{"1"}},
		{name: "By category", path: "/api/posts?category=" + url.QueryEscape("生活"), expected: []string{"2"}},
		{name: "By query", path: "/api/posts?q=OLD", expected: []string{"1"}},
		{name: "Limited", path: "/api/posts?limit=1", expected: []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, rec.Code)

			body := decodeBody(t, rec)
			assert.Equal(t, tt.expected, postIDsOf(t, body))
			assert.Equal(t, []any{"全部", "技术", "生活"}, body["categories"])
			assert.Equal(t, []any{"全部", "a", "b", "c"}, body["tags"])
		})
	}
}

func TestListPosts_BadLimit(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/api/posts?limit=-3", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPosts_DegradesOnUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.fail(http.StatusInternalServerError)

	rec := env.do(http.MethodGet, "/api/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Empty(t, postIDsOf(t, body))
	assert.Equal(t, "boom", body["error"])
	assert.Equal(t, []any{"全部"}, body["categories"])
}

func TestGetPost(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/posts/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	doc := body["document"].(map[string]any)
	assert.Equal(t, "hello **world**", doc["body"])
	assert.Contains(t, doc["html"], "<strong>world</strong>")
	assert.NotContains(t, doc["html"], "title:")

	missing := env.do(http.MethodGet, "/api/posts/404", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "文章不存在", decodeBody(t, missing)["error"])
}

func TestListPhotos(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/photos?category=food", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["photos"], 1)
	assert.Equal(t, "food", body["category"])

	bad := env.do(http.MethodGet, "/api/photos?category=space", "")
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	env.upstream.fail(http.StatusBadGateway)
	degraded := env.do(http.MethodGet, "/api/photos", "")
	require.Equal(t, http.StatusOK, degraded.Code)
	assert.Equal(t, "boom", decodeBody(t, degraded)["error"])
}

func TestGetPhoto(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/photos/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Noodles", decodeBody(t, rec)["title"])
}

func TestAdminRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/admin/posts"},
		{http.MethodPut, "/api/admin/posts/1"},
		{http.MethodDelete, "/api/admin/posts/1"},
		{http.MethodGet, "/api/admin/trash"},
		{http.MethodPost, "/api/admin/trash/1/restore"},
		{http.MethodDelete, "/api/admin/trash/1"},
		{http.MethodPost, "/api/admin/photos"},
		{http.MethodPut, "/api/admin/photos/p1"},
		{http.MethodDelete, "/api/admin/photos/p1"},
	}

	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := env.do(r.method, r.path, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
	assert.Zero(t, env.upstream.requestCount())
}

func TestTrashLifecycle(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	require.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/api/admin/posts/1", "", cookie).Code)
	assert.Equal(t, []string{"2"}, postIDsOf(t, decodeBody(t, env.do(http.MethodGet, "/api/posts", ""))))
	assert.Equal(t, []string{"1"}, postIDsOf(t, decodeBody(t, env.do(http.MethodGet, "/api/admin/trash", "", cookie))))

	require.Equal(t, http.StatusNoContent, env.do(http.MethodPost, "/api/admin/trash/1/restore", "", cookie).Code)
	assert.Equal(t, []string{"2", "1"}, postIDsOf(t, decodeBody(t, env.do(http.MethodGet, "/api/posts", ""))))
	assert.Empty(t, postIDsOf(t, decodeBody(t, env.do(http.MethodGet, "/api/admin/trash", "", cookie))))

	require.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/api/admin/posts/1", "", cookie).Code)
	require.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/api/admin/trash/1", "", cookie).Code)
	assert.Empty(t, postIDsOf(t, decodeBody(t, env.do(http.MethodGet, "/api/admin/trash", "", cookie))))
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/api/admin/trash/1/restore", "", cookie).Code)
}

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rec := env.do(http.MethodPost, "/api/admin/posts", `{"title":"Hi","content":"body","tags":["go"]}`, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "fresh", body["id"])
	assert.Equal(t, "Hi", body["title"])
	assert.Equal(t, []any{"go"}, body["tags"])
}

func TestCreatePost_ValidationSkipsUpstream(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)
	before := env.upstream.requestCount()

	rec := env.do(http.MethodPost, "/api/admin/posts", `{"title":"","content":""}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	photo := env.do(http.MethodPost, "/api/admin/photos", `{"title":"t","category":"space","urls":["https://img.test/x.jpg"]}`, cookie)
	assert.Equal(t, http.StatusBadRequest, photo.Code)

	malformed := env.do(http.MethodPost, "/api/admin/posts", `{"title":`, cookie)
	assert.Equal(t, http.StatusBadRequest, malformed.Code)

	assert.Equal(t, before, env.upstream.requestCount())
}
