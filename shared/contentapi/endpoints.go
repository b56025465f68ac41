package contentapi

import (
	"net/http"
	"net/url"
	"strings"
)

// Request is a resolved call against the content API.
type Request struct {
	Method string
	URL    string
}

// Endpoints builds requests relative to the API base URL, e.g. "http://localhost:8080/api".
type Endpoints struct {
	base string
}

func NewEndpoints(baseURL string) Endpoints {
	return Endpoints{base: strings.TrimRight(baseURL, "/")}
}

func (e Endpoints) build(method string, segments ...string) Request {
	var b strings.Builder
	b.WriteString(e.base)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(s)
	}
	return Request{Method: method, URL: b.String()}
}

func (e Endpoints) Posts() Request {
	return e.build(http.MethodGet, "posts")
}

func (e Endpoints) Post(id string) Request {
	return e.build(http.MethodGet, "posts", url.PathEscape(id))
}

func (e Endpoints) CreatePost() Request {
	return e.build(http.MethodPost, "posts")
}

func (e Endpoints) UpdatePost(id string) Request {
	return e.build(http.MethodPut, "posts", url.PathEscape(id))
}

// DeletePost moves a post to the trash.
func (e Endpoints) DeletePost(id string) Request {
	return e.build(http.MethodDelete, "posts", url.PathEscape(id))
}

func (e Endpoints) Trash() Request {
	return e.build(http.MethodGet, "trash")
}

func (e Endpoints) RestorePost(id string) Request {
	return e.build(http.MethodPost, "trash", url.PathEscape(id), "restore")
}

// PurgePost deletes a trashed post for good.
func (e Endpoints) PurgePost(id string) Request {
	return e.build(http.MethodDelete, "trash", url.PathEscape(id), "permanent")
}

// Photos lists photo groups. An empty category or "all" lists every group.
func (e Endpoints) Photos(category string) Request {
	r := e.build(http.MethodGet, "photos")
	if category != "" && category != "all" {
		r.URL += "?" + url.Values{"category": {category}}.Encode()
	}
	return r
}

func (e Endpoints) Photo(id string) Request {
	return e.build(http.MethodGet, "photos", url.PathEscape(id))
}

func (e Endpoints) CreatePhoto() Request {
	return e.build(http.MethodPost, "photos")
}

func (e Endpoints) UpdatePhoto(id string) Request {
	return e.build(http.MethodPut, "photos", url.PathEscape(id))
}

func (e Endpoints) DeletePhoto(id string) Request {
	return e.build(http.MethodDelete, "photos", url.PathEscape(id))
}

func (e Endpoints) ValidatePassphrase() Request {
	return e.build(http.MethodPost, "validate-passphrase")
}

func (e Endpoints) Login() Request {
	return e.build(http.MethodPost, "auth", "login")
}

func (e Endpoints) Logout() Request {
	return e.build(http.MethodPost, "auth", "logout")
}

func (e Endpoints) Callback() Request {
	return e.build(http.MethodPost, "auth", "callback")
}
