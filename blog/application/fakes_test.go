package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/dfryer1193/inkfront/blog/domain"
)

var errFakeNotFound = errors.New("not found")

// fakeSource is an in-memory content API with a trash bucket for posts.
type fakeSource struct {
	mu         sync.Mutex
	posts      []map[string]any
	trash      []map[string]any
	photos     []map[string]any
	passphrase string

	calls    int
	err      error
	lastBody any
	onCall   func()
}

func newFakeSource() *fakeSource {
	return &fakeSource{passphrase: "open sesame"}
}

// asJSON round-trips v so the fake returns what a real decoder would.
func asJSON(v any) any {
	b, _ := json.Marshal(v)
	var out any
	_ = json.Unmarshal(b, &out)
	return out
}

func (f *fakeSource) begin() error {
	f.calls++
	if f.onCall != nil {
		f.onCall()
	}
	return f.err
}

func take(items []map[string]any, id string) ([]map[string]any, map[string]any) {
	for i, item := range items {
		if item["id"] == id {
			return append(items[:i:i], items[i+1:]...), item
		}
	}
	return items, nil
}

func (f *fakeSource) ListPosts(ctx context.Context) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	return asJSON(f.posts), nil
}

func (f *fakeSource) GetPost(ctx context.Context, id string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	for _, p := range f.posts {
		if p["id"] == id {
			return asJSON(p), nil
		}
	}
	return nil, errFakeNotFound
}

func (f *fakeSource) CreatePost(ctx context.Context, payload any) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	f.lastBody = asJSON(payload)
	rec := f.lastBody.(map[string]any)
	return map[string]any{"message": "saved", "url": "new-post", "title": rec["title"], "created": "2024-01-01 10:00"}, nil
}

func (f *fakeSource) UpdatePost(ctx context.Context, id string, payload any) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	f.lastBody = asJSON(payload)
	return map[string]any{"message": "updated", "url": id}, nil
}

func (f *fakeSource) DeletePost(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	var post map[string]any
	f.posts, post = take(f.posts, id)
	if post == nil {
		return errFakeNotFound
	}
	f.trash = append(f.trash, post)
	return nil
}

func (f *fakeSource) ListTrash(ctx context.Context) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	return asJSON(map[string]any{"posts": f.trash}), nil
}

func (f *fakeSource) RestorePost(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	var post map[string]any
	f.trash, post = take(f.trash, id)
	if post == nil {
		return errFakeNotFound
	}
	f.posts = append(f.posts, post)
	return nil
}

func (f *fakeSource) PurgePost(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	var post map[string]any
	f.trash, post = take(f.trash, id)
	if post == nil {
		return errFakeNotFound
	}
	return nil
}

func (f *fakeSource) ListPhotos(ctx context.Context, category string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	return asJSON(map[string]any{"photos": f.photos}), nil
}

func (f *fakeSource) GetPhoto(ctx context.Context, id string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	for _, p := range f.photos {
		if p["id"] == id {
			return asJSON(p), nil
		}
	}
	return nil, errFakeNotFound
}

func (f *fakeSource) CreatePhoto(ctx context.Context, payload any) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	f.lastBody = asJSON(payload)
	rec := f.lastBody.(map[string]any)
	rec["id"] = "p-new"
	f.photos = append(f.photos, rec)
	return rec, nil
}

func (f *fakeSource) UpdatePhoto(ctx context.Context, id string, payload any) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	f.lastBody = asJSON(payload)
	return map[string]any{"message": "updated"}, nil
}

func (f *fakeSource) DeletePhoto(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	var photo map[string]any
	f.photos, photo = take(f.photos, id)
	if photo == nil {
		return errFakeNotFound
	}
	return nil
}

func (f *fakeSource) ValidatePassphrase(ctx context.Context, passphrase string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return false, err
	}
	return passphrase == f.passphrase, nil
}

var _ domain.ContentSource = (*fakeSource)(nil)

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	err      error
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[string]domain.Session)}
}

func (m *memorySessions) SaveSession(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *memorySessions) HasSession(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.sessions[id]
	return ok, nil
}

func (m *memorySessions) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memorySessions) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.sessions, id)
	return nil
}

type memoryPreferences struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newMemoryPreferences() *memoryPreferences {
	return &memoryPreferences{values: make(map[string]string)}
}

func (m *memoryPreferences) GetPreference(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryPreferences) SetPreference(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}
