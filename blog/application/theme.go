package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dfryer1193/inkfront/blog/domain"
)

const themePreferenceKey = "theme"

// ThemeStore holds the site-wide colour scheme and fans changes out to subscribers.
type ThemeStore struct {
	prefs    domain.PreferenceRepository
	fallback domain.Theme

	mu          sync.Mutex
	current     domain.Theme
	subscribers map[int]chan domain.Theme
	nextID      int
}

func NewThemeStore(prefs domain.PreferenceRepository, fallback domain.Theme) *ThemeStore {
	if _, ok := domain.ParseTheme(string(fallback)); !ok {
		fallback = domain.ThemeDark
	}
	return &ThemeStore{
		prefs:       prefs,
		fallback:    fallback,
		current:     fallback,
		subscribers: make(map[int]chan domain.Theme),
	}
}

// Init loads the persisted theme, keeping the fallback when none is stored.
func (s *ThemeStore) Init(ctx context.Context) error {
	value, found, err := s.prefs.GetPreference(ctx, themePreferenceKey)
	if err != nil {
		return fmt.Errorf("failed to load theme: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if theme, ok := domain.ParseTheme(value); found && ok {
		s.current = theme
	} else {
		s.current = s.fallback
	}
	return nil
}

func (s *ThemeStore) Current() domain.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Toggle flips the theme, persists it and notifies every subscriber.
func (s *ThemeStore) Toggle(ctx context.Context) (domain.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Toggle()
	if err := s.prefs.SetPreference(ctx, themePreferenceKey, string(next)); err != nil {
		return s.current, fmt.Errorf("failed to persist theme: %w", err)
	}
	s.current = next

	for _, ch := range s.subscribers {
		// keep only the newest value for slow readers
		select {
		case <-ch:
		default:
		}
		ch <- next
	}

	log.Debug().Str("theme", string(next)).Int("subscribers", len(s.subscribers)).Msg("Theme toggled")
	return next, nil
}

// Subscribe returns a channel receiving every later theme change and a func that ends the
// subscription and closes the channel. The func may be called more than once.
func (s *ThemeStore) Subscribe() (<-chan domain.Theme, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan domain.Theme, 1)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

func (s *ThemeStore) subscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}
