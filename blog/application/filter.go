package application

import (
	"slices"
	"strings"
	"time"

	"github.com/dfryer1193/inkfront/blog/domain"
)

var timestampLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// ParseTimestamp parses the timestamp formats the content API emits.
// Anything unparseable becomes the zero time and therefore sorts last.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Matches reports whether p passes every facet of sel.
func Matches(p domain.Post, sel domain.Selection) bool {
	return matchesCategory(p, sel.Category) && matchesTag(p, sel.Tag) && matchesQuery(p, sel.Query)
}

func matchesCategory(p domain.Post, category string) bool {
	return category == "" || category == domain.All || p.Category == category
}

func matchesTag(p domain.Post, tag string) bool {
	return tag == "" || tag == domain.All || p.HasTag(tag)
}

func matchesQuery(p domain.Post, query string) bool {
	if query == "" {
		return true
	}

	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Summary), q) ||
		strings.Contains(strings.ToLower(p.Content), q) {
		return true
	}

	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// FilterPosts returns the posts matching sel, most recent first.
// Posts with equal timestamps keep their relative input order. The input is not modified.
func FilterPosts(posts []domain.Post, sel domain.Selection) []domain.Post {
	filtered := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if Matches(p, sel) {
			filtered = append(filtered, p)
		}
	}

	SortByRecency(filtered)
	return filtered
}

// SortByRecency stable-sorts posts by effective timestamp, newest first.
func SortByRecency(posts []domain.Post) {
	slices.SortStableFunc(posts, func(a, b domain.Post) int {
		return ParseTimestamp(b.EffectiveTimestamp()).Compare(ParseTimestamp(a.EffectiveTimestamp()))
	})
}

// Latest returns at most n items; n <= 0 means all of them.
func Latest[T any](items []T, n int) []T {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

// FilterPhotos keeps the groups in category ("all" or "" keeps everything), newest first.
func FilterPhotos(photos []domain.PhotoGroup, category string) []domain.PhotoGroup {
	filtered := make([]domain.PhotoGroup, 0, len(photos))
	for _, p := range photos {
		if category == "" || category == domain.AllPhotos || p.Category == category {
			filtered = append(filtered, p)
		}
	}

	slices.SortStableFunc(filtered, func(a, b domain.PhotoGroup) int {
		return ParseTimestamp(b.Created).Compare(ParseTimestamp(a.Created))
	})
	return filtered
}
