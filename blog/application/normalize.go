package application

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dfryer1193/inkfront/blog/domain"
)

// Normalizer turns loosely shaped API records into domain records.
// None of its methods fail: missing, null or wrongly typed fields get defaults.
type Normalizer struct {
	defaultTitle    string
	defaultCategory string
}

func NewNormalizer(defaultCategory string) *Normalizer {
	if defaultCategory == "" {
		defaultCategory = domain.DefaultCategory
	}
	return &Normalizer{
		defaultTitle:    domain.DefaultTitle,
		defaultCategory: defaultCategory,
	}
}

// NormalizePost shapes one raw post record.
func (n *Normalizer) NormalizePost(raw any) domain.Post {
	rec, _ := raw.(map[string]any)

	return domain.Post{
		ID:       postID(rec),
		Title:    stringField(rec, "title", n.defaultTitle),
		Category: stringField(rec, "category", n.defaultCategory),
		Tags:     NormalizeTags(rec["tags"]),
		Summary:  stringField(rec, "summary", ""),
		Content:  stringField(rec, "content", ""),
		Created:  stringField(rec, "created", ""),
		Updated:  stringField(rec, "updated", ""),
	}
}

// NormalizePosts accepts a JSON array of posts or an object with a "posts" array.
func (n *Normalizer) NormalizePosts(raw any) []domain.Post {
	items := listField(raw, "posts")
	posts := make([]domain.Post, 0, len(items))
	for _, item := range items {
		posts = append(posts, n.NormalizePost(item))
	}
	return posts
}

// NormalizePhoto shapes one raw photo group record.
func (n *Normalizer) NormalizePhoto(raw any) domain.PhotoGroup {
	rec, _ := raw.(map[string]any)

	category := stringField(rec, "category", domain.DefaultPhotoCategory)
	if !domain.IsPhotoCategory(category) {
		category = domain.DefaultPhotoCategory
	}

	return domain.PhotoGroup{
		ID:          idField(rec, "id"),
		Title:       stringField(rec, "title", n.defaultTitle),
		Description: stringField(rec, "description", ""),
		Category:    category,
		Created:     stringField(rec, "created", ""),
		URLs:        NormalizeURLs(rec["urls"]),
	}
}

// NormalizePhotos accepts {"photos": [...]} or a bare array.
func (n *Normalizer) NormalizePhotos(raw any) []domain.PhotoGroup {
	items := listField(raw, "photos")
	photos := make([]domain.PhotoGroup, 0, len(items))
	for _, item := range items {
		photos = append(photos, n.NormalizePhoto(item))
	}
	return photos
}

// NormalizeTags returns an ordered slice of unique tags, never nil.
// Arrays keep their string elements as given; strings are split on commas and trimmed.
// Any other shape yields no tags.
func NormalizeTags(raw any) []string {
	var candidates []string

	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				candidates = append(candidates, s)
			}
		}
	case []string:
		candidates = v
	case string:
		for _, piece := range strings.Split(v, ",") {
			candidates = append(candidates, strings.TrimSpace(piece))
		}
	}

	return uniqueNonEmpty(candidates)
}

// NormalizeURLs keeps order and duplicates; a string is split on commas and whitespace.
func NormalizeURLs(raw any) []string {
	urls := make([]string, 0)

	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				urls = append(urls, strings.TrimSpace(s))
			}
		}
	case []string:
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				urls = append(urls, strings.TrimSpace(s))
			}
		}
	case string:
		urls = append(urls, SplitLinks(v)...)
	}

	return urls
}

// SplitLinks splits a pasted block of links on newlines, commas (ASCII or full-width) and spaces.
func SplitLinks(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '，' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	links := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			links = append(links, f)
		}
	}
	return links
}

func uniqueNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func stringField(rec map[string]any, key, fallback string) string {
	if s, ok := rec[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// idField accepts string ids and JSON numbers.
func idField(rec map[string]any, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatFloat(v, 'f', 0, 64)
		}
		return fmt.Sprint(v)
	}
	return ""
}

// postID prefers "id"; save responses only carry the post's "url" slug.
func postID(rec map[string]any) string {
	if id := idField(rec, "id"); id != "" {
		return id
	}
	return stringField(rec, "url", "")
}

func listField(raw any, key string) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case map[string]any:
		if items, ok := v[key].([]any); ok {
			return items
		}
	}
	return nil
}
