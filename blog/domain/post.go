package domain

import "strings"

const (
	// All is the facet value meaning "no restriction" for post categories and tags.
	All = "全部"

	DefaultTitle    = "无标题"
	DefaultCategory = "随笔"
)

// Post represents a normalized blog post.
// Tags always holds unique values in the order they were first seen.
// Posts that were soft-deleted live in the trash until restored or purged.
type Post struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Summary  string   `json:"summary"`
	Content  string   `json:"content"`
	Created  string   `json:"created"`
	Updated  string   `json:"updated,omitempty"`
}

// EffectiveTimestamp is the timestamp used for recency ordering.
func (p Post) EffectiveTimestamp() string {
	if strings.TrimSpace(p.Updated) != "" {
		return p.Updated
	}
	return p.Created
}

// HasTag reports whether the post carries the given tag exactly.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PostDraft is the editor payload for creating or updating a post.
type PostDraft struct {
	Title    string   `json:"title" validate:"required"`
	Category string   `json:"category"`
	Summary  string   `json:"summary"`
	Content  string   `json:"content" validate:"required"`
	Tags     []string `json:"tags" validate:"dive,required"`
	Date     string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// Selection is the filter state of a post list view.
type Selection struct {
	Category string `form:"category" json:"category"`
	Tag      string `form:"tag" json:"tag"`
	Query    string `form:"q" json:"q"`
}

// NewSelection returns a selection that matches everything.
func NewSelection() Selection {
	return Selection{Category: All, Tag: All}
}
