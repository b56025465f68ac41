package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dfryer1193/inkfront/blog/domain"
)

func TestFacets(t *testing.T) {
	categories, tags := Facets(samplePosts())

	assert.Equal(t, []string{domain.All, "技术", "生活", "随笔"}, categories)
	assert.Equal(t, []string{domain.All, "go", "tea", "rust"}, tags)
}

func TestFacets_SentinelOnceAndFirst(t *testing.T) {
	posts := []domain.Post{
		{Category: domain.All, Tags: []string{domain.All, "x"}},
		{Category: ""},
	}
	categories, tags := Facets(posts)

	assert.Equal(t, []string{domain.All}, categories)
	assert.Equal(t, []string{domain.All, "x"}, tags)
}

func TestFacets_Empty(t *testing.T) {
	categories, tags := Facets(nil)
	assert.Equal(t, []string{domain.All}, categories)
	assert.Equal(t, []string{domain.All}, tags)
}

func TestPhotoCategories(t *testing.T) {
	got := PhotoCategories()
	assert.Equal(t, domain.AllPhotos, got[0])
	assert.Equal(t, len(domain.PhotoCategories)+1, len(got))

	got[1] = "mutated"
	assert.NotEqual(t, "mutated", domain.PhotoCategories[0])
}
