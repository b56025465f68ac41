package application

import "github.com/dfryer1193/inkfront/blog/domain"

// Facets collects the distinct categories and tags of posts for the filter sidebar.
// Both lists start with domain.All and then follow the order of first appearance.
func Facets(posts []domain.Post) (categories []string, tags []string) {
	categories = []string{domain.All}
	tags = []string{domain.All}
	seenCategories := map[string]struct{}{domain.All: {}}
	seenTags := map[string]struct{}{domain.All: {}}

	for _, p := range posts {
		if p.Category != "" {
			if _, ok := seenCategories[p.Category]; !ok {
				seenCategories[p.Category] = struct{}{}
				categories = append(categories, p.Category)
			}
		}

		for _, tag := range p.Tags {
			if _, ok := seenTags[tag]; ok {
				continue
			}
			seenTags[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}

	return categories, tags
}

// PhotoCategories is the gallery category list headed by the "all" sentinel.
func PhotoCategories() []string {
	return append([]string{domain.AllPhotos}, domain.PhotoCategories...)
}
