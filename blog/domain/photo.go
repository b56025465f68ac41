package domain

const (
	// AllPhotos is the gallery category value meaning "no restriction".
	AllPhotos = "all"

	DefaultPhotoCategory = "other"
)

// PhotoCategories is the fixed set of gallery categories, in display order.
var PhotoCategories = []string{"life", "travel", "food", "nature", "city", "people", "animal", "other"}

// IsPhotoCategory reports whether c is one of PhotoCategories.
func IsPhotoCategory(c string) bool {
	for _, pc := range PhotoCategories {
		if pc == c {
			return true
		}
	}
	return false
}

// PhotoGroup is a titled set of images. URLs order is the display and navigation order.
type PhotoGroup struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Created     string   `json:"created"`
	URLs        []string `json:"urls"`
}

// PhotoDraft is the upload form payload for a photo group.
type PhotoDraft struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category" validate:"required,photocategory"`
	Created     string   `json:"created" validate:"omitempty,datetime=2006-01-02"`
	URLs        []string `json:"urls" validate:"required,min=1,dive,required,url"`
}
