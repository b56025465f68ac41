package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/dfryer1193/inkfront/blog/domain"
)

const dateLayout = "2006-01-02"

// PostListView is a filtered post list plus the facets of the unfiltered collection.
type PostListView struct {
	Posts      []domain.Post    `json:"posts"`
	Total      int              `json:"total"`
	Categories []string         `json:"categories"`
	Tags       []string         `json:"tags"`
	Selection  domain.Selection `json:"selection"`
}

// PostView is a single post with its rendered body.
type PostView struct {
	Post     domain.Post `json:"post"`
	Document *Document   `json:"document"`
}

type PhotoListView struct {
	Photos     []domain.PhotoGroup `json:"photos"`
	Category   string              `json:"category"`
	Categories []string            `json:"categories"`
}

// ContentService loads content from the content API and shapes it into views.
type ContentService struct {
	source     domain.ContentSource
	normalizer *Normalizer
	renderer   MarkdownRenderer
	validate   *validator.Validate
	now        func() time.Time
}

func NewContentService(source domain.ContentSource, normalizer *Normalizer, renderer MarkdownRenderer) *ContentService {
	return &ContentService{
		source:     source,
		normalizer: normalizer,
		renderer:   renderer,
		validate:   NewValidator(),
		now:        time.Now,
	}
}

// NewValidator returns a validator that knows the gallery category enum.
func NewValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("photocategory", func(fl validator.FieldLevel) bool {
		return domain.IsPhotoCategory(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register photocategory validation: %v", err))
	}
	return v
}

// stillWanted reports ctx.Err() so that responses landing after the caller gave up are dropped.
func stillWanted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("discarding response: %w", err)
	}
	return nil
}

func (s *ContentService) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	return nil
}

// ListPosts returns the posts matching sel, newest first, truncated to limit when limit > 0.
func (s *ContentService) ListPosts(ctx context.Context, sel domain.Selection, limit int) (*PostListView, error) {
	raw, err := s.source.ListPosts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch posts")
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}
	if err := stillWanted(ctx); err != nil {
		return nil, err
	}

	posts := s.normalizer.NormalizePosts(raw)
	filtered := FilterPosts(posts, sel)
	categories, tags := Facets(posts)

	return &PostListView{
		Posts:      Latest(filtered, limit),
		Total:      len(filtered),
		Categories: categories,
		Tags:       tags,
		Selection:  sel,
	}, nil
}

// GetPost returns one post with its body rendered.
func (s *ContentService) GetPost(ctx context.Context, id string) (*PostView, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	raw, err := s.source.GetPost(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to fetch post")
		return nil, fmt.Errorf("failed to fetch post %s: %w", id, err)
	}
	if err := stillWanted(ctx); err != nil {
		return nil, err
	}

	post := s.normalizer.NormalizePost(raw)
	if post.ID == "" {
		post.ID = id
	}

	doc, err := s.renderer.Render([]byte(post.Content))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to render post")
		return nil, fmt.Errorf("failed to render post %s: %w", id, err)
	}

	if post.Summary == "" {
		post.Summary = doc.Snippet
	}
	if len(post.Tags) == 0 {
		post.Tags = doc.Meta.TagList()
	}

	return &PostView{Post: post, Document: doc}, nil
}

type postPayload struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Summary  string   `json:"summary"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Created  string   `json:"created,omitempty"`
}

func (s *ContentService) postPayload(draft domain.PostDraft) (postPayload, error) {
	category := strings.TrimSpace(draft.Category)
	if category == "" {
		category = s.normalizer.defaultCategory
	}
	date := draft.Date
	if date == "" {
		date = s.now().Format(dateLayout)
	}
	tags := uniqueNonEmpty(draft.Tags)

	header, err := ComposeFrontMatter(FrontMatter{
		Title:    draft.Title,
		Date:     date,
		Summary:  draft.Summary,
		Category: category,
	}, tags)
	if err != nil {
		return postPayload{}, err
	}

	return postPayload{
		Title:    draft.Title,
		Category: category,
		Summary:  draft.Summary,
		Content:  header + "\n" + ExtractBody(draft.Content),
		Tags:     tags,
		Created:  draft.Date,
	}, nil
}

// CreatePost validates draft and saves it as a new post.
func (s *ContentService) CreatePost(ctx context.Context, draft domain.PostDraft) (domain.Post, error) {
	if err := s.check(draft); err != nil {
		return domain.Post{}, err
	}

	payload, err := s.postPayload(draft)
	if err != nil {
		return domain.Post{}, fmt.Errorf("failed to build post: %w", err)
	}

	raw, err := s.source.CreatePost(ctx, payload)
	if err != nil {
		log.Error().Err(err).Str("title", draft.Title).Msg("Failed to create post")
		return domain.Post{}, fmt.Errorf("failed to create post: %w", err)
	}
	if err := stillWanted(ctx); err != nil {
		return domain.Post{}, err
	}

	log.Info().Str("title", draft.Title).Msg("Post created")
	return s.savedPost(raw, "", payload), nil
}

// UpdatePost validates draft and replaces post id with it.
func (s *ContentService) UpdatePost(ctx context.Context, id string, draft domain.PostDraft) (domain.Post, error) {
	if err := requireID(id); err != nil {
		return domain.Post{}, err
	}
	if err := s.check(draft); err != nil {
		return domain.Post{}, err
	}

	payload, err := s.postPayload(draft)
	if err != nil {
		return domain.Post{}, fmt.Errorf("failed to build post: %w", err)
	}

	raw, err := s.source.UpdatePost(ctx, id, payload)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to update post")
		return domain.Post{}, fmt.Errorf("failed to update post %s: %w", id, err)
	}
	if err := stillWanted(ctx); err != nil {
		return domain.Post{}, err
	}

	log.Info().Str("id", id).Msg("Post updated")
	return s.savedPost(raw, id, payload), nil
}

// savedPost merges the save response over what was sent; the API answers with a partial record.
func (s *ContentService) savedPost(raw any, id string, sent postPayload) domain.Post {
	post := s.normalizer.NormalizePost(raw)
	if post.ID == "" {
		post.ID = id
	}
	rec, _ := raw.(map[string]any)
	if stringField(rec, "title", "") == "" {
		post.Title = sent.Title
	}
	if stringField(rec, "category", "") == "" {
		post.Category = sent.Category
	}
	if post.Summary == "" {
		post.Summary = sent.Summary
	}
	if post.Content == "" {
		post.Content = sent.Content
	}
	if len(post.Tags) == 0 {
		post.Tags = sent.Tags
	}
	return post
}

// DeletePost moves a post to the trash.
func (s *ContentService) DeletePost(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.source.DeletePost(ctx, id); err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to delete post")
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}
	log.Info().Str("id", id).Msg("Post moved to trash")
	return nil
}

// ListTrash returns the soft-deleted posts, newest first.
func (s *ContentService) ListTrash(ctx context.Context) ([]domain.Post, error) {
	raw, err := s.source.ListTrash(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch trash")
		return nil, fmt.Errorf("failed to fetch trash: %w", err)
	}
	if err := stillWanted(ctx); err != nil {
		return nil, err
	}

	posts := s.normalizer.NormalizePosts(raw)
	SortByRecency(posts)
	return posts, nil
}

func (s *ContentService) RestorePost(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.source.RestorePost(ctx, id); err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to restore post")
		return fmt.Errorf("failed to restore post %s: %w", id, err)
	}
	log.Info().Str("id", id).Msg("Post restored")
	return nil
}

// PurgePost deletes a trashed post for good.
func (s *ContentService) PurgePost(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.source.PurgePost(ctx, id); err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to purge post")
		return fmt.Errorf("failed to purge post %s: %w", id, err)
	}
	log.Info().Str("id", id).Msg("Post permanently deleted")
	return nil
}

// ListPhotos returns the photo groups in category ("all" or empty for every group), newest first.
func (s *ContentService) ListPhotos(ctx context.Context, category string) (*PhotoListView, error) {
	if category == "" {
		category = domain.AllPhotos
	}
	if category != domain.AllPhotos && !domain.IsPhotoCategory(category) {
		return nil, fmt.Errorf("%w: unknown photo category %q", ErrValidation, category)
	}

	raw, err := s.source.ListPhotos(ctx, category)
	if err != nil {
		log.Error().Err(err).Str("category", category).Msg("Failed to fetch photos")
		return nil, fmt.Errorf("failed to fetch photos: %w", err)
	}
	if err := stillWanted(ctx); err != nil {
		return nil, err
	}

	return &PhotoListView{
		Photos:     FilterPhotos(s.normalizer.NormalizePhotos(raw), category),
		Category:   category,
		Categories: PhotoCategories(),
	}, nil
}

func (s *ContentService) GetPhoto(ctx context.Context, id string) (domain.PhotoGroup, error) {
	if err := requireID(id); err != nil {
		return domain.PhotoGroup{}, err
	}

	raw, err := s.source.GetPhoto(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to fetch photo group")
		return domain.PhotoGroup{}, fmt.Errorf("failed to fetch photo group %s: %w", id, err)
	}
	if err := stillWanted(ctx); err != nil {
		return domain.PhotoGroup{}, err
	}

	photo := s.normalizer.NormalizePhoto(raw)
	if photo.ID == "" {
		photo.ID = id
	}
	return photo, nil
}

func (s *ContentService) photoPayload(draft domain.PhotoDraft) domain.PhotoDraft {
	if draft.Created == "" {
		draft.Created = s.now().Format(dateLayout)
	}
	return draft
}

// CreatePhoto validates draft and uploads it as a new photo group.
func (s *ContentService) CreatePhoto(ctx context.Context, draft domain.PhotoDraft) (domain.PhotoGroup, error) {
	if err := s.check(draft); err != nil {
		return domain.PhotoGroup{}, err
	}

	payload := s.photoPayload(draft)
	raw, err := s.source.CreatePhoto(ctx, payload)
	if err != nil {
		log.Error().Err(err).Str("title", draft.Title).Msg("Failed to create photo group")
		return domain.PhotoGroup{}, fmt.Errorf("failed to create photo group: %w", err)
	}
	if err := stillWanted(ctx); err != nil {
		return domain.PhotoGroup{}, err
	}

	log.Info().Str("title", draft.Title).Int("images", len(draft.URLs)).Msg("Photo group created")
	return s.normalizer.NormalizePhoto(raw), nil
}

// UpdatePhoto validates draft and replaces photo group id with it.
func (s *ContentService) UpdatePhoto(ctx context.Context, id string, draft domain.PhotoDraft) (domain.PhotoGroup, error) {
	if err := requireID(id); err != nil {
		return domain.PhotoGroup{}, err
	}
	if err := s.check(draft); err != nil {
		return domain.PhotoGroup{}, err
	}

	payload := s.photoPayload(draft)
	if _, err := s.source.UpdatePhoto(ctx, id, payload); err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to update photo group")
		return domain.PhotoGroup{}, fmt.Errorf("failed to update photo group %s: %w", id, err)
	}
	if err := stillWanted(ctx); err != nil {
		return domain.PhotoGroup{}, err
	}

	log.Info().Str("id", id).Msg("Photo group updated")
	// the update response is only an acknowledgement
	return domain.PhotoGroup{
		ID:          id,
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		Created:     payload.Created,
		URLs:        payload.URLs,
	}, nil
}

func (s *ContentService) DeletePhoto(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.source.DeletePhoto(ctx, id); err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to delete photo group")
		return fmt.Errorf("failed to delete photo group %s: %w", id, err)
	}
	log.Info().Str("id", id).Msg("Photo group deleted")
	return nil
}
