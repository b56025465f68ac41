package domain

import (
	"context"
)

// ContentSource is the remote content API as seen by the application.
// Payloads are returned exactly as decoded from JSON so that they can be normalized at the boundary.
type ContentSource interface {
	ListPosts(ctx context.Context) (any, error)
	GetPost(ctx context.Context, id string) (any, error)
	CreatePost(ctx context.Context, payload any) (any, error)
	UpdatePost(ctx context.Context, id string, payload any) (any, error)
	DeletePost(ctx context.Context, id string) error

	ListTrash(ctx context.Context) (any, error)
	RestorePost(ctx context.Context, id string) error
	PurgePost(ctx context.Context, id string) error

	ListPhotos(ctx context.Context, category string) (any, error)
	GetPhoto(ctx context.Context, id string) (any, error)
	CreatePhoto(ctx context.Context, payload any) (any, error)
	UpdatePhoto(ctx context.Context, id string, payload any) (any, error)
	DeletePhoto(ctx context.Context, id string) error

	ValidatePassphrase(ctx context.Context, passphrase string) (bool, error)
}
