package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dfryer1193/inkfront/blog/application"
	"github.com/dfryer1193/inkfront/internal/middleware"
	"github.com/dfryer1193/inkfront/shared/github"
)

// IdentityProvider is the GitHub sign-in flow as the handlers need it.
type IdentityProvider interface {
	Enabled() bool
	AuthCodeURL(state string) string
	Authenticate(ctx context.Context, code string) (*github.Identity, error)
}

type Handlers struct {
	content       *application.ContentService
	sessions      *application.SessionGate
	theme         *application.ThemeStore
	identity      IdentityProvider
	metrics       http.Handler
	secureCookies bool
	upgrader      websocket.Upgrader
}

type Option func(*Handlers)

func WithIdentityProvider(p IdentityProvider) Option {
	return func(h *Handlers) { h.identity = p }
}

func WithMetricsHandler(m http.Handler) Option {
	return func(h *Handlers) { h.metrics = m }
}

// WithSecureCookies marks session cookies Secure, for deployments behind TLS.
func WithSecureCookies(secure bool) Option {
	return func(h *Handlers) { h.secureCookies = secure }
}

func NewHandlers(content *application.ContentService, sessions *application.SessionGate, theme *application.ThemeStore, opts ...Option) *Handlers {
	h := &Handlers{
		content:  content,
		sessions: sessions,
		theme:    theme,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func NewApi(router *gin.Engine, h *Handlers) {
	api := router.Group("/api")
	{
		api.GET("/posts", h.ListPosts)
		api.GET("/posts/:id", h.GetPost)
		api.GET("/photos", h.ListPhotos)
		api.GET("/photos/:id", h.GetPhoto)

		api.GET("/session", h.GetSession)
		api.POST("/session/passphrase", h.PostPassphrase)
		api.POST("/session/logout", h.Logout)

		api.GET("/theme", h.GetTheme)
		api.POST("/theme/toggle", middleware.RequireSession(h.sessions), h.ToggleTheme)
		api.GET("/theme/ws", h.ThemeSocket)
	}

	admin := api.Group("/admin", middleware.RequireSession(h.sessions))
	{
		admin.POST("/posts", h.CreatePost)
		admin.PUT("/posts/:id", h.UpdatePost)
		admin.DELETE("/posts/:id", h.DeletePost)

		admin.GET("/trash", h.ListTrash)
		admin.POST("/trash/:id/restore", h.RestorePost)
		admin.DELETE("/trash/:id", h.PurgePost)

		admin.POST("/photos", h.CreatePhoto)
		admin.PUT("/photos/:id", h.UpdatePhoto)
		admin.DELETE("/photos/:id", h.DeletePhoto)
	}

	auth := router.Group("/auth")
	{
		auth.GET("/login", h.Login)
		auth.GET("/callback", h.Callback)
		auth.POST("/logout", h.Logout)
	}

	router.GET("/assets/copy.js", h.CopyScript)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}
}
