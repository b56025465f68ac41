package rest

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dfryer1193/inkfront/blog/domain"
	"github.com/dfryer1193/inkfront/internal/middleware"
	"github.com/dfryer1193/inkfront/shared/github"
)

const (
	oauthStateCookie = "inkfront_oauth_state"
	oauthStateMaxAge = 10 * 60
	sessionMaxAge    = 365 * 24 * 60 * 60

	adminPath = "/admin"
	loginPath = "/login"
)

type passphraseRequest struct {
	Passphrase string `json:"passphrase"`
}

func (h *Handlers) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, id, sessionMaxAge, "/", "", h.secureCookies, true)
}

func (h *Handlers) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", h.secureCookies, true)
}

func (h *Handlers) GetSession(c *gin.Context) {
	id, _ := c.Cookie(middleware.SessionCookie)
	session, ok := h.sessions.Lookup(c.Request.Context(), id)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"method":        session.Method,
		"subject":       session.Subject,
	})
}

func (h *Handlers) PostPassphrase(c *gin.Context) {
	var req passphraseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := h.sessions.GrantPassphrase(c.Request.Context(), req.Passphrase)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, session.ID)
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

func (h *Handlers) Logout(c *gin.Context) {
	id, _ := c.Cookie(middleware.SessionCookie)
	if err := h.sessions.Revoke(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	h.clearCookie(c, middleware.SessionCookie)
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

// Login starts the GitHub OAuth flow.
func (h *Handlers) Login(c *gin.Context) {
	if h.identity == nil || !h.identity.Enabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "github sign-in is not configured"})
		return
	}

	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/auth", "", h.secureCookies, true)
	c.Redirect(http.StatusFound, h.identity.AuthCodeURL(state))
}

// Callback finishes the GitHub OAuth flow and grants a session to the allow-listed account.
func (h *Handlers) Callback(c *gin.Context) {
	if h.identity == nil || !h.identity.Enabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "github sign-in is not configured"})
		return
	}

	expected, _ := c.Cookie(oauthStateCookie)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, "", -1, "/auth", "", h.secureCookies, true)

	if expected == "" || c.Query("state") != expected {
		log.Warn().Msg("Rejecting OAuth callback with mismatched state")
		redirectLoginError(c, "invalid_state")
		return
	}

	identity, err := h.identity.Authenticate(c.Request.Context(), c.Query("code"))
	if errors.Is(err, github.ErrNotAllowed) {
		login := ""
		if identity != nil {
			login = identity.Login
		}
		log.Warn().Str("login", login).Msg("Rejected sign-in from account outside the allow-list")
		redirectLoginError(c, "unauthorized")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("GitHub sign-in failed")
		redirectLoginError(c, "failed")
		return
	}

	session, err := h.sessions.Grant(c.Request.Context(), identity.Login, domain.SessionMethodGithub)
	if err != nil {
		log.Error().Err(err).Msg("Failed to grant session after sign-in")
		redirectLoginError(c, "failed")
		return
	}

	h.setSessionCookie(c, session.ID)
	c.Redirect(http.StatusFound, adminPath)
}

func redirectLoginError(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, loginPath+"?error="+url.QueryEscape(reason))
}
