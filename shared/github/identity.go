package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"
	oauth2github "golang.org/x/oauth2/github"
)

// ErrNotAllowed is returned when a GitHub account other than the allow-listed one signs in.
var ErrNotAllowed = errors.New("github: account is not allowed to edit")

// Identity is the GitHub account behind an OAuth sign-in.
type Identity struct {
	ID    int64
	Login string
	Name  string
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AllowedLogin string

	// Endpoint and APIBaseURL override github.com, mostly for tests.
	Endpoint   *oauth2.Endpoint
	APIBaseURL string
}

// IdentityProvider runs the server side of the GitHub OAuth flow and checks the result
// against the single allow-listed login.
type IdentityProvider struct {
	oauth      *oauth2.Config
	allowed    string
	apiBaseURL *url.URL
}

func NewIdentityProvider(cfg Config) (*IdentityProvider, error) {
	endpoint := oauth2github.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}

	p := &IdentityProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"read:user"},
		},
		allowed: cfg.AllowedLogin,
	}

	if cfg.APIBaseURL != "" {
		base := cfg.APIBaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("github: invalid API base URL %q: %w", cfg.APIBaseURL, err)
		}
		p.apiBaseURL = u
	}

	return p, nil
}

// Enabled reports whether sign-in with GitHub is configured.
func (p *IdentityProvider) Enabled() bool {
	return p.oauth.ClientID != "" && p.allowed != ""
}

// AuthCodeURL returns the GitHub authorize URL the browser is sent to.
func (p *IdentityProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Authenticate exchanges code for a token, looks up the account and checks it against the allow-list.
// The identity is returned alongside ErrNotAllowed so callers can log who tried.
func (p *IdentityProvider) Authenticate(ctx context.Context, code string) (*Identity, error) {
	if code == "" {
		return nil, errors.New("github: missing authorization code")
	}

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github: exchanging authorization code failed: %w", err)
	}

	identity, err := p.identify(ctx, token)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(identity.Login, p.allowed) {
		return identity, ErrNotAllowed
	}
	return identity, nil
}

func (p *IdentityProvider) identify(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	client := github.NewClient(p.oauth.Client(ctx, token))
	if p.apiBaseURL != nil {
		client.BaseURL = p.apiBaseURL
	}

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, handleGithubError("getting authenticated user", err)
	}

	return &Identity{
		ID:    user.GetID(),
		Login: user.GetLogin(),
		Name:  user.GetName(),
	}, nil
}

// handleGithubError inspects an error from the go-github client and returns a more informative, structured error.
func handleGithubError(op string, err error) error {
	if err == nil {
		return nil
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		return fmt.Errorf("github: %s failed with status %d: %s", op, errResp.Response.StatusCode, errResp.Message)
	}

	return fmt.Errorf("github: %s failed: %w", op, err)
}
