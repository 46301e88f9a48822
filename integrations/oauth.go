package integrations

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"meetScribe/config"
	"meetScribe/core"
	"meetScribe/storage"
)

// refreshSkew renews tokens slightly before their recorded expiry.
const refreshSkew = 2 * time.Minute

var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

var zoomEndpoint = oauth2.Endpoint{
	AuthURL:  "https://zoom.us/oauth/authorize",
	TokenURL: "https://zoom.us/oauth/token",
}

// OAuthManager owns the token lifecycle for every connected provider:
// auth-code URL building, code exchange, refresh-ahead-of-expiry, and
// persistence through the meeting store.
type OAuthManager struct {
	store   storage.MeetingStore
	configs map[core.MeetingProvider]*oauth2.Config
}

func NewOAuthManager(cfg *config.Config, store storage.MeetingStore) *OAuthManager {
	configs := map[core.MeetingProvider]*oauth2.Config{}
	if cfg.HasOAuth("google") {
		configs[core.ProviderGoogle] = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Endpoint:     googleEndpoint,
			Scopes:       []string{"https://www.googleapis.com/auth/calendar.readonly"},
		}
	}
	if cfg.HasOAuth("zoom") {
		configs[core.ProviderZoom] = &oauth2.Config{
			ClientID:     cfg.ZoomClientID,
			ClientSecret: cfg.ZoomClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Endpoint:     zoomEndpoint,
			Scopes:       []string{"meeting:read"},
		}
	}
	return &OAuthManager{store: store, configs: configs}
}

// Connected reports whether the provider has client credentials configured.
func (m *OAuthManager) Connected(provider core.MeetingProvider) bool {
	_, ok := m.configs[provider]
	return ok
}

// AuthCodeURL builds the consent URL the browser is redirected to.
func (m *OAuthManager) AuthCodeURL(provider core.MeetingProvider, state string) (string, error) {
	conf, ok := m.configs[provider]
	if !ok {
		return "", fmt.Errorf("provider %s is not configured", provider)
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// Exchange trades the callback code for a token and persists it.
func (m *OAuthManager) Exchange(ctx context.Context, provider core.MeetingProvider, code, userID string) error {
	conf, ok := m.configs[provider]
	if !ok {
		return fmt.Errorf("provider %s is not configured", provider)
	}
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	return m.store.UpsertToken(ctx, core.OAuthToken{
		UserID:       userID,
		Provider:     string(provider),
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	})
}

// Client returns an HTTP client that carries a fresh access token for the
// user, refreshing and re-persisting it when the stored one is expired or
// about to expire.
func (m *OAuthManager) Client(ctx context.Context, userID string, provider core.MeetingProvider) (*http.Client, error) {
	conf, ok := m.configs[provider]
	if !ok {
		return nil, fmt.Errorf("provider %s is not configured", provider)
	}
	stored, found, err := m.store.GetToken(ctx, userID, string(provider))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("user %s has not connected %s", userID, provider)
	}

	tok := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		Expiry:       stored.Expiry.Add(-refreshSkew),
	}
	src := &persistingTokenSource{
		src:      conf.TokenSource(ctx, tok),
		store:    m.store,
		userID:   userID,
		provider: string(provider),
		lastAT:   stored.AccessToken,
	}
	return oauth2.NewClient(ctx, src), nil
}

// persistingTokenSource writes refreshed tokens back to the store so the
// next poll cycle starts from the newest credential.
type persistingTokenSource struct {
	src      oauth2.TokenSource
	store    storage.MeetingStore
	userID   string
	provider string
	lastAT   string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != p.lastAT {
		p.lastAT = tok.AccessToken
		err := p.store.UpsertToken(context.Background(), core.OAuthToken{
			UserID:       p.userID,
			Provider:     p.provider,
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			Expiry:       tok.Expiry,
		})
		if err != nil {
			log.Printf("[OAuth] failed to persist refreshed %s token for %s: %v", p.provider, p.userID, err)
		}
	}
	return tok, nil
}
