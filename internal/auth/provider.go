package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const DefaultAuthorityHost = "https://login.microsoftonline.com"

// DefaultScopes are the delegated Graph permissions needed to send mail.
// offline_access makes the authority issue a refresh token.
func DefaultScopes() []string {
	return []string{
		"https://graph.microsoft.com/Mail.Send",
		"https://graph.microsoft.com/Mail.ReadWrite",
		"offline_access",
	}
}

type Config struct {
	ClientID      string
	TenantID      string
	AuthorityHost string
	Scopes        []string
}

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient sets the client used for every call to the authority.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = client
	}
}

func WithCache(cache Cache) Option {
	return func(p *Provider) {
		p.cache = cache
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(p *Provider) {
		p.log = log
	}
}

// Provider acquires delegated access tokens for a public client.
//
// A cached token is tried first, refreshing it when expired. Only when that
// yields nothing does the provider fall back to the device code flow, which
// blocks until the user signs in on another device.
type Provider struct {
	config     *oauth2.Config
	cache      Cache
	httpClient *http.Client
	log        *zap.Logger
}

func NewProvider(cfg Config, opts ...Option) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.TenantID == "" {
		return nil, ErrMissingTenantID
	}

	host := strings.TrimRight(cfg.AuthorityHost, "/")
	if host == "" {
		host = DefaultAuthorityHost
	}
	base := host + "/" + cfg.TenantID + "/oauth2/v2.0"

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes()
	}

	p := &Provider{
		config: &oauth2.Config{
			ClientID: cfg.ClientID,
			Scopes:   scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:       base + "/authorize",
				TokenURL:      base + "/token",
				DeviceAuthURL: base + "/devicecode",
				AuthStyle:     oauth2.AuthStyleInParams,
			},
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// AccessToken returns a bearer token for the mail API.
func (p *Provider) AccessToken(ctx context.Context) (string, error) {
	ctx = p.contextWithHTTPClient(ctx)

	if cached := p.load(); cached != nil {
		tok, err := p.config.TokenSource(ctx, cached).Token()
		if err == nil {
			if tok.AccessToken != cached.AccessToken {
				p.save(tok)
			}
			p.log.Info("token acquired silently from cache", zap.Time("expiry", tok.Expiry))
			return tok.AccessToken, nil
		}
		p.log.Error("silent authentication failed", zap.Error(err))
	}

	p.log.Info("silent authentication failed, attempting interactive authentication")

	tok, err := p.deviceFlow(ctx)
	if err != nil {
		return "", err
	}

	p.log.Info("authentication successful")
	p.save(tok)

	return tok.AccessToken, nil
}

func (p *Provider) deviceFlow(ctx context.Context) (*oauth2.Token, error) {
	da, err := p.config.DeviceAuth(ctx)
	if err != nil {
		p.log.Error("failed to create device flow", zap.Error(err))
		return nil, errors.Join(ErrDeviceAuthorization, err)
	}

	uri := da.VerificationURIComplete
	if uri == "" {
		uri = da.VerificationURI
	}
	p.log.Info("to sign in, open the verification page and enter the code",
		zap.String("verification_uri", uri),
		zap.String("user_code", da.UserCode),
		zap.Time("expires_at", da.Expiry),
	)

	tok, err := p.config.DeviceAccessToken(ctx, da)
	if err != nil {
		p.log.Error("authentication failed", zap.Error(err))
		return nil, errors.Join(ErrAuthentication, err)
	}

	return tok, nil
}

func (p *Provider) load() *oauth2.Token {
	if p.cache == nil {
		return nil
	}

	tok, err := p.cache.Load()
	if err != nil {
		p.log.Error("failed to load token cache", zap.Error(err))
		return nil
	}
	if tok == nil {
		p.log.Debug("no existing token cache found")
	}

	return tok
}

func (p *Provider) save(tok *oauth2.Token) {
	if p.cache == nil {
		return
	}

	if err := p.cache.Save(tok); err != nil {
		p.log.Error("failed to save token cache", zap.Error(err))
		return
	}

	p.log.Debug("token cache saved")
}

func (p *Provider) contextWithHTTPClient(ctx context.Context) context.Context {
	if p.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}
	return ctx
}
