package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"board/internal/config"
	apperrors "board/internal/errors"
)

const defaultGraphSendMailURL = "https://graph.microsoft.com/v1.0/me/sendMail"

var mailboxScopes = []string{"openid", "email", "offline_access", "Mail.Send"}

// MailboxProvider sends codes from an Outlook mailbox through Microsoft Graph.
type MailboxProvider struct {
	tokens   *TokenStore
	client   *http.Client
	sendURL  string
	endpoint func(tenant string) oauth2.Endpoint
	log      *zap.Logger
}

var (
	_ Provider   = (*MailboxProvider)(nil)
	_ SetupHooks = (*MailboxProvider)(nil)
)

// MailboxOption customises a MailboxProvider.
type MailboxOption func(*MailboxProvider)

// WithSendMailURL overrides the Graph sendMail endpoint.
func WithSendMailURL(url string) MailboxOption {
	return func(p *MailboxProvider) { p.sendURL = url }
}

// WithEndpoint overrides the OAuth endpoint for a tenant.
func WithEndpoint(fn func(tenant string) oauth2.Endpoint) MailboxOption {
	return func(p *MailboxProvider) { p.endpoint = fn }
}

// NewMailboxProvider creates a mailbox provider backed by tokens.
func NewMailboxProvider(tokens *TokenStore, client *http.Client, log *zap.Logger, opts ...MailboxOption) *MailboxProvider {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &MailboxProvider{
		tokens:   tokens,
		client:   client,
		sendURL:  defaultGraphSendMailURL,
		endpoint: microsoft.AzureADEndpoint,
		log:      log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *MailboxProvider) Name() string { return "outlook" }

func (p *MailboxProvider) IsActive(cfg config.DeliveryConfig) bool {
	return cfg.OutlookClientID != ""
}

func (p *MailboxProvider) oauthConfig(cfg config.DeliveryConfig, redirectURL string) *oauth2.Config {
	endpoint := p.endpoint(cfg.OutlookTenant)
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	return &oauth2.Config{
		ClientID:     cfg.OutlookClientID,
		ClientSecret: cfg.OutlookClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  redirectURL,
		Scopes:       mailboxScopes,
	}
}

func (p *MailboxProvider) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.client)
}

// accessToken returns a valid token, refreshing and persisting it when expired.
func (p *MailboxProvider) accessToken(ctx context.Context, cfg config.DeliveryConfig) (*oauth2.Token, error) {
	stored, err := p.tokens.Load(ctx)
	if err != nil {
		return nil, err
	}
	if stored.Valid() {
		return stored, nil
	}
	if stored.RefreshToken == "" {
		return nil, errTokenMissing
	}

	fresh, err := p.oauthConfig(cfg, "").TokenSource(p.oauthContext(ctx), stored).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh mailbox token: %w", err)
	}
	if err := p.tokens.Save(ctx, fresh); err != nil {
		return nil, err
	}
	p.log.Info("mailbox token refreshed", zap.Time("expiry", fresh.Expiry))
	return fresh, nil
}

type graphAddress struct {
	Address string `json:"address"`
}

type graphRecipient struct {
	EmailAddress graphAddress `json:"emailAddress"`
}

type graphBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphMessage struct {
	Subject      string           `json:"subject"`
	Body         graphBody        `json:"body"`
	ToRecipients []graphRecipient `json:"toRecipients"`
}

type graphSendMail struct {
	Message graphMessage `json:"message"`
}

// SendCode mails the code to email from the authorised mailbox.
func (p *MailboxProvider) SendCode(ctx context.Context, cfg config.DeliveryConfig, email, code string) error {
	tok, err := p.accessToken(ctx, cfg)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(graphSendMail{Message: graphMessage{
		Subject:      "Your Verification Code",
		Body:         graphBody{ContentType: "Text", Content: fmt.Sprintf("Your verification code is %s.", code)},
		ToRecipients: []graphRecipient{{EmailAddress: graphAddress{Address: email}}},
	}})
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.sendURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	tok.SetAuthHeader(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("graph returned status %d", resp.StatusCode)
	}
	return nil
}

// RegisterRoutes adds the one-time mailbox consent endpoints.
func (p *MailboxProvider) RegisterRoutes(g *echo.Group, load config.Loader) {
	g.GET("/outlook-auth", func(c echo.Context) error { return p.startAuth(c, load()) })
	g.GET("/outlook-auth-callback", func(c echo.Context) error { return p.finishAuth(c, load()) })
}

func requestURL(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host + c.Request().URL.Path
}

func (p *MailboxProvider) startAuth(c echo.Context, cfg config.DeliveryConfig) error {
	if cfg.AuthSecret == "" || c.QueryParam("auth") != cfg.AuthSecret || !p.IsActive(cfg) {
		return echo.ErrNotFound
	}
	conf := p.oauthConfig(cfg, requestURL(c)+"-callback")
	return c.Redirect(http.StatusFound, conf.AuthCodeURL("", oauth2.SetAuthURLParam("response_mode", "query")))
}

func (p *MailboxProvider) finishAuth(c echo.Context, cfg config.DeliveryConfig) error {
	code := c.QueryParam("code")
	if code == "" {
		return apperrors.Validation("missing authorization code")
	}
	if cfg.OutlookClientID == "" || cfg.OutlookClientSecret == "" {
		return fmt.Errorf("outlook client id or secret is not configured")
	}

	ctx := c.Request().Context()
	tok, err := p.oauthConfig(cfg, requestURL(c)).Exchange(p.oauthContext(ctx), code)
	if err != nil {
		return fmt.Errorf("%w: exchange authorization code: %w", apperrors.ErrDelivery, err)
	}
	if err := p.tokens.Save(ctx, tok); err != nil {
		return err
	}

	p.log.Info("mailbox authorised", zap.Time("expiry", tok.Expiry))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Outlook authentication successful."})
}
