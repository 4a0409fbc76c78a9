package remote

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iota-uz/tenantgate/pkg/configuration"
	"github.com/iota-uz/tenantgate/pkg/identity"
	"github.com/iota-uz/tenantgate/pkg/metrics"
)

type Options struct {
	BaseURL         string
	SecretKey       string
	HMACSecret      string
	PublicKeyPEM    string
	Issuer          string
	CheckRevocation bool
	// Timeout bounds every provider call independently of the request deadline.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to a Clerk-style identity API. Session tokens are verified
// locally; memberships and organizations are fetched over REST on every call.
type Client struct {
	baseURL         *url.URL
	secretKey       string
	hmacSecret      []byte
	publicKey       *rsa.PublicKey
	issuer          string
	checkRevocation bool
	timeout         time.Duration
	httpClient      *http.Client
}

// FromConfig builds a client from the IDENTITY_* settings.
func FromConfig(o configuration.IdentityOptions) (*Client, error) {
	return New(Options{
		BaseURL:         o.ProviderURL,
		SecretKey:       o.SecretKey,
		HMACSecret:      o.JWTHMACSecret,
		PublicKeyPEM:    o.JWTPublicKeyPEM,
		Issuer:          o.JWTIssuer,
		CheckRevocation: o.CheckRevocation,
		Timeout:         o.Timeout,
	})
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid identity provider url: %w", err)
	}
	c := &Client{
		baseURL:         base,
		secretKey:       opts.SecretKey,
		issuer:          opts.Issuer,
		checkRevocation: opts.CheckRevocation,
		timeout:         opts.Timeout,
		httpClient:      opts.HTTPClient,
	}
	switch {
	case opts.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(opts.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse session public key: %w", err)
		}
		c.publicKey = key
	case opts.HMACSecret != "":
		c.hmacSecret = []byte(opts.HMACSecret)
	default:
		return nil, errors.New("identity client needs a session public key or HMAC secret")
	}
	if c.timeout <= 0 {
		c.timeout = 3 * time.Second
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	return c, nil
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (c *Client) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodRSA:
		if c.publicKey == nil {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.publicKey, nil
	case *jwt.SigningMethodHMAC:
		if c.hmacSecret == nil {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.hmacSecret, nil
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}

func (c *Client) VerifySession(ctx context.Context, token string) (*identity.Session, error) {
	start := time.Now()
	session, err := c.verifySession(ctx, token)
	metrics.RecordIdentityCall("verify_session", resultLabel(err), time.Since(start))
	return session, err
}

func (c *Client) verifySession(ctx context.Context, token string) (*identity.Session, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, c.keyFunc, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrInvalidSession, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", identity.ErrInvalidSession)
	}

	if c.checkRevocation && claims.SessionID != "" {
		if err := c.checkSessionActive(ctx, claims.SessionID); err != nil {
			return nil, err
		}
	}

	raw := map[string]any{}
	if mapClaims, ok := decodeRawClaims(parsed.Raw); ok {
		raw = mapClaims
	}
	session := &identity.Session{
		UserID:      claims.Subject,
		SessionID:   claims.SessionID,
		Email:       claims.Email,
		DisplayName: claims.Name,
		Claims:      raw,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

type sessionResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) checkSessionActive(ctx context.Context, sessionID string) error {
	var resp sessionResponse
	err := c.get(ctx, []string{"sessions", sessionID}, &resp)
	if errors.Is(err, errNotFound) {
		return fmt.Errorf("%w: session %s not found", identity.ErrInvalidSession, sessionID)
	}
	if err != nil {
		return err
	}
	if resp.Status != "active" {
		return fmt.Errorf("%w: session status %q", identity.ErrInvalidSession, resp.Status)
	}
	return nil
}

type membershipResponse struct {
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id"`
	Role           string `json:"role"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
}

func (c *Client) GetMembership(ctx context.Context, userID, organizationID string) (*identity.Membership, error) {
	start := time.Now()
	var resp membershipResponse
	err := c.get(ctx, []string{"organizations", organizationID, "memberships", userID}, &resp)
	if errors.Is(err, errNotFound) {
		err = identity.ErrMembershipNotFound
	}
	metrics.RecordIdentityCall("get_membership", resultLabel(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	if resp.UserID != userID || resp.OrganizationID != organizationID {
		return nil, identity.ErrMembershipNotFound
	}
	return &identity.Membership{
		OrganizationID: resp.OrganizationID,
		UserID:         resp.UserID,
		Role:           resp.Role,
		Email:          resp.Email,
		DisplayName:    strings.TrimSpace(resp.FirstName + " " + resp.LastName),
	}, nil
}

type organizationResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	MembersCount int    `json:"members_count"`
	CreatedAt    int64  `json:"created_at"`
}

func (c *Client) GetOrganization(ctx context.Context, organizationID string) (*identity.Organization, error) {
	start := time.Now()
	var resp organizationResponse
	err := c.get(ctx, []string{"organizations", organizationID}, &resp)
	if errors.Is(err, errNotFound) {
		err = identity.ErrOrganizationNotFound
	}
	metrics.RecordIdentityCall("get_organization", resultLabel(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return &identity.Organization{
		ID:           resp.ID,
		Name:         resp.Name,
		Slug:         resp.Slug,
		MembersCount: resp.MembersCount,
		CreatedAt:    time.UnixMilli(resp.CreatedAt),
	}, nil
}

var errNotFound = errors.New("not found")

func (c *Client) get(ctx context.Context, segments []string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	endpoint := c.baseURL.JoinPath(escaped...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.secretKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.secretKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", identity.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return errNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", identity.ErrProviderUnavailable, endpoint.Path, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", identity.ErrProviderUnavailable, endpoint.Path, err)
	}
	return nil
}

func decodeRawClaims(raw string) (map[string]any, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, false
	}
	return claims, true
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, identity.ErrProviderUnavailable):
		return "unavailable"
	default:
		return "denied"
	}
}
