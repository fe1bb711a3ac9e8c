package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// Authentication constants.
const (
	// authPrincipal is the fixed Basic auth username the gateway expects.
	authPrincipal = "operator"

	// sessionCookie is the cookie carrying the session token.
	sessionCookie = "SolarToken"

	// credentialSuffixLen is the gateway's last-five-digits convention: the
	// Basic auth password is the tail of the gateway serial number.
	credentialSuffixLen = 5
)

// Session is an authenticated handle permitting repeated gateway requests
// within one poll cycle without re-authenticating.
//
// The session owns a short-lived credential scope: an in-memory cookie jar
// holding the session token. Close releases it; the orchestrator defers
// Close on every exit path so the scope never outlives the cycle. Sessions
// are never persisted across process lifetimes.
type Session struct {
	token string
	httpc *http.Client
}

// Token returns the session token extracted during the handshake.
func (s *Session) Token() string {
	return s.token
}

// Close releases the session's credential scope. Idempotent; safe to defer
// alongside other cleanup.
func (s *Session) Close() error {
	s.token = ""
	s.httpc = nil
	return nil
}

// Login authenticates against the gateway and returns a fresh session.
//
// The handshake is an HTTP Basic request to the fixed authentication
// endpoint, with the fixed principal name and the last five characters of
// the configured gateway serial as the password. The session token is then
// extracted from the response's cookie jar.
//
// Returns:
//   - *Session: Authenticated session; caller must Close it when the cycle ends
//   - error: ErrMissingCredential if no serial is configured (raised before
//     any transport call), ErrAuthFailed if the handshake yields no token,
//     or a classified transport error
func (c *Client) Login(ctx context.Context) (*Session, error) {
	serial := strings.TrimSpace(c.serial)
	if serial == "" {
		return nil, ErrMissingCredential
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating cookie jar: %w", ErrRequestFailed, err)
	}

	// The jar is the session's transient credential store; it lives exactly
	// as long as the session.
	httpc := &http.Client{
		Transport: c.transport,
		Jar:       jar,
		Timeout:   c.timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+authEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.SetBasicAuth(authPrincipal, credentialSuffix(serial))

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: gateway rejected credential (status %d)", ErrAuthFailed, resp.StatusCode)
	default:
		if err := classifyStatus(resp.StatusCode); err != nil {
			return nil, err
		}
	}

	token := extractToken(jar, c.baseURL)
	if token == "" {
		return nil, fmt.Errorf("%w: no %s cookie in handshake response", ErrAuthFailed, sessionCookie)
	}

	c.log.Debug("gateway session established")

	return &Session{
		token: token,
		httpc: httpc,
	}, nil
}

// credentialSuffix applies the last-five-digits convention to the serial.
// Serials shorter than five characters are used whole.
func credentialSuffix(serial string) string {
	if len(serial) <= credentialSuffixLen {
		return serial
	}
	return serial[len(serial)-credentialSuffixLen:]
}

// extractToken pulls the session token cookie out of the jar, if present.
func extractToken(jar http.CookieJar, baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	for _, cookie := range jar.Cookies(u) {
		if cookie.Name == sessionCookie {
			return cookie.Value
		}
	}
	return ""
}
