package gateway

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/solwatch/solwatch-core/internal/infrastructure/config"
	"github.com/solwatch/solwatch-core/internal/telemetry"
)

// Gateway API endpoints. The authentication endpoint is fixed across firmware
// versions; the data endpoints differ per API generation.
const (
	authEndpoint     = "/auth/login"
	livedataEndpoint = "/api/v1/livedata"
	devicesEndpoint  = "/api/v1/devices/"
	legacyEndpoint   = "/devices.json"
)

// defaultRequestTimeout applies when no timeout is configured.
const defaultRequestTimeout = 10 * time.Second

// maxResponseSize bounds gateway response bodies (1MB). Gateway payloads are
// a few kilobytes; anything larger is a misbehaving endpoint.
const maxResponseSize = 1 << 20

// Logger is the minimal logging interface the client needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Debug(string, ...any) {}

// Client issues HTTPS requests to the local monitoring gateway.
//
// The gateway presents a self-signed local certificate, so certificate
// validation is skipped. This is an accepted trust boundary: the client only
// ever talks to a device on the local network whose identity is established
// by its address, not by a certificate chain.
//
// A Client holds no session state; sessions are created per poll cycle via
// Login and carry their own cookie scope.
type Client struct {
	baseURL string
	serial  string
	timeout time.Duration

	// transport is shared across sessions; connection pooling is safe
	// because cookies live in the per-session jar, not the transport.
	transport *http.Transport

	log Logger
}

// NewClient creates a gateway client from configuration.
func NewClient(cfg config.GatewayConfig, log Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	return newClient(fmt.Sprintf("https://%s:%d", cfg.Host, cfg.Port), cfg.Serial, timeout, log)
}

func newClient(baseURL, serial string, timeout time.Duration, log Logger) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	if log == nil {
		log = noopLogger{}
	}
	return &Client{
		baseURL: baseURL,
		serial:  serial,
		timeout: timeout,
		transport: &http.Transport{
			// Gateway uses a self-signed certificate. Accepted trust
			// boundary, see package documentation.
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402
		},
		log: log,
	}
}

// FetchLiveData retrieves the system-wide live data payload as raw fields.
func (c *Client) FetchLiveData(ctx context.Context, sess *Session) ([]telemetry.RawField, error) {
	body, err := c.get(ctx, sess, livedataEndpoint)
	if err != nil {
		return nil, err
	}
	return decodeFields(body)
}

// FetchCategory retrieves the payload for one device category (e.g.
// "inverter") as raw fields. Identifiers in the payload carry the full
// device path shape.
func (c *Client) FetchCategory(ctx context.Context, sess *Session, category string) ([]telemetry.RawField, error) {
	body, err := c.get(ctx, sess, devicesEndpoint+category)
	if err != nil {
		return nil, err
	}
	return decodeFields(body)
}

// FetchLegacyDevices retrieves the legacy device listing: one flat key/value
// map per device, with no path-structured keys.
func (c *Client) FetchLegacyDevices(ctx context.Context, sess *Session) ([]map[string]string, error) {
	body, err := c.get(ctx, sess, legacyEndpoint)
	if err != nil {
		return nil, err
	}
	return decodeLegacyDevices(body)
}

// get performs one authenticated GET against the gateway. The session's
// cookie jar supplies the session token; no re-authentication happens here.
//
// Errors are classified for the orchestrator: transient transport conditions
// wrap ErrGatewayUnavailable, session rejection wraps ErrAuthFailed, and
// everything else wraps ErrRequestFailed.
func (c *Client) get(ctx context.Context, sess *Session, path string) ([]byte, error) {
	if sess == nil || sess.httpc == nil {
		return nil, ErrSessionClosed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	c.log.Debug("gateway request", "path", path)

	resp, err := sess.httpc.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	return body, nil
}

// classifyTransportError maps a raw transport error into the gateway error
// taxonomy: retryable conditions wrap ErrGatewayUnavailable, the rest wrap
// ErrRequestFailed.
func classifyTransportError(err error) error {
	if isTransientNetErr(err) {
		return fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}
	return fmt.Errorf("%w: %w", ErrRequestFailed, err)
}

// classifyStatus maps a gateway HTTP status to the error taxonomy. Overload
// and proxy-failure classes are transient; authentication rejections are
// fatal for the cycle; any other non-2xx status is a fatal request failure.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusInternalServerError,
		code == http.StatusBadGateway,
		code == http.StatusServiceUnavailable,
		code == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d", ErrGatewayUnavailable, code)
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return fmt.Errorf("%w: gateway rejected session (status %d)", ErrAuthFailed, code)
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrRequestFailed, code)
	}
}
