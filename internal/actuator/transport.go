package actuator

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nerrad567/aircontrol-core/internal/room"
)

// DefaultTimeout bounds one actuator request.
const DefaultTimeout = 5 * time.Second

// Transport delivers a target state to an actuator endpoint.
//
// Send returns nil only when the actuator confirmed the new state. Failures
// wrap ErrRemoteRejected or ErrUnreachable.
type Transport interface {
	Send(ctx context.Context, endpoint string, a room.Actuator, s room.State) error
}

// HTTPTransport sends PUT {endpoint}/{actuator}?state={state}.
type HTTPTransport struct {
	client *resty.Client
}

// NewHTTPTransport creates a transport with a per-request timeout and no retries.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)

	return &HTTPTransport{client: client}
}

// Send implements Transport.
//
// Status mapping:
//   - 2xx: accepted
//   - 409 and other 4xx: ErrRemoteRejected
//   - 5xx, timeouts and network errors: ErrUnreachable
func (t *HTTPTransport) Send(ctx context.Context, endpoint string, a room.Actuator, s room.State) error {
	url := strings.TrimRight(endpoint, "/") + "/" + string(a)

	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParam("state", string(s)).
		Put(url)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnreachable, url, err)
	}

	code := resp.StatusCode()
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusConflict:
		return fmt.Errorf("%w: %s answered %d: %s", ErrRemoteRejected, url, code, strings.TrimSpace(resp.String()))
	case code >= 400 && code < 500:
		return fmt.Errorf("%w: %s answered %d", ErrRemoteRejected, url, code)
	default:
		return fmt.Errorf("%w: %s answered %d", ErrUnreachable, url, code)
	}
}
