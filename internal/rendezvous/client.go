package rendezvous

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"discshare/internal/logging"
)

// Client talks to a match service over HTTP. All calls are short-lived;
// a fresh connection is made per request.
type Client struct {
	host string
	http *http.Client
	log  *logging.Logger
}

// NewClient returns a client for the match service at host (host:port).
func NewClient(host string, log *logging.Logger) *Client {
	return &Client{
		host: host,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}
}

// Host returns the configured match service address.
func (c *Client) Host() string {
	return c.host
}

// Register announces localIP:port as a running share server. Best-effort
// and fire-and-forget: failures are logged at debug level and otherwise
// swallowed, matching the protocol's contract that registration is never
// load-bearing.
func (c *Client) Register(ctx context.Context, localIP string, port int) {
	q := url.Values{}
	q.Set("local", localIP)
	q.Set("port", strconv.Itoa(port))
	u := fmt.Sprintf("http://%s/match/update?%s", c.host, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.log.Debug("register request build failed", logging.Err(err))
		return
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("register failed", logging.String("host", c.host), logging.Err(err))
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	c.log.Debug("registered with match service",
		logging.String("local", localIP), logging.Int("port", port))
}

// List fetches the current peer list. The service's ordering is
// preserved: callers probe candidates in exactly this order.
func (c *Client) List(ctx context.Context) ([]Candidate, error) {
	u := fmt.Sprintf("http://%s/match/list", c.host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building list request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching peer list from %s", c.host)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("match service returned %d", resp.StatusCode)
	}

	var candidates []Candidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return nil, errors.Wrap(err, "decoding peer list")
	}
	return candidates, nil
}
