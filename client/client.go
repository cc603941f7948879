// Package client is the Go client library for the cache daemon: it mirrors
// the server's Set/Get/Del/Reset/SpaceUsed surface over the same HTTP/1.1
// wire protocol, using net/http with keep-alive connections instead of
// hand-rolled HTTP framing.
//
// Unlike the original client, the GET response body is decoded with
// encoding/json rather than a string-offset heuristic, so it cannot be
// tripped up by a value that happens to contain a colon or quote.
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"netcache/internal/wire"
)

// Client talks to one cache daemon instance over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client targeting the daemon listening on host:port. The
// underlying http.Client reuses connections (Go's default transport
// keep-alive), matching the original client's persistent-connection intent
// without needing to manage a socket by hand.
func New(host, port string) *Client {
	return &Client{
		baseURL: fmt.Sprintf("http://%s:%s", host, port),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Set stores value under key, deep-copied and byte-budgeted by the server.
// Values the engine rejects (oversized, or no room without a policy) are
// dropped silently and the server still replies 200, so Set returns nil for
// them; Set returns an error only for transport failures and for any
// non-200 status (such as a 400 for a malformed target).
func (c *Client) Set(key, value string) error {
	req, err := http.NewRequest(http.MethodPut, c.baseURL+"/"+key+"/"+value, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("client: SET %q: unexpected status %s", key, resp.Status)
	}
	return nil
}

// Get retrieves the value stored under key. ok is false on a cache miss.
func (c *Client) Get(key string) (value string, ok bool, err error) {
	resp, err := c.http.Get(c.baseURL + "/" + key)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("client: GET %q: unexpected status %s", key, resp.Status)
	}

	var body wire.GetResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", false, fmt.Errorf("client: GET %q: decode response: %w", key, err)
	}
	return body.Value, true, nil
}

// Del removes key if present, reporting whether it was.
func (c *Client) Del(key string) (existed bool, err error) {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/"+key, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("client: DEL %q: unexpected status %s", key, resp.Status)
	}
	return resp.Header.Get(wire.HeaderDeleteBool) == "true", nil
}

// SpaceUsed returns the total bytes currently occupied by cache values.
func (c *Client) SpaceUsed() (int, error) {
	req, err := http.NewRequest(http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // draining for keep-alive reuse

	used, err := strconv.Atoi(resp.Header.Get(wire.HeaderSpaceUsed))
	if err != nil {
		return 0, fmt.Errorf("client: SPACE: malformed %s header: %w", wire.HeaderSpaceUsed, err)
	}
	return used, nil
}

// Reset deletes all data from the cache.
func (c *Client) Reset() error {
	resp, err := c.http.Post(c.baseURL+wire.ResetPath, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("client: RESET: unexpected status %s", resp.Status)
	}
	return nil
}
