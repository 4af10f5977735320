// Package scroll is the HTTP client for a hive node's scroll surface.
// Every read and write goes through /scroll paths; wallet figures and
// pattern digests are ordinary scrolls under their namespace prefixes.
package scroll

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound reports a read of a path the node has no scroll for.
var ErrNotFound = errors.New("scroll not found")

// Client speaks the node's HTTP surface.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the node at baseURL. Non-positive
// timeouts fall back to 5 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// HealthInfo is the node's answer on /health.
type HealthInfo struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Listing is the node's answer to a prefix query.
type Listing struct {
	Paths []string `json:"paths"`
	Count int      `json:"count"`
}

// Scroll is one document from the node's content store. Data stays raw
// so namespace-specific payloads decode at the call site.
type Scroll struct {
	Key      string          `json:"key"`
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data"`
	Metadata Metadata        `json:"metadata"`
}

// Metadata carries the store's bookkeeping. The shell only consumes the
// version; the remaining fields are left undecoded.
type Metadata struct {
	Version uint64 `json:"version"`
}

// WriteAck is the node's acknowledgment of a scroll write.
type WriteAck struct {
	Key     string `json:"key"`
	Version uint64 `json:"version"`
}

// AuthStatus is the node's lock state.
type AuthStatus struct {
	Locked      bool `json:"locked"`
	Initialized bool `json:"initialized"`
}

type authAction struct {
	Success bool `json:"success"`
}

// Health checks that the node answers.
func (c *Client) Health() (*HealthInfo, error) {
	var info HealthInfo
	if err := c.get("/health", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// List returns the scroll paths under prefix. An empty prefix lists the
// whole store, matching the node's own default.
func (c *Client) List(prefix string) (*Listing, error) {
	if prefix == "" {
		prefix = "/"
	}
	var listing Listing
	if err := c.get("/scrolls?prefix="+url.QueryEscape(prefix), &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// Get reads the scroll at path. Missing paths return ErrNotFound.
func (c *Client) Get(path string) (*Scroll, error) {
	var s Scroll
	if err := c.get("/scroll"+normalizePath(path), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Put writes data to the scroll at path and returns the node's ack.
func (c *Client) Put(path string, data any) (*WriteAck, error) {
	var ack WriteAck
	if err := c.send(http.MethodPost, "/scroll"+normalizePath(path), data, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// Auth reports whether the node's wallet is locked.
func (c *Client) Auth() (*AuthStatus, error) {
	var status AuthStatus
	if err := c.get("/system/auth/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Unlock submits the wallet PIN. The node takes PUT on its auth routes.
func (c *Client) Unlock(pin string) (bool, error) {
	var act authAction
	payload := map[string]string{"pin": pin}
	if err := c.send(http.MethodPut, "/system/auth/unlock", payload, &act); err != nil {
		return false, err
	}
	return act.Success, nil
}

// Lock re-locks the wallet.
func (c *Client) Lock() (bool, error) {
	var act authAction
	if err := c.send(http.MethodPut, "/system/auth/lock", nil, &act); err != nil {
		return false, err
	}
	return act.Success, nil
}

// Balance is the wallet's sat totals as published at /wallet/balance.
type Balance struct {
	Confirmed uint64 `json:"confirmed"`
	Pending   uint64 `json:"pending"`
	Immature  uint64 `json:"immature"`
	Spendable uint64 `json:"spendable"`
	Total     uint64 `json:"total"`
}

// Balance reads the wallet balance scroll.
func (c *Client) Balance() (*Balance, error) {
	s, err := c.Get("/wallet/balance")
	if err != nil {
		return nil, err
	}
	var b Balance
	if err := json.Unmarshal(s.Data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode balance scroll: %w", err)
	}
	return &b, nil
}

// Address reads the wallet's current receive address.
func (c *Client) Address() (string, error) {
	s, err := c.Get("/wallet/address")
	if err != nil {
		return "", err
	}
	var payload struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(s.Data, &payload); err != nil {
		return "", fmt.Errorf("failed to decode address scroll: %w", err)
	}
	return payload.Address, nil
}

func (c *Client) get(path string, out any) error {
	return c.send(http.MethodGet, path, nil, out)
}

func (c *Client) send(method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach node: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read node response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, strings.TrimSpace(string(raw)))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("node returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode node response: %w", err)
	}
	return nil
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
