// Package entropy supplies master seeds for worlds generated without one.
// Uses random.org when an API key is configured and falls back to crypto/rand.
package entropy

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	randomOrgURL = "https://api.random.org/json-rpc/4/invoke"

	// random.org integers are drawn from [0, intMax]; two draws form one seed.
	intMax = 999_999_999
)

// Client provides true random integers from random.org with a local pool.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client

	mu   sync.Mutex
	pool []int64
}

// NewClient creates a random.org client. Returns nil if apiKey is empty.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: randomOrgURL,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled returns true if the client has a valid API key.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Seed returns a non-zero master seed. Uses the client's pool if available,
// refilling from random.org when low, and crypto/rand otherwise.
func Seed(c *Client) int64 {
	if c.Enabled() {
		if s, ok := c.next(); ok {
			return s
		}
	}
	return cryptoSeed()
}

func (c *Client) next() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pool) < 2 {
		if err := c.refill(); err != nil {
			slog.Debug("random.org refill failed", "error", err)
		}
	}
	if len(c.pool) < 2 {
		return 0, false
	}

	hi, lo := c.pool[0], c.pool[1]
	c.pool = c.pool[2:]
	s := hi*(intMax+1) + lo
	if s == 0 {
		return 0, false
	}
	return s, true
}

func (c *Client) refill() error {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateIntegers",
		"params": map[string]any{
			"apiKey": c.apiKey,
			"n":      20,
			"min":    0,
			"max":    intMax,
		},
		"id": 1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := c.client.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	var result struct {
		Result struct {
			Random struct {
				Data []int64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if result.Error != nil {
		return fmt.Errorf("api: %s", result.Error.Message)
	}

	c.pool = append(c.pool, result.Result.Random.Data...)
	slog.Debug("random.org pool refilled", "count", len(result.Result.Random.Data))
	return nil
}

// cryptoSeed draws a non-zero positive seed from crypto/rand.
func cryptoSeed() int64 {
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			// crypto/rand does not fail on supported platforms.
			return time.Now().UnixNano() | 1
		}
		if s := int64(binary.LittleEndian.Uint64(buf[:]) >> 1); s != 0 {
			return s
		}
	}
}
