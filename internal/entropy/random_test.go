package entropy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSeedWithoutClient(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 50; i++ {
		s := Seed(nil)
		if s <= 0 {
			t.Fatalf("Seed(nil) = %d, want positive", s)
		}
		seen[s] = true
	}
	if len(seen) < 45 {
		t.Errorf("Seed(nil) produced only %d distinct values in 50 draws", len(seen))
	}
}

func TestNewClientEmptyKey(t *testing.T) {
	if c := NewClient(""); c != nil {
		t.Errorf("NewClient(\"\") = %v, want nil", c)
	}
	var c *Client
	if c.Enabled() {
		t.Error("nil client reports enabled")
	}
}

func TestSeedFromRandomOrg(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req struct {
			Method string         `json:"method"`
			Params map[string]any `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Method != "generateIntegers" {
			t.Errorf("method = %q, want generateIntegers", req.Method)
		}
		w.Write([]byte(`{"result":{"random":{"data":[1,2,3,4]}}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.endpoint = srv.URL

	if got, want := Seed(c), int64(1*(intMax+1)+2); got != want {
		t.Errorf("first Seed = %d, want %d", got, want)
	}
	if got, want := Seed(c), int64(3*(intMax+1)+4); got != want {
		t.Errorf("second Seed = %d, want %d", got, want)
	}
	if calls != 1 {
		t.Errorf("random.org called %d times, want 1", calls)
	}
}

func TestSeedFallsBackOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.endpoint = srv.URL

	if s := Seed(c); s <= 0 {
		t.Errorf("Seed = %d after API error, want positive fallback", s)
	}
}
