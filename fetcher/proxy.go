package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ProxyRelay is one public CORS/relay service able to fetch a URL
// server-side. Each relay wraps the target URL its own way and returns
// its own response envelope, so each implementation both builds the
// request and unwraps the body.
type ProxyRelay interface {
	Name() string
	Timeout() time.Duration
	FetchHTML(ctx context.Context, client *http.Client, target string) (string, error)
}

// DefaultRelays is the chain tried in order after a direct fetch fails.
// Ordering reflects observed reliability, fastest and least throttled
// first.
func DefaultRelays() []ProxyRelay {
	return []ProxyRelay{
		allOriginsRelay{},
		corsProxyRelay{},
		codeTabsRelay{},
	}
}

// allOriginsRelay wraps api.allorigins.win, which returns a JSON
// envelope {"contents": "<html>", "status": {...}}.
type allOriginsRelay struct{}

func (allOriginsRelay) Name() string           { return "allorigins" }
func (allOriginsRelay) Timeout() time.Duration { return 10 * time.Second }

func (r allOriginsRelay) FetchHTML(ctx context.Context, client *http.Client, target string) (string, error) {
	endpoint := "https://api.allorigins.win/get?url=" + url.QueryEscape(target)
	body, err := relayGet(ctx, client, endpoint)
	if err != nil {
		return "", err
	}

	var envelope struct {
		Contents string `json:"contents"`
		Status   struct {
			HTTPCode int `json:"http_code"`
		} `json:"status"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("%s: malformed envelope: %w", r.Name(), err)
	}
	if envelope.Status.HTTPCode >= 400 && envelope.Status.HTTPCode != 0 {
		return "", fmt.Errorf("%s: upstream status %d", r.Name(), envelope.Status.HTTPCode)
	}
	return envelope.Contents, nil
}

// corsProxyRelay wraps corsproxy.io, which returns the raw target body.
type corsProxyRelay struct{}

func (corsProxyRelay) Name() string           { return "corsproxy" }
func (corsProxyRelay) Timeout() time.Duration { return 8 * time.Second }

func (r corsProxyRelay) FetchHTML(ctx context.Context, client *http.Client, target string) (string, error) {
	endpoint := "https://corsproxy.io/?" + url.QueryEscape(target)
	body, err := relayGet(ctx, client, endpoint)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// codeTabsRelay wraps api.codetabs.com, also a raw passthrough. Slowest
// of the chain but tolerant of retail sites the others refuse.
type codeTabsRelay struct{}

func (codeTabsRelay) Name() string           { return "codetabs" }
func (codeTabsRelay) Timeout() time.Duration { return 15 * time.Second }

func (r codeTabsRelay) FetchHTML(ctx context.Context, client *http.Client, target string) (string, error) {
	endpoint := "https://api.codetabs.com/v1/proxy?quest=" + url.QueryEscape(target)
	body, err := relayGet(ctx, client, endpoint)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func relayGet(ctx context.Context, client *http.Client, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code error: %d %s", res.StatusCode, res.Status)
	}
	return io.ReadAll(res.Body)
}
