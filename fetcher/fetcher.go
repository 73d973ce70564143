// Package fetcher retrieves product page HTML, trying a direct request
// first and falling back through an ordered chain of public proxy
// relays, with an optional headless-browser tier for sites that only
// render client-side.
package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"dealradar/models"
)

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// minContentLength rejects near-empty bodies: several relays return
// valid-looking empty shells on blocked requests.
const minContentLength = 1000

// Result is a successful fetch plus how it was obtained, which decides
// the record's quality tag downstream.
type Result struct {
	HTML     string
	ViaProxy bool
}

// Config controls fetch behavior.
type Config struct {
	DirectTimeout  time.Duration
	EnableHeadless bool
	Relays         []ProxyRelay
}

// Fetcher tries direct, proxied, and optionally headless retrieval of a
// target page.
type Fetcher struct {
	client   *http.Client
	relays   []ProxyRelay
	headless bool
}

func New(cfg Config) *Fetcher {
	if cfg.DirectTimeout == 0 {
		cfg.DirectTimeout = 10 * time.Second
	}
	if cfg.Relays == nil {
		cfg.Relays = DefaultRelays()
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.DirectTimeout,
			Transport: &http.Transport{
				ForceAttemptHTTP2:     false,
				TLSNextProto:          make(map[string]func(string, *tls.Conn) http.RoundTripper),
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		relays:   cfg.Relays,
		headless: cfg.EnableHeadless,
	}
}

// Fetch retrieves the target page. A direct request is expected to fail
// for bot-protected retailers; that is a known limitation, not a bug,
// and simply advances the chain. All tiers failing returns
// models.ErrFetchExhausted, which callers recover from by degrading to
// URL heuristics.
func (f *Fetcher) Fetch(ctx context.Context, target string) (Result, error) {
	html, err := f.fetchDirect(ctx, target)
	if err == nil {
		if ok, reason := usableHTML(html); ok {
			log.WithField("url", target).Debug("direct fetch succeeded")
			return Result{HTML: html}, nil
		} else {
			log.WithFields(log.Fields{"url": target, "reason": reason}).Debug("direct fetch returned unusable content")
		}
	} else {
		log.WithFields(log.Fields{"url": target, "error": err}).Debug("direct fetch failed")
	}

	for _, relay := range f.relays {
		relayCtx, cancel := context.WithTimeout(ctx, relay.Timeout())
		html, err := relay.FetchHTML(relayCtx, f.client, target)
		cancel()
		if err != nil {
			log.WithFields(log.Fields{
				"url":   target,
				"proxy": relay.Name(),
				"error": classifyFetchErr(err),
			}).Debug("proxy fetch failed")
			continue
		}
		if ok, reason := usableHTML(html); !ok {
			log.WithFields(log.Fields{
				"url":    target,
				"proxy":  relay.Name(),
				"reason": reason,
			}).Debug("proxy returned unusable content")
			continue
		}
		log.WithFields(log.Fields{"url": target, "proxy": relay.Name()}).Debug("proxy fetch succeeded")
		return Result{HTML: html, ViaProxy: true}, nil
	}

	if f.headless {
		html, err := f.fetchHeadless(ctx, target)
		if err == nil {
			if ok, _ := usableHTML(html); ok {
				return Result{HTML: html, ViaProxy: true}, nil
			}
		} else {
			log.WithFields(log.Fields{"url": target, "error": err}).Debug("headless fetch failed")
		}
	}

	return Result{}, fmt.Errorf("fetching %s: %w", target, models.ErrFetchExhausted)
}

func (f *Fetcher) fetchDirect(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}

	// Browser headers to avoid immediate blocking.
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "cross-site")

	res, err := f.client.Do(req)
	if err != nil {
		return "", classifyFetchErr(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("status %d: %w", res.StatusCode, models.ErrFetchBlocked)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status code error: %d %s", res.StatusCode, res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// usableHTML rejects near-empty shells and block pages before they reach
// the extractors.
func usableHTML(html string) (bool, string) {
	if len(html) < minContentLength {
		return false, fmt.Sprintf("body too small (%d bytes)", len(html))
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false, "unparseable html"
	}
	title := strings.ToLower(strings.TrimSpace(doc.Find("title").Text()))
	for _, marker := range []string{"robot check", "captcha", "access denied", "request blocked"} {
		if strings.Contains(title, marker) {
			return false, "block page: " + marker
		}
	}
	return true, ""
}

func classifyFetchErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, models.ErrFetchTimeout)
	}
	return err
}

// ResolveShortenedURL follows redirects (amzn.to, ebay.us and friends)
// to the canonical product URL. On any failure the original URL is
// returned so detection can still run on it.
func (f *Fetcher) ResolveShortenedURL(ctx context.Context, rawURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return rawURL
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.client.Do(req)
	if err != nil || resp.StatusCode >= 400 {
		// Some servers refuse HEAD; retry with GET before giving up.
		if resp != nil {
			resp.Body.Close()
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return rawURL
		}
		req.Header.Set("User-Agent", browserUserAgent)
		resp, err = f.client.Do(req)
		if err != nil {
			return rawURL
		}
	}
	defer resp.Body.Close()
	return resp.Request.URL.String()
}
