package fetcher

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"dealradar/models"
	"dealradar/normalize"
)

const (
	ebayTokenURL  = "https://api.ebay.com/identity/v1/oauth2/token"
	ebayBrowseURL = "https://api.ebay.com/buy/browse/v1/item/get_item_by_legacy_id"
	ebayScope     = "https://api.ebay.com/oauth/api_scope"
)

// EbayClient is the authenticated-API path for eBay listings, distinct
// from the public-page scrape path. When credentials are configured the
// pipeline prefers it: structured JSON beats selector scraping.
type EbayClient struct {
	appID  string
	certID string
	client *http.Client
	tokens *TokenCache
}

// NewEbayClient builds a client with a client-credentials token cache.
// Returns nil when either credential is missing, which callers treat as
// "API path unavailable".
func NewEbayClient(appID, certID string) *EbayClient {
	if appID == "" || certID == "" {
		return nil
	}
	c := &EbayClient{
		appID:  appID,
		certID: certID,
		client: &http.Client{Timeout: 15 * time.Second},
	}
	c.tokens = NewTokenCache(c.requestToken)
	return c
}

// requestToken exchanges the app credentials for a bearer token with a
// TTL. A simple HTTP call, not an interactive OAuth flow.
func (c *EbayClient) requestToken(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", ebayScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ebayTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.appID + ":" + c.certID))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return "", 0, fmt.Errorf("ebay token endpoint returned %d: %s", res.StatusCode, string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", 0, err
	}
	if payload.AccessToken == "" {
		return "", 0, fmt.Errorf("ebay token endpoint returned an empty token")
	}
	return payload.AccessToken, time.Duration(payload.ExpiresIn) * time.Second, nil
}

type ebayItem struct {
	Title string `json:"title"`
	Price struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"price"`
	MarketingPrice struct {
		OriginalPrice struct {
			Value string `json:"value"`
		} `json:"originalPrice"`
	} `json:"marketingPrice"`
	Image struct {
		ImageURL string `json:"imageUrl"`
	} `json:"image"`
	ShortDescription string `json:"shortDescription"`
}

// Lookup fills the candidate from the Browse API by legacy item ID.
// Retries once with a forced token refresh on 401.
func (c *EbayClient) Lookup(ctx context.Context, itemID string, cand *models.Candidate) error {
	item, err := c.getItem(ctx, itemID, false)
	if err != nil {
		return err
	}

	cand.Name = normalize.CleanText(item.Title)
	cand.PriceText = item.Price.Value
	cand.OriginalPriceText = item.MarketingPrice.OriginalPrice.Value
	cand.ImageURL = item.Image.ImageURL
	cand.Description = normalize.CleanText(item.ShortDescription)
	cand.SetQuality(models.QualityRealTime)

	log.WithFields(log.Fields{"itemId": itemID, "title": cand.Name}).Debug("ebay browse api hit")
	return nil
}

func (c *EbayClient) getItem(ctx context.Context, itemID string, forceToken bool) (*ebayItem, error) {
	var token string
	var err error
	if forceToken {
		token, err = c.tokens.ForceRefresh(ctx)
	} else {
		token, err = c.tokens.Get(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("ebay auth: %w", err)
	}

	endpoint := ebayBrowseURL + "?legacy_item_id=" + url.QueryEscape(itemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", "EBAY_US")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized && !forceToken {
		return c.getItem(ctx, itemID, true)
	}
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("ebay browse api returned %d: %s", res.StatusCode, string(body))
	}

	var item ebayItem
	if err := json.NewDecoder(res.Body).Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}
