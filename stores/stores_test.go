package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dealradar/models"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want models.StoreTag
	}{
		{"amazon com", "https://www.amazon.com/dp/B0BDHWDR12", models.StoreAmazon},
		{"amazon ca", "https://www.amazon.ca/gp/product/B09B8V1LZ3", models.StoreAmazon},
		{"amazon shortlink", "https://amzn.to/3xYz", models.StoreAmazon},
		{"amazon a.co shortlink", "https://a.co/d/abc123", models.StoreAmazon},
		{"walmart", "https://www.walmart.com/ip/Instant-Pot/55501211", models.StoreWalmart},
		{"walmart canada", "https://www.walmart.ca/en/ip/something/6000191", models.StoreWalmart},
		{"target", "https://www.target.com/p/airpods/-/A-85978612", models.StoreTarget},
		{"home depot", "https://www.homedepot.com/p/DEWALT-Drill/305063243", models.StoreHomeDepot},
		{"ebay", "https://www.ebay.com/itm/234567890123", models.StoreEbay},
		{"ebay shortlink", "https://ebay.us/AbCdEf", models.StoreEbay},
		{"unknown retailer", "https://www.bestbuy.com/site/product/123.p", models.StoreUnknown},
		{"not a url", "hello world", models.StoreUnknown},
		{"empty", "", models.StoreUnknown},
		{"uppercase host", "HTTPS://WWW.AMAZON.COM/dp/B0BDHWDR12", models.StoreAmazon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.url))
		})
	}
}

func TestDetectIdempotent(t *testing.T) {
	url := "https://www.walmart.com/ip/foo/123"
	first := Detect(url)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Detect(url))
	}
}

func TestExtractASIN(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"dp path", "https://www.amazon.com/Apple-AirPods-Pro/dp/B0BDHWDR12", "B0BDHWDR12"},
		{"dp with query", "https://www.amazon.com/dp/B0BDHWDR12?ref=nav", "B0BDHWDR12"},
		{"gp product path", "https://www.amazon.com/gp/product/B09B8V1LZ3", "B09B8V1LZ3"},
		{"no asin", "https://www.amazon.com/s?k=airpods", ""},
		{"lowercase id rejected", "https://www.amazon.com/dp/b0bdhwdr12", ""},
		{"short id rejected", "https://www.amazon.com/dp/B0BDH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractASIN(tt.url))
		})
	}
}

func TestExtractEbayItemID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain item id", "https://www.ebay.com/itm/234567890123", "234567890123"},
		{"slug before id", "https://www.ebay.com/itm/apple-airpods-pro/234567890123", "234567890123"},
		{"with query", "https://www.ebay.com/itm/234567890123?hash=abc", "234567890123"},
		{"too short", "https://www.ebay.com/itm/1234", ""},
		{"search page", "https://www.ebay.com/sch/i.html?_nkw=airpods", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEbayItemID(tt.url))
		})
	}
}
