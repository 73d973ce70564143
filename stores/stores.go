// Package stores classifies product URLs into known retailer tags.
package stores

import (
	"regexp"
	"strings"

	"dealradar/models"
)

// storePattern pairs a retailer tag with the host/path patterns that
// identify it. Order matters: the first matching entry wins.
type storePattern struct {
	tag      models.StoreTag
	patterns []*regexp.Regexp
}

var storePatterns = []storePattern{
	{
		tag: models.StoreAmazon,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`amazon\.(com|ca|co\.uk|de|in|com\.au)`),
			regexp.MustCompile(`amzn\.(to|in|eu)`),
			regexp.MustCompile(`a\.co/`),
		},
	},
	{
		tag: models.StoreWalmart,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`walmart\.(com|ca)`),
		},
	},
	{
		tag: models.StoreTarget,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`target\.com`),
		},
	},
	{
		tag: models.StoreHomeDepot,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`homedepot\.(com|ca)`),
		},
	},
	{
		tag: models.StoreEbay,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`ebay\.(com|ca|co\.uk|de)`),
			regexp.MustCompile(`ebay\.us/`),
		},
	},
}

// Detect maps a URL to a retailer tag. Total and idempotent: every input
// yields exactly one tag, unrecognized domains yield StoreUnknown.
func Detect(rawURL string) models.StoreTag {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	for _, sp := range storePatterns {
		for _, re := range sp.patterns {
			if re.MatchString(u) {
				return sp.tag
			}
		}
	}
	return models.StoreUnknown
}

var asinPattern = regexp.MustCompile(`(?:/dp/|/gp/product/|/product/)([A-Z0-9]{10})`)

// ExtractASIN pulls the 10-character Amazon product identifier out of an
// Amazon URL, or returns "" if none is present.
func ExtractASIN(rawURL string) string {
	m := asinPattern.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

var ebayItemPattern = regexp.MustCompile(`/itm/(?:[^/]+/)?(\d{9,15})`)

// ExtractEbayItemID pulls the numeric listing ID out of an eBay item URL.
func ExtractEbayItemID(rawURL string) string {
	m := ebayItemPattern.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
