// Package extract pulls best-effort product fields out of fetched HTML
// using per-store selector cascades with meta-tag and body-text
// fallbacks.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"dealradar/models"
)

const (
	minNameLength = 4
	// Prices outside this range in free-text scanning are treated as
	// noise (SKU fragments, view counts, shipping weights).
	minPlausiblePrice = 1.0
	maxPlausiblePrice = 10000.0
)

var reHasDigit = regexp.MustCompile(`\d`)
var reCurrency = regexp.MustCompile(`[$€£]|\bUSD\b`)

// reBodyPrice matches dollar-formatted amounts in page text, used as the
// last-resort price tier.
var reBodyPrice = regexp.MustCompile(`\$\s?(\d{1,5}(?:,\d{3})*(?:\.\d{1,2})?)`)

// plausibleName rejects empty and junk matches (navigation fragments,
// lone symbols).
func plausibleName(s string) bool {
	return len(strings.TrimSpace(s)) >= minNameLength
}

// plausiblePriceText accepts any text carrying a currency marker or a
// digit run; numeric validation happens later in normalize.
func plausiblePriceText(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return reCurrency.MatchString(s) || reHasDigit.MatchString(s)
}

// selectFirst walks one selector cascade and returns the first value
// that is non-empty and passes check.
func selectFirst(doc *goquery.Document, cascade []Selector, check func(string) bool) string {
	for _, sel := range cascade {
		var val string
		if sel.Attr == "" {
			val = doc.Find(sel.Query).First().Text()
		} else {
			val = doc.Find(sel.Query).First().AttrOr(sel.Attr, "")
		}
		val = strings.TrimSpace(val)
		if val != "" && (check == nil || check(val)) {
			return val
		}
	}
	return ""
}

// Fields runs the store-specific cascade, then the generic meta-tag
// tier, then body-text price scanning, writing each candidate field at
// most once. Missing fields are left empty rather than failing; the
// assembler decides whether the result is usable.
func Fields(doc *goquery.Document, store models.StoreTag, c *models.Candidate) {
	tables := []FieldSelectors{}
	if t, ok := storeSelectors[store]; ok {
		tables = append(tables, t)
	}
	tables = append(tables, genericSelectors)

	for _, t := range tables {
		if c.Name == "" {
			c.Name = selectFirst(doc, t.Name, plausibleName)
		}
		if c.PriceText == "" {
			c.PriceText = selectFirst(doc, t.Price, plausiblePriceText)
		}
		if c.OriginalPriceText == "" {
			c.OriginalPriceText = selectFirst(doc, t.OriginalPrice, plausiblePriceText)
		}
		if c.ImageURL == "" {
			c.ImageURL = selectFirst(doc, t.Image, nil)
		}
		if c.Description == "" {
			c.Description = selectFirst(doc, t.Description, nil)
		}
	}

	if c.PriceText == "" {
		c.PriceText = bodyPrice(doc)
		if c.PriceText != "" {
			log.WithFields(log.Fields{
				"url":   c.SourceURL,
				"price": c.PriceText,
			}).Debug("price recovered from body text scan")
		}
	}
}

// bodyPrice scans the raw page text for the first currency-formatted
// amount in the plausible range. Blocked-request shells and cookie
// banners rarely contain dollar amounts, so a hit here is usually real.
func bodyPrice(doc *goquery.Document) string {
	body := doc.Find("body").Text()
	for _, m := range reBodyPrice.FindAllStringSubmatch(body, 25) {
		digits := strings.ReplaceAll(m[1], ",", "")
		if v, err := strconv.ParseFloat(digits, 64); err == nil && v >= minPlausiblePrice && v <= maxPlausiblePrice {
			return "$" + m[1]
		}
	}
	return ""
}
