// Package normalize cleans raw extracted strings into canonical forms:
// numeric prices, absolute image URLs, discount percentages.
package normalize

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var rePriceChars = regexp.MustCompile(`[^0-9.]`)

// ParsePrice cleans a scraped price string ("$1,299.99", "US $45.00",
// "Now 19.99") into a 2-decimal value. Returns (0, false) when the text
// does not parse or parses to a non-positive amount.
func ParsePrice(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = rePriceChars.ReplaceAllString(s, "")

	// Keep only the first decimal point; trailing dots come from ranges
	// like "19.99.29.99" that some listing pages concatenate.
	if i := strings.Index(s, "."); i >= 0 {
		s = s[:i+1] + strings.ReplaceAll(s[i+1:], ".", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v <= 0 {
		return 0, false
	}
	return Round2(v), true
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ResolveImageURL turns a possibly relative image path into an absolute
// URL against the page it was scraped from. Returns "" when resolution
// fails; callers substitute a placeholder.
func ResolveImageURL(imageURL, pageURL string) string {
	img := strings.TrimSpace(imageURL)
	if img == "" {
		return ""
	}
	// Protocol-relative URLs are common in og:image tags.
	if strings.HasPrefix(img, "//") {
		return "https:" + img
	}
	u, err := url.Parse(img)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return img
	}
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		return ""
	}
	return base.ResolveReference(u).String()
}

// DiscountPercent computes the rounded discount of price against
// originalPrice. Returns nil unless both prices are known and the
// original is strictly higher, so the result is always in [0,100] and
// never negative.
func DiscountPercent(price float64, originalPrice *float64) *int {
	if originalPrice == nil || price <= 0 || *originalPrice <= price {
		return nil
	}
	d := int(math.Round(100 * (*originalPrice - price) / *originalPrice))
	if d < 0 {
		d = 0
	}
	if d > 100 {
		d = 100
	}
	return &d
}

var reWhitespace = regexp.MustCompile(`\s+`)

// CleanText collapses runs of whitespace and trims the result. Scraped
// titles routinely carry newlines and indent from the page markup.
func CleanText(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}
