package pipeline

import (
	"dealradar/models"
	"dealradar/stores"
)

// KnownProduct is a manually verified product record keyed by short-link
// ID or ASIN. Hits skip fetching entirely and outrank live extraction.
type KnownProduct struct {
	Name          string
	Price         float64
	OriginalPrice float64
	Image         string
	Description   string
}

// knownProducts is a small curated table, not a general mechanism:
// entries are added by hand when a deal has been verified. Keys are
// Amazon ASINs.
var knownProducts = map[string]KnownProduct{
	"B0BDHWDR12": {
		Name:          "Apple AirPods Pro (2nd Generation)",
		Price:         199.99,
		OriginalPrice: 249.99,
		Image:         "https://m.media-amazon.com/images/I/61SUj2aKoEL._AC_SL1500_.jpg",
		Description:   "Active Noise Cancelling wireless earbuds with MagSafe charging case",
	},
	"B09B8V1LZ3": {
		Name:          "Amazon Echo Dot (5th Gen)",
		Price:         27.99,
		OriginalPrice: 49.99,
		Image:         "https://m.media-amazon.com/images/I/71xoR4A6q-L._AC_SL1500_.jpg",
		Description:   "Smart speaker with Alexa, deep bass and improved audio",
	},
	"B0B7BP6CJN": {
		Name:          "Apple Watch Series 8 GPS 41mm",
		Price:         329.00,
		OriginalPrice: 399.00,
		Image:         "https://m.media-amazon.com/images/I/71XCsUkfGaL._AC_SL1500_.jpg",
		Description:   "Aluminium case smartwatch with advanced health sensors",
	},
}

// lookupKnown checks the verified table for the URL's product ID.
func lookupKnown(rawURL string) (KnownProduct, bool) {
	asin := stores.ExtractASIN(rawURL)
	if asin == "" {
		return KnownProduct{}, false
	}
	kp, ok := knownProducts[asin]
	return kp, ok
}

// applyKnown copies a verified entry onto the candidate at the highest
// confidence tier.
func applyKnown(kp KnownProduct, c *models.Candidate) {
	c.Name = kp.Name
	c.ImageURL = kp.Image
	c.Description = kp.Description
	c.SetQuality(models.QualityKnownDatabase)
}
