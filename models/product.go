package models

import "time"

// StoreTag identifies the retailer a URL belongs to.
type StoreTag string

const (
	StoreAmazon    StoreTag = "amazon"
	StoreWalmart   StoreTag = "walmart"
	StoreTarget    StoreTag = "target"
	StoreHomeDepot StoreTag = "homedepot"
	StoreEbay      StoreTag = "ebay"
	StoreUnknown   StoreTag = "unknown"
)

// QualityTag labels which extraction tier actually produced a record.
type QualityTag string

const (
	QualityKnownDatabase QualityTag = "known-database"
	QualityRealTime      QualityTag = "real-time-scrape"
	QualityProxy         QualityTag = "proxy-scrape"
	QualityURLHeuristic  QualityTag = "url-heuristic"
	QualityBasicFallback QualityTag = "basic-fallback"
)

// qualityRank orders tags by confidence, highest first.
var qualityRank = map[QualityTag]int{
	QualityKnownDatabase: 5,
	QualityRealTime:      4,
	QualityProxy:         3,
	QualityURLHeuristic:  2,
	QualityBasicFallback: 1,
}

// Rank returns the confidence rank of a quality tag (higher is better).
// Unknown tags rank below every defined tier.
func (q QualityTag) Rank() int {
	return qualityRank[q]
}

// Category is one entry of the fixed product taxonomy.
type Category string

const (
	CategoryElectronics    Category = "electronics"
	CategoryFashion        Category = "fashion"
	CategoryHome           Category = "home"
	CategoryKitchen        Category = "kitchen"
	CategorySportsOutdoors Category = "sports-outdoors"
	CategoryHealthWellness Category = "health-wellness"
	CategoryToolsHardware  Category = "tools-hardware"
	CategoryGarden         Category = "garden"
	CategoryAutomotive     Category = "automotive"
	CategoryBooks          Category = "books"
	CategoryToysGames      Category = "toys-games"
	CategoryBeauty         Category = "beauty"
	CategoryJewelry        Category = "jewelry"
	CategoryOffice         Category = "office"
	CategoryBaby           Category = "baby"
	CategoryPets           Category = "pets"
	CategoryOther          Category = "other"
)

// Candidate is the mutable accumulator a pipeline run fills in stage by
// stage. Extractors write each field at most once; the first non-empty
// match wins and is never overwritten.
type Candidate struct {
	SourceURL         string
	Store             StoreTag
	RawHTML           string
	Name              string
	PriceText         string
	OriginalPriceText string
	ImageURL          string
	Description       string
	Category          Category
	Quality           QualityTag
}

// SetQuality records which fallback tier produced usable data. The tag is
// monotonic within one run: a higher-confidence value is never replaced
// by a lower one.
func (c *Candidate) SetQuality(q QualityTag) {
	if q.Rank() > c.Quality.Rank() {
		c.Quality = q
	}
}

// Product is the finished, immutable extraction result handed to callers.
type Product struct {
	ID              string     `json:"id" bson:"_id"`
	Name            string     `json:"name" bson:"name"`
	Price           float64    `json:"price" bson:"price"`
	OriginalPrice   *float64   `json:"originalPrice" bson:"originalPrice"`
	DiscountPercent *int       `json:"discountPercent" bson:"discountPercent"`
	Image           string     `json:"image" bson:"image"`
	Store           StoreTag   `json:"store" bson:"store"`
	Category        Category   `json:"category" bson:"category"`
	Description     string     `json:"description" bson:"description"`
	SourceURL       string     `json:"sourceUrl" bson:"sourceUrl"`
	Quality         QualityTag `json:"qualityTag" bson:"qualityTag"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
}
