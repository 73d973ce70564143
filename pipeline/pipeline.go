// Package pipeline assembles finished product records from retailer
// URLs: detection, fetching, extraction, normalization, classification
// and quality tagging, with fallback tiers for every network failure.
package pipeline

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"dealradar/classify"
	"dealradar/extract"
	"dealradar/fetcher"
	"dealradar/models"
	"dealradar/normalize"
	"dealradar/stores"
)

// PlaceholderImage is substituted when no image survives extraction and
// resolution.
const PlaceholderImage = "https://via.placeholder.com/400x400?text=No+Image"

// Stage names the pipeline's forward-only states. A run moves strictly
// left to right; Degraded is the parallel branch entered when fetching
// fails.
type Stage string

const (
	StageInit        Stage = "init"
	StageDetecting   Stage = "detecting"
	StageFetching    Stage = "fetching"
	StageExtracting  Stage = "extracting"
	StageDegraded    Stage = "degraded"
	StageNormalizing Stage = "normalizing"
	StageClassifying Stage = "classifying"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// Pipeline runs single product extractions. One invocation is
// sequential; it holds no per-run state, so a Pipeline is safe for
// concurrent callers.
type Pipeline struct {
	fetcher *fetcher.Fetcher
	ebay    *fetcher.EbayClient
	gemini  *classify.GeminiClassifier
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithEbayClient enables the authenticated eBay Browse API path.
func WithEbayClient(c *fetcher.EbayClient) Option {
	return func(p *Pipeline) { p.ebay = c }
}

// WithGeminiClassifier enables the AI fallback when the keyword table
// yields no category.
func WithGeminiClassifier(g *classify.GeminiClassifier) Option {
	return func(p *Pipeline) { p.gemini = g }
}

func New(f *fetcher.Fetcher, opts ...Option) *Pipeline {
	p := &Pipeline{fetcher: f}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var reShortLink = regexp.MustCompile(`amzn\.(to|in|eu)|a\.co/|ebay\.us/|bit\.ly|tinyurl`)

// Run extracts one product. categoryOverride, when non-empty, skips
// classification. The only fatal outcome is failing to produce a name
// even from URL text; every network failure degrades instead.
func (p *Pipeline) Run(ctx context.Context, rawURL string, categoryOverride models.Category) (*models.Product, error) {
	run := &runState{stage: StageInit, url: rawURL}

	run.advance(StageDetecting)
	target := strings.TrimSpace(rawURL)
	if reShortLink.MatchString(target) {
		target = p.fetcher.ResolveShortenedURL(ctx, target)
	}

	cand := &models.Candidate{SourceURL: target}
	cand.Store = stores.Detect(target)
	if cand.Store == models.StoreUnknown {
		// DetectionUnknown is non-fatal: generic extractors apply.
		log.WithField("url", target).Debug("store not recognized, using generic extraction")
	}

	// Verified table wins over live extraction.
	if kp, ok := lookupKnown(target); ok {
		applyKnown(kp, cand)
		run.advance(StageNormalizing)
		return p.finish(ctx, run, cand, kp.Price, &kp.OriginalPrice, categoryOverride)
	}

	// Authenticated API path for eBay listings, when configured.
	if cand.Store == models.StoreEbay && p.ebay != nil {
		if itemID := stores.ExtractEbayItemID(target); itemID != "" {
			if err := p.ebay.Lookup(ctx, itemID, cand); err == nil {
				return p.normalizeAndFinish(ctx, run, cand, models.QualityRealTime, categoryOverride)
			} else {
				log.WithFields(log.Fields{"url": target, "error": err}).Debug("ebay api path failed, falling back to scrape")
			}
		}
	}

	run.advance(StageFetching)
	res, err := p.fetcher.Fetch(ctx, target)
	if err != nil {
		// FetchExhausted: recoverable. Skip straight to URL-text
		// extraction rather than aborting the product addition.
		run.advance(StageDegraded)
		extract.FromURL(cand)
		return p.normalizeAndFinish(ctx, run, cand, models.QualityURLHeuristic, categoryOverride)
	}

	run.advance(StageExtracting)
	cand.RawHTML = res.HTML
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.HTML))
	if err != nil {
		run.advance(StageDegraded)
		extract.FromURL(cand)
		return p.normalizeAndFinish(ctx, run, cand, models.QualityURLHeuristic, categoryOverride)
	}
	extract.Fields(doc, cand.Store, cand)

	earned := models.QualityBasicFallback
	if cand.Name != "" && cand.PriceText != "" {
		if res.ViaProxy {
			earned = models.QualityProxy
		} else {
			earned = models.QualityRealTime
		}
	} else {
		// ExtractionIncomplete: still emit a record, at the lowest
		// confidence tier, topping up missing fields from the URL.
		log.WithFields(log.Fields{
			"url":      target,
			"hasName":  cand.Name != "",
			"hasPrice": cand.PriceText != "",
		}).Debug("extraction incomplete after all selector tiers")
		if cand.Name == "" {
			cand.Name = extract.NameFromURL(target)
		}
	}

	return p.normalizeAndFinish(ctx, run, cand, earned, categoryOverride)
}

// normalizeAndFinish converts the accumulated candidate strings into
// canonical numeric fields and hands off to finish. The earned tier is
// only committed here, after price parsing has confirmed it; SetQuality
// keeps the tag monotonic when a higher tier was already recorded.
func (p *Pipeline) normalizeAndFinish(ctx context.Context, run *runState, cand *models.Candidate, earned models.QualityTag, override models.Category) (*models.Product, error) {
	run.advance(StageNormalizing)

	price, ok := normalize.ParsePrice(cand.PriceText)
	if !ok {
		// Extraction never reports success without a price: use the
		// deterministic placeholder sentinel.
		price = extract.PlaceholderPrice(cand.SourceURL)
		if earned.Rank() > models.QualityURLHeuristic.Rank() {
			earned = models.QualityBasicFallback
		}
	}
	cand.SetQuality(earned)

	var originalPrice *float64
	if v, ok := normalize.ParsePrice(cand.OriginalPriceText); ok && v > price {
		originalPrice = &v
	}

	return p.finish(ctx, run, cand, price, originalPrice, override)
}

// finish classifies, validates price relationships and emits the
// immutable record.
func (p *Pipeline) finish(ctx context.Context, run *runState, cand *models.Candidate, price float64, originalPrice *float64, override models.Category) (*models.Product, error) {
	cand.Name = normalize.CleanText(cand.Name)
	if cand.Name == "" {
		run.advance(StageFailed)
		return nil, fmt.Errorf("extracting %s: %w", cand.SourceURL, models.ErrExtractionFailed)
	}

	run.advance(StageClassifying)
	category := override
	if category == "" {
		category = classify.Classify(cand.Name, cand.Description)
		if category == models.CategoryOther && p.gemini != nil {
			if aiCat, err := p.gemini.Classify(ctx, cand.Name, cand.Description); err == nil {
				category = aiCat
			}
		}
	}

	if originalPrice != nil && *originalPrice <= price {
		originalPrice = nil
	}

	image := normalize.ResolveImageURL(cand.ImageURL, cand.SourceURL)
	if image == "" {
		image = PlaceholderImage
	}

	product := &models.Product{
		ID:              productID(cand.Store, cand.SourceURL),
		Name:            cand.Name,
		Price:           normalize.Round2(price),
		OriginalPrice:   originalPrice,
		DiscountPercent: normalize.DiscountPercent(price, originalPrice),
		Image:           image,
		Store:           cand.Store,
		Category:        category,
		Description:     normalize.CleanText(cand.Description),
		SourceURL:       cand.SourceURL,
		Quality:         cand.Quality,
		CreatedAt:       time.Now().UTC(),
	}

	run.advance(StageDone)
	log.WithFields(log.Fields{
		"url":     cand.SourceURL,
		"store":   cand.Store,
		"quality": cand.Quality,
		"price":   product.Price,
	}).Info("product extracted")
	return product, nil
}

// productID derives a stable ID from store and URL so re-importing the
// same product dedupes instead of duplicating.
func productID(store models.StoreTag, rawURL string) string {
	h := fnv.New64a()
	h.Write([]byte(rawURL))
	return fmt.Sprintf("%s-%x", store, h.Sum64())
}

// runState tracks the forward-only stage progression for logging.
type runState struct {
	stage Stage
	url   string
}

func (r *runState) advance(next Stage) {
	log.WithFields(log.Fields{"url": r.url, "from": r.stage, "to": next}).Trace("pipeline stage")
	r.stage = next
}
