package importer

import (
	"net/url"
	"regexp"
	"time"

	"github.com/gocolly/colly/v2"
	log "github.com/sirupsen/logrus"

	"dealradar/models"
	"dealradar/stores"
)

// productLinkPatterns recognize product-detail URLs per retailer; deal
// listing pages link to hundreds of non-product pages we must not feed
// into the pipeline.
var productLinkPatterns = map[models.StoreTag]*regexp.Regexp{
	models.StoreAmazon:    regexp.MustCompile(`/dp/[A-Z0-9]{10}`),
	models.StoreWalmart:   regexp.MustCompile(`/ip/`),
	models.StoreTarget:    regexp.MustCompile(`/p/`),
	models.StoreHomeDepot: regexp.MustCompile(`/p/`),
	models.StoreEbay:      regexp.MustCompile(`/itm/`),
}

// Crawler discovers product URLs from retailer listing/deal pages to
// feed the bulk importer.
type Crawler struct {
	delay    time.Duration
	maxLinks int
}

func NewCrawler(delay time.Duration, maxLinks int) *Crawler {
	if delay <= 0 {
		delay = time.Second
	}
	if maxLinks <= 0 {
		maxLinks = 50
	}
	return &Crawler{delay: delay, maxLinks: maxLinks}
}

// CollectProductLinks visits one listing page and returns the distinct
// product-detail URLs found on it, capped at maxLinks.
func (c *Crawler) CollectProductLinks(listingURL string) ([]string, error) {
	seed, err := url.Parse(listingURL)
	if err != nil {
		return nil, err
	}
	store := stores.Detect(listingURL)
	pattern, ok := productLinkPatterns[store]
	if !ok {
		// Unknown storefronts: accept any same-host link that looks
		// like a detail page.
		pattern = regexp.MustCompile(`/(product|item|p|dp|itm)/`)
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(seed.Hostname()),
		colly.MaxDepth(1),
	)
	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       c.delay,
	}); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var links []string

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if len(links) >= c.maxLinks {
			return
		}
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" || !pattern.MatchString(link) {
			return
		}
		// Dedup ignoring tracking query params.
		canonical := link
		if u, err := url.Parse(link); err == nil {
			u.RawQuery = ""
			u.Fragment = ""
			canonical = u.String()
		}
		if seen[canonical] {
			return
		}
		seen[canonical] = true
		links = append(links, canonical)
	})

	collector.OnError(func(r *colly.Response, err error) {
		log.WithFields(log.Fields{
			"url":         r.Request.URL.String(),
			"status_code": r.StatusCode,
			"error":       err,
		}).Warn("listing page request failed")
	})

	if err := collector.Visit(listingURL); err != nil {
		return nil, err
	}
	collector.Wait()

	log.WithFields(log.Fields{"listing": listingURL, "links": len(links)}).Info("collected product links")
	return links, nil
}
