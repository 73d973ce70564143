// Package importer runs the pipeline over batches of URLs, pacing
// requests so proxy providers and retailers do not throttle the whole
// batch.
package importer

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"dealradar/models"
	"dealradar/pipeline"
	"dealradar/storage"
)

// Summary reports the outcome of one bulk import.
type Summary struct {
	Total    int
	Created  int
	Updated  int
	Failed   int
	Started  time.Time
	Finished time.Time
}

// Importer feeds URLs through the pipeline into a store. Requests are
// spaced by a limiter rather than run concurrently: the providers we
// lean on throttle aggressively, and a batch that trickles through beats
// one that gets the proxy chain banned.
type Importer struct {
	pipeline *pipeline.Pipeline
	store    storage.ProductStore
	mirror   *storage.ImageMirror
	limiter  *rate.Limiter
}

func New(p *pipeline.Pipeline, store storage.ProductStore, mirror *storage.ImageMirror, delay time.Duration) *Importer {
	if delay <= 0 {
		delay = 800 * time.Millisecond
	}
	return &Importer{
		pipeline: p,
		store:    store,
		mirror:   mirror,
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Run imports every URL in order. A failing URL is logged and skipped;
// nothing short of context cancellation stops the loop.
func (im *Importer) Run(ctx context.Context, urls []string, categoryOverride models.Category) Summary {
	summary := Summary{Total: len(urls), Started: time.Now().UTC()}

	for _, u := range urls {
		if err := im.limiter.Wait(ctx); err != nil {
			log.WithField("error", err).Warn("bulk import cancelled")
			break
		}

		product, err := im.pipeline.Run(ctx, u, categoryOverride)
		if err != nil {
			summary.Failed++
			log.WithFields(log.Fields{"url": u, "error": err}).Warn("import failed, continuing with next URL")
			continue
		}

		if im.mirror != nil {
			product.Image = im.mirror.Mirror(ctx, product.Image)
		}

		created, err := im.store.Upsert(ctx, product)
		if err != nil {
			summary.Failed++
			log.WithFields(log.Fields{"url": u, "error": err}).Error("failed to persist product")
			continue
		}
		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	summary.Finished = time.Now().UTC()
	log.WithFields(log.Fields{
		"total":   summary.Total,
		"created": summary.Created,
		"updated": summary.Updated,
		"failed":  summary.Failed,
		"took":    summary.Finished.Sub(summary.Started).Round(time.Millisecond),
	}).Info("bulk import finished")
	return summary
}
