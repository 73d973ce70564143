// Package scheduler triggers periodic bulk imports on a cron schedule.
package scheduler

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"dealradar/importer"
	"dealradar/notify"
)

// ImportScheduler re-imports the configured URL list on a schedule so
// stale prices get refreshed without manual runs.
type ImportScheduler struct {
	cron     *cron.Cron
	importer *importer.Importer
	notifier *notify.Notifier
	urlsFile string
	spec     string
	running  atomic.Bool
}

func NewImportScheduler(im *importer.Importer, notifier *notify.Notifier, urlsFile, spec string) *ImportScheduler {
	return &ImportScheduler{
		cron:     cron.New(),
		importer: im,
		notifier: notifier,
		urlsFile: urlsFile,
		spec:     spec,
	}
}

// Start registers the cron entry and begins scheduling. Invalid specs
// are reported, not fatal: the API keeps serving without refreshes.
func (s *ImportScheduler) Start() {
	if s.spec == "" {
		log.Info("no import schedule configured, skipping scheduler")
		return
	}
	if _, err := s.cron.AddFunc(s.spec, s.runOnce); err != nil {
		log.WithFields(log.Fields{"spec": s.spec, "error": err}).Error("failed to schedule imports")
		return
	}
	s.cron.Start()
	log.WithField("spec", s.spec).Info("import scheduler started")
}

// Stop halts scheduling. A run already in flight finishes.
func (s *ImportScheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// runOnce refreshes every URL in the list file. Overlapping ticks are
// skipped: a slow proxy chain can outlast a short schedule interval.
func (s *ImportScheduler) runOnce() {
	if !s.running.CompareAndSwap(false, true) {
		log.Warn("previous import still running, skipping this tick")
		return
	}
	defer s.running.Store(false)

	urls, err := readURLList(s.urlsFile)
	if err != nil {
		log.WithFields(log.Fields{"file": s.urlsFile, "error": err}).Error("failed to read import URL list")
		return
	}
	if len(urls) == 0 {
		log.WithField("file", s.urlsFile).Info("import URL list is empty, nothing to do")
		return
	}

	summary := s.importer.Run(context.Background(), urls, "")
	if err := s.notifier.SendImportSummary(summary); err != nil {
		log.WithField("error", err).Warn("summary notification failed")
	}
}

// readURLList loads one URL per line, ignoring blanks and # comments.
func readURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
