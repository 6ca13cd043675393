package scraping

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/oss-radar/app/signal"
)

// Source statuses reported per platform after a collection run.
const (
	StatusOK     = "ok"
	StatusEmpty  = "empty"
	StatusFailed = "failed"
)

// Scraper is one platform's post source.
type Scraper interface {
	Platform() string
	Scrape(ctx context.Context) ([]*signal.Post, error)
}

// SourceStatus records how one platform fared during a collection run.
type SourceStatus struct {
	Platform string
	Status   string
	Posts    int
	Err      error
}

// Collector fans a run out across all configured scrapers. One platform
// failing never aborts the run; its status is recorded and the remaining
// platforms still contribute posts.
type Collector struct {
	scrapers  []Scraper
	extractor *ContentExtractor
}

// NewCollector builds a collector. The extractor may be nil to skip body
// enrichment of link-only posts.
func NewCollector(scrapers []Scraper, extractor *ContentExtractor) *Collector {
	return &Collector{scrapers: scrapers, extractor: extractor}
}

// Collect runs every scraper and returns the combined posts plus a status
// per platform.
func (c *Collector) Collect(ctx context.Context) ([]*signal.Post, []SourceStatus) {
	var posts []*signal.Post
	statuses := make([]SourceStatus, 0, len(c.scrapers))

	for _, scraper := range c.scrapers {
		scraped, err := scraper.Scrape(ctx)
		status := SourceStatus{Platform: scraper.Platform(), Posts: len(scraped)}

		switch {
		case err != nil:
			status.Status = StatusFailed
			status.Err = err
			slog.Error("Scrape failed", "platform", scraper.Platform(), "error", err)
		case len(scraped) == 0:
			status.Status = StatusEmpty
			slog.Warn("Scrape returned no posts", "platform", scraper.Platform())
		default:
			status.Status = StatusOK
			slog.Info("Scrape completed", "platform", scraper.Platform(), "posts", len(scraped))
			posts = append(posts, scraped...)
		}

		statuses = append(statuses, status)
	}

	c.enrich(ctx, posts)

	return posts, statuses
}

// enrich fills empty bodies of link posts with readable article text so the
// keyword and sentiment gates have material to work with. Extraction is
// best-effort; failures leave the body empty.
func (c *Collector) enrich(ctx context.Context, posts []*signal.Post) {
	if c.extractor == nil {
		return
	}

	for _, post := range posts {
		if post.Body != "" {
			continue
		}
		content, err := c.extractor.Run(ctx, post.URL)
		if err != nil {
			slog.Debug("Content extraction skipped", "url", post.URL, "error", err)
			continue
		}
		post.Body = content
	}
}
