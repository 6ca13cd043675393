package report

import (
	"fmt"
	"log/slog"

	"github.com/lysyi3m/oss-radar/app/database"
	"github.com/lysyi3m/oss-radar/app/signal"
)

// Backfiller fills a report up to its target entry count by walking down a
// tier ladder: today's live posts first, then unreported archive posts from
// the last 7 days, then the last 30 days, and finally keyword-only partial
// posts. Every tier deduplicates against already-selected URLs.
type Backfiller struct {
	posts            database.PostRepository
	target           int
	partialScanLimit int
}

func NewBackfiller(posts database.PostRepository, target, partialScanLimit int) *Backfiller {
	return &Backfiller{
		posts:            posts,
		target:           target,
		partialScanLimit: partialScanLimit,
	}
}

// EnsureTarget selects up to the target number of posts, starting from the
// live batch and backfilling from the archive tiers. The result carries each
// post's tier in its SourceTier field and may hold fewer than target entries
// when every tier is exhausted, including zero.
func (b *Backfiller) EnsureTarget(live []database.StoredPost) ([]database.StoredPost, error) {
	selected := make([]database.StoredPost, 0, b.target)
	seen := make(map[string]bool)

	take := func(candidates []database.StoredPost, tier string) {
		for _, candidate := range candidates {
			if len(selected) >= b.target {
				return
			}
			if seen[candidate.URLHash] {
				continue
			}
			seen[candidate.URLHash] = true
			candidate.SourceTier = tier
			selected = append(selected, candidate)
		}
	}

	take(live, signal.TierLive)

	ladder := []struct {
		tier    string
		maxDays int
	}{
		{signal.TierArchive7d, 7},
		{signal.TierArchive30, 30},
	}

	for _, rung := range ladder {
		if len(selected) >= b.target {
			break
		}
		// Over-fetch so candidates duplicating earlier tiers still
		// leave enough to fill the gap.
		candidates, err := b.posts.GetUnreported(rung.maxDays, b.target+len(seen))
		if err != nil {
			return nil, fmt.Errorf("failed to backfill from %s: %w", rung.tier, err)
		}
		take(candidates, rung.tier)
	}

	if len(selected) < b.target {
		candidates, err := b.posts.GetPartialUnreported(b.partialScanLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to backfill from partial posts: %w", err)
		}
		take(candidates, signal.TierPartial)
	}

	if len(selected) < b.target {
		slog.Warn("Report target not reached after backfill",
			"selected", len(selected), "target", b.target)
	}

	return selected, nil
}
