package report

import (
	"testing"
	"time"

	"github.com/lysyi3m/oss-radar/app/database"
	"github.com/lysyi3m/oss-radar/app/signal"
)

// fakePostRepo serves canned posts per tier and records query arguments.
type fakePostRepo struct {
	within7d     []database.StoredPost
	within30d    []database.StoredPost
	partial      []database.StoredPost
	partialLimit int
}

func (f *fakePostRepo) UpsertPost(*signal.Post, string) (int64, error) { return 0, nil }
func (f *fakePostRepo) GetPost(int64) (*database.StoredPost, error)    { return nil, nil }
func (f *fakePostRepo) MarkReported([]int64, time.Time) error          { return nil }
func (f *fakePostRepo) GetPostCount() (int, error)                     { return 0, nil }

func (f *fakePostRepo) GetTopSince(time.Time, int) ([]database.StoredPost, error) {
	return nil, nil
}

func (f *fakePostRepo) GetUnreported(maxAgeDays, limit int) ([]database.StoredPost, error) {
	if maxAgeDays <= 7 {
		return f.within7d, nil
	}
	return f.within30d, nil
}

func (f *fakePostRepo) GetPartialUnreported(limit int) ([]database.StoredPost, error) {
	f.partialLimit = limit
	return f.partial, nil
}

func stored(id int64, url string, score float64) database.StoredPost {
	post := signal.NewPost(url, "title", "body", "hackernews", "alice")
	post.FinalScore = score
	return database.StoredPost{ID: id, Stage: database.StageScored, Post: *post}
}

func TestBackfiller_EnoughLivePosts(t *testing.T) {
	repo := &fakePostRepo{}
	backfiller := NewBackfiller(repo, 5, 50)

	live := make([]database.StoredPost, 7)
	for i := range live {
		live[i] = stored(int64(i+1), "https://example.com/"+string(rune('a'+i)), 1.0-float64(i)*0.1)
	}

	selected, err := backfiller.EnsureTarget(live)
	if err != nil {
		t.Fatalf("EnsureTarget failed: %v", err)
	}

	if len(selected) != 5 {
		t.Fatalf("Expected exactly 5 entries, got %d", len(selected))
	}
	for i, s := range selected {
		if s.SourceTier != signal.TierLive {
			t.Errorf("Entry %d should be live tier, got %s", i, s.SourceTier)
		}
		if s.ID != live[i].ID {
			t.Errorf("Live posts should keep their order, entry %d is id %d", i, s.ID)
		}
	}
}

func TestBackfiller_ArchiveBackfill(t *testing.T) {
	repo := &fakePostRepo{
		within7d: []database.StoredPost{
			stored(10, "https://example.com/archive-1", 0.8),
			stored(11, "https://example.com/archive-2", 0.7),
			stored(12, "https://example.com/archive-3", 0.6),
		},
	}
	backfiller := NewBackfiller(repo, 5, 50)

	live := []database.StoredPost{
		stored(1, "https://example.com/live-1", 0.9),
		stored(2, "https://example.com/live-2", 0.85),
	}

	selected, err := backfiller.EnsureTarget(live)
	if err != nil {
		t.Fatalf("EnsureTarget failed: %v", err)
	}

	if len(selected) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(selected))
	}
	tiers := []string{
		signal.TierLive, signal.TierLive,
		signal.TierArchive7d, signal.TierArchive7d, signal.TierArchive7d,
	}
	for i, want := range tiers {
		if selected[i].SourceTier != want {
			t.Errorf("Entry %d: expected tier %s, got %s", i, want, selected[i].SourceTier)
		}
	}
}

func TestBackfiller_DeduplicatesAcrossTiers(t *testing.T) {
	// The archive serves a post with the same URL as a live entry; it must
	// not appear twice.
	repo := &fakePostRepo{
		within7d: []database.StoredPost{
			stored(10, "https://example.com/shared", 0.8),
			stored(11, "https://example.com/archive-only", 0.7),
		},
	}
	backfiller := NewBackfiller(repo, 3, 50)

	live := []database.StoredPost{stored(1, "https://example.com/shared", 0.9)}

	selected, err := backfiller.EnsureTarget(live)
	if err != nil {
		t.Fatalf("EnsureTarget failed: %v", err)
	}

	if len(selected) != 2 {
		t.Fatalf("Expected 2 unique entries, got %d", len(selected))
	}
	seen := make(map[string]bool)
	for _, s := range selected {
		if seen[s.URLHash] {
			t.Errorf("Duplicate URL hash in selection: %s", s.URL)
		}
		seen[s.URLHash] = true
	}
}

func TestBackfiller_PartialLastResort(t *testing.T) {
	repo := &fakePostRepo{
		partial: []database.StoredPost{
			stored(20, "https://example.com/partial-1", 0),
			stored(21, "https://example.com/partial-2", 0),
		},
	}
	backfiller := NewBackfiller(repo, 5, 50)

	selected, err := backfiller.EnsureTarget(nil)
	if err != nil {
		t.Fatalf("EnsureTarget failed: %v", err)
	}

	if len(selected) != 2 {
		t.Fatalf("Expected 2 partial entries, got %d", len(selected))
	}
	for _, s := range selected {
		if s.SourceTier != signal.TierPartial {
			t.Errorf("Expected partial tier, got %s", s.SourceTier)
		}
	}
	if repo.partialLimit != 50 {
		t.Errorf("Partial scan should honor the configured limit, got %d", repo.partialLimit)
	}
}

func TestBackfiller_AllTiersEmpty(t *testing.T) {
	backfiller := NewBackfiller(&fakePostRepo{}, 5, 50)

	selected, err := backfiller.EnsureTarget(nil)
	if err != nil {
		t.Fatalf("EnsureTarget failed: %v", err)
	}
	if len(selected) != 0 {
		t.Errorf("Expected empty selection when every tier is dry, got %d", len(selected))
	}
}
