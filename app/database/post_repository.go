package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/oss-radar/app/signal"
)

// PostRepo handles database operations for scraped posts
type PostRepo struct {
	db *DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *DB) *PostRepo {
	return &PostRepo{db: db}
}

const postColumns = `id, url, url_hash, title, body, platform, author,
	followers, upvotes, comments, tags, pain_categories, pain_score,
	sentiment, is_maintainer, final_score, stage, scraped_at, created_utc`

// UpsertPost inserts a post keyed by its URL hash, or refreshes the mutable
// columns of an existing row. A row already promoted to the scored stage is
// never demoted back to partial. Returns the row id either way.
func (r *PostRepo) UpsertPost(post *signal.Post, stage string) (int64, error) {
	tags, err := json.Marshal(post.Tags)
	if err != nil {
		return 0, fmt.Errorf("failed to encode tags: %w", err)
	}
	categories, err := json.Marshal(post.PainCategories)
	if err != nil {
		return 0, fmt.Errorf("failed to encode pain categories: %w", err)
	}

	var id int64
	err = r.db.QueryRow(`
		INSERT INTO posts (
			url, url_hash, title, body, platform, author,
			followers, upvotes, comments, tags, pain_categories,
			pain_score, sentiment, is_maintainer, final_score,
			stage, scraped_at, created_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (url_hash) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			followers = excluded.followers,
			upvotes = excluded.upvotes,
			comments = excluded.comments,
			tags = excluded.tags,
			pain_categories = excluded.pain_categories,
			pain_score = excluded.pain_score,
			sentiment = excluded.sentiment,
			is_maintainer = excluded.is_maintainer,
			final_score = excluded.final_score,
			stage = CASE WHEN posts.stage = 'scored' THEN posts.stage ELSE excluded.stage END,
			scraped_at = excluded.scraped_at
		RETURNING id
	`, post.URL, post.URLHash, post.Title, post.Body, post.Platform, post.Author,
		post.Followers, post.Upvotes, post.Comments, string(tags), string(categories),
		post.PainScore, post.Sentiment, boolToInt(post.IsMaintainer), post.FinalScore,
		stage, post.ScrapedAt.Unix(), post.CreatedUTC.Unix()).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to upsert post: %w", err)
	}

	return id, nil
}

// GetPost returns a single post by row id, or nil when absent.
func (r *PostRepo) GetPost(id int64) (*StoredPost, error) {
	row := r.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)

	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// GetUnreported returns scored posts scraped within the last maxAgeDays that
// have not yet appeared in any report, highest score first.
func (r *PostRepo) GetUnreported(maxAgeDays, limit int) ([]StoredPost, error) {
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays).Unix()

	rows, err := r.db.Query(`
		SELECT `+postColumns+`
		FROM posts
		WHERE stage = ?
		  AND reported_at IS NULL
		  AND scraped_at >= ?
		ORDER BY final_score DESC, id ASC
		LIMIT ?
	`, StageScored, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get unreported posts: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

// GetPartialUnreported returns keyword-gate-only posts that have not been
// reported, highest keyword weight first.
func (r *PostRepo) GetPartialUnreported(limit int) ([]StoredPost, error) {
	rows, err := r.db.Query(`
		SELECT `+postColumns+`
		FROM posts
		WHERE stage = ?
		  AND reported_at IS NULL
		ORDER BY pain_score DESC, id ASC
		LIMIT ?
	`, StagePartial, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get partial posts: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

// GetTopSince returns the highest-scoring scored posts scraped at or after
// since, reported or not. Used by the weekly digest.
func (r *PostRepo) GetTopSince(since time.Time, limit int) ([]StoredPost, error) {
	rows, err := r.db.Query(`
		SELECT `+postColumns+`
		FROM posts
		WHERE stage = ?
		  AND scraped_at >= ?
		ORDER BY final_score DESC, id ASC
		LIMIT ?
	`, StageScored, since.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top posts: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

// MarkReported stamps the given posts as included in a report.
func (r *PostRepo) MarkReported(ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, at.Unix())
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}

	_, err := r.db.Exec(`
		UPDATE posts SET reported_at = ?
		WHERE id IN (`+strings.Join(placeholders, ", ")+`)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to mark posts reported: %w", err)
	}

	return nil
}

// GetPostCount returns the total number of stored posts
func (r *PostRepo) GetPostCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*StoredPost, error) {
	var sp StoredPost
	var tags, categories string
	var isMaintainer int
	var scrapedAt, createdUTC int64

	err := row.Scan(
		&sp.ID, &sp.URL, &sp.URLHash, &sp.Title, &sp.Body, &sp.Platform,
		&sp.Author, &sp.Followers, &sp.Upvotes, &sp.Comments, &tags,
		&categories, &sp.PainScore, &sp.Sentiment, &isMaintainer,
		&sp.FinalScore, &sp.Stage, &scrapedAt, &createdUTC,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &sp.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(categories), &sp.PainCategories); err != nil {
		return nil, fmt.Errorf("failed to decode pain categories: %w", err)
	}
	sp.IsMaintainer = isMaintainer != 0
	sp.ScrapedAt = time.Unix(scrapedAt, 0).UTC()
	sp.CreatedUTC = time.Unix(createdUTC, 0).UTC()

	return &sp, nil
}

func collectPosts(rows *sql.Rows) ([]StoredPost, error) {
	var posts []StoredPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
