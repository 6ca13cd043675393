package scraping

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/oss-radar/app/signal"
)

var redditBaseURL = "https://www.reddit.com"

// RedditScraper reads public JSON listings, one request per subreddit. The
// scraper is disabled unless explicitly enabled in the runtime configuration
// on top of the source file.
type RedditScraper struct {
	client *Client
	config *SourceConfig
}

func NewRedditScraper(client *Client, config *SourceConfig) *RedditScraper {
	return &RedditScraper{client: client, config: config}
}

func (s *RedditScraper) Platform() string {
	return PlatformReddit
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditAbout struct {
	Data struct {
		LinkKarma int `json:"link_karma"`
	} `json:"data"`
}

type redditPost struct {
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Author      string  `json:"author"`
	Ups         int     `json:"ups"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Stickied    bool    `json:"stickied"`
}

func (s *RedditScraper) Scrape(ctx context.Context) ([]*signal.Post, error) {
	maxAge := time.Duration(s.config.MaxAgeHours) * time.Hour

	var posts []*signal.Post
	seen := make(map[string]bool)
	karma := make(map[string]int)

	for _, subreddit := range s.config.Subreddits {
		listingURL := fmt.Sprintf("%s/r/%s/new.json?limit=%d",
			redditBaseURL, subreddit, s.config.MaxPosts)

		var listing redditListing
		if err := s.client.GetJSON(ctx, listingURL, &listing); err != nil {
			return nil, fmt.Errorf("reddit r/%s failed: %w", subreddit, err)
		}

		for _, child := range listing.Data.Children {
			item := child.Data
			if item.Title == "" || item.Stickied {
				continue
			}

			link := item.URL
			if link == "" && item.Permalink != "" {
				link = "https://www.reddit.com" + item.Permalink
			}
			if link == "" || seen[link] {
				continue
			}

			created := time.Unix(int64(item.CreatedUTC), 0).UTC()
			if time.Since(created) > maxAge {
				continue
			}
			seen[link] = true

			post := signal.NewPost(link, item.Title, item.SelfText, PlatformReddit, item.Author)
			post.Upvotes = item.Ups
			post.Comments = item.NumComments
			post.Followers = s.authorKarma(ctx, karma, item.Author)
			post.CreatedUTC = created
			posts = append(posts, post)
		}
	}

	return posts, nil
}

// authorKarma looks up an author's link karma as the post's influence
// signal, cached per scrape run. Lookup failures degrade to zero karma
// rather than failing the subreddit.
func (s *RedditScraper) authorKarma(ctx context.Context, cache map[string]int, author string) int {
	if author == "" {
		return 0
	}
	if value, ok := cache[author]; ok {
		return value
	}

	var about redditAbout
	aboutURL := fmt.Sprintf("%s/user/%s/about.json", redditBaseURL, author)
	if err := s.client.GetJSON(ctx, aboutURL, &about); err != nil {
		slog.Debug("Author karma lookup failed", "author", author, "error", err)
		cache[author] = 0
		return 0
	}

	cache[author] = about.Data.LinkKarma
	return about.Data.LinkKarma
}
