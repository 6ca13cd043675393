package scraping

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/oss-radar/app/signal"
)

// LobstersScraper reads the configured Lobsters RSS feeds. The feeds carry
// no vote counts, so engagement metrics stay at zero and these posts rely on
// their text signal alone.
type LobstersScraper struct {
	client *Client
	config *SourceConfig
	parser *gofeed.Parser
}

func NewLobstersScraper(client *Client, config *SourceConfig) *LobstersScraper {
	return &LobstersScraper{
		client: client,
		config: config,
		parser: gofeed.NewParser(),
	}
}

func (s *LobstersScraper) Platform() string {
	return PlatformLobsters
}

func (s *LobstersScraper) Scrape(ctx context.Context) ([]*signal.Post, error) {
	maxAge := time.Duration(s.config.MaxAgeHours) * time.Hour

	var posts []*signal.Post
	seen := make(map[string]bool)

	for _, feedURL := range s.config.Feeds {
		data, err := s.client.Get(ctx, feedURL)
		if err != nil {
			return nil, fmt.Errorf("lobsters feed %s failed: %w", feedURL, err)
		}

		feed, err := s.parser.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
		}

		for _, item := range feed.Items {
			if item.Title == "" || item.Link == "" || seen[item.Link] {
				continue
			}
			if item.PublishedParsed != nil && time.Since(*item.PublishedParsed) > maxAge {
				continue
			}
			seen[item.Link] = true

			author := ""
			if item.Author != nil {
				author = item.Author.Name
			}

			post := signal.NewPost(item.Link, item.Title, item.Description,
				PlatformLobsters, author)
			post.Tags = item.Categories
			if item.PublishedParsed != nil {
				post.CreatedUTC = item.PublishedParsed.UTC()
			}
			posts = append(posts, post)

			if len(posts) >= s.config.MaxPosts {
				break
			}
		}
	}

	return posts, nil
}
