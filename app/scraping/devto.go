package scraping

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/lysyi3m/oss-radar/app/signal"
)

var devtoArticlesURL = "https://dev.to/api/articles"

// DevToScraper pulls fresh articles from the public REST API, one request
// per configured tag.
type DevToScraper struct {
	client *Client
	config *SourceConfig
}

func NewDevToScraper(client *Client, config *SourceConfig) *DevToScraper {
	return &DevToScraper{client: client, config: config}
}

func (s *DevToScraper) Platform() string {
	return PlatformDevTo
}

type devtoArticle struct {
	Title                  string    `json:"title"`
	Description            string    `json:"description"`
	URL                    string    `json:"url"`
	PositiveReactionsCount int       `json:"positive_reactions_count"`
	CommentsCount          int       `json:"comments_count"`
	TagList                []string  `json:"tag_list"`
	PublishedAt            time.Time `json:"published_at"`
	User                   struct {
		Username string `json:"username"`
	} `json:"user"`
}

func (s *DevToScraper) Scrape(ctx context.Context) ([]*signal.Post, error) {
	maxAge := time.Duration(s.config.MaxAgeHours) * time.Hour

	var posts []*signal.Post
	seen := make(map[string]bool)

	for _, tag := range s.config.Tags {
		params := url.Values{
			"tag":      []string{tag},
			"per_page": []string{fmt.Sprintf("%d", s.config.MaxPosts)},
			"state":    []string{"fresh"},
		}

		var articles []devtoArticle
		if err := s.client.GetJSON(ctx, devtoArticlesURL+"?"+params.Encode(), &articles); err != nil {
			return nil, fmt.Errorf("devto tag %q failed: %w", tag, err)
		}

		for _, article := range articles {
			if article.Title == "" || article.URL == "" || seen[article.URL] {
				continue
			}
			if !article.PublishedAt.IsZero() && time.Since(article.PublishedAt) > maxAge {
				continue
			}
			seen[article.URL] = true

			post := signal.NewPost(article.URL, article.Title, article.Description,
				PlatformDevTo, article.User.Username)
			post.Upvotes = article.PositiveReactionsCount
			post.Comments = article.CommentsCount
			post.Tags = article.TagList
			if !article.PublishedAt.IsZero() {
				post.CreatedUTC = article.PublishedAt.UTC()
			}
			posts = append(posts, post)
		}
	}

	return posts, nil
}
