package scraping

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/lysyi3m/oss-radar/app/signal"
)

var hnSearchURL = "https://hn.algolia.com/api/v1/search_by_date"

// HackerNewsScraper pulls recent stories from the Algolia search API, one
// request per configured query.
type HackerNewsScraper struct {
	client *Client
	config *SourceConfig
}

func NewHackerNewsScraper(client *Client, config *SourceConfig) *HackerNewsScraper {
	return &HackerNewsScraper{client: client, config: config}
}

func (s *HackerNewsScraper) Platform() string {
	return PlatformHackerNews
}

type hnSearchResponse struct {
	Hits []hnHit `json:"hits"`
}

type hnHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	StoryText   string `json:"story_text"`
	CreatedAtI  int64  `json:"created_at_i"`
}

func (s *HackerNewsScraper) Scrape(ctx context.Context) ([]*signal.Post, error) {
	cutoff := time.Now().Add(-time.Duration(s.config.MaxAgeHours) * time.Hour).Unix()

	var posts []*signal.Post
	seen := make(map[string]bool)

	for _, query := range s.config.Queries {
		params := url.Values{
			"query":          []string{query},
			"tags":           []string{"story"},
			"hitsPerPage":    []string{fmt.Sprintf("%d", s.config.MaxPosts)},
			"numericFilters": []string{fmt.Sprintf("created_at_i>%d", cutoff)},
		}

		var resp hnSearchResponse
		if err := s.client.GetJSON(ctx, hnSearchURL+"?"+params.Encode(), &resp); err != nil {
			return nil, fmt.Errorf("hackernews query %q failed: %w", query, err)
		}

		for _, hit := range resp.Hits {
			if hit.Title == "" || seen[hit.ObjectID] {
				continue
			}
			seen[hit.ObjectID] = true

			link := hit.URL
			if link == "" {
				link = "https://news.ycombinator.com/item?id=" + hit.ObjectID
			}

			post := signal.NewPost(link, hit.Title, hit.StoryText, PlatformHackerNews, hit.Author)
			post.Upvotes = hit.Points
			post.Comments = hit.NumComments
			post.CreatedUTC = time.Unix(hit.CreatedAtI, 0).UTC()
			posts = append(posts, post)
		}
	}

	return posts, nil
}
