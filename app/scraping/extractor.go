package scraping

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	readability "codeberg.org/readeck/go-readability"
)

// ContentExtractor pulls readable article text out of link-only posts so the
// filter gates see more than a bare title.
type ContentExtractor struct {
	client *Client
}

func NewContentExtractor(client *Client) *ContentExtractor {
	return &ContentExtractor{client: client}
}

// Run fetches the post's link and returns the extracted article text.
func (e *ContentExtractor) Run(ctx context.Context, link string) (string, error) {
	data, err := e.client.Get(ctx, link)
	if err != nil {
		return "", err
	}
	return e.Extract(data)
}

// Extract returns readable content from raw HTML.
func (e *ContentExtractor) Extract(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(bytes.NewReader(data), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.TextContent == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"title", article.Title,
		"content_length", len(article.TextContent))

	return article.TextContent, nil
}
