package generator

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var (
	headingPattern = regexp.MustCompile(`<h[1-6][^>]*>([^<]+)</h[1-6]>`)
	paraPattern    = regexp.MustCompile(`<p[^>]*>([^<]+)</p>`)
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
)

// NewsSource gathers generation context best-effort: the first RSS feed
// that parses wins, then a direct page scrape, then static snippets. Every
// step is optional; Gather only fails when nothing at all is reachable and
// no static snippets are configured.
type NewsSource struct {
	feeds     []string
	scrapeURL string
	snippets  []string
	client    *http.Client
}

func NewNewsSource(feeds []string, scrapeURL string, snippets []string) *NewsSource {
	return &NewsSource{
		feeds:     feeds,
		scrapeURL: scrapeURL,
		snippets:  snippets,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title       string `xml:"title"`
			Description string `xml:"description"`
		} `xml:"item"`
	} `xml:"channel"`
}

func (s *NewsSource) Gather(ctx context.Context) ([]string, error) {
	var content []string

	for _, feedURL := range s.feeds {
		items, err := s.fetchFeed(ctx, feedURL)
		if err != nil {
			log.Printf("rss feed %s failed: %v", feedURL, err)
			continue
		}
		content = append(content, items...)
		// First working feed wins.
		break
	}

	if s.scrapeURL != "" {
		scraped, err := s.scrape(ctx, s.scrapeURL)
		if err != nil {
			log.Printf("scrape %s failed: %v", s.scrapeURL, err)
		} else {
			content = append(content, scraped...)
		}
	}

	content = append(content, s.snippets...)
	return content, nil
}

func (s *NewsSource) fetchFeed(ctx context.Context, url string) ([]string, error) {
	body, err := s.get(ctx, url)
	if err != nil {
		return nil, err
	}
	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	var items []string
	for _, item := range feed.Channel.Items {
		title := strings.TrimSpace(item.Title)
		desc := strings.TrimSpace(tagPattern.ReplaceAllString(item.Description, ""))
		if title == "" {
			continue
		}
		if desc != "" {
			items = append(items, title+": "+desc)
		} else {
			items = append(items, title)
		}
	}
	return items, nil
}

// scrape pulls headings and paragraphs out of a page. Crude by design: the
// output only seeds a model prompt, so lossy extraction is acceptable.
func (s *NewsSource) scrape(ctx context.Context, url string) ([]string, error) {
	body, err := s.get(ctx, url)
	if err != nil {
		return nil, err
	}
	html := string(body)

	var content []string
	for _, match := range headingPattern.FindAllStringSubmatch(html, 20) {
		text := strings.TrimSpace(match[1])
		if len(text) > 10 {
			content = append(content, text)
		}
	}
	for _, match := range paraPattern.FindAllStringSubmatch(html, 30) {
		text := strings.TrimSpace(match[1])
		if len(text) > 20 {
			content = append(content, text)
		}
	}
	return content, nil
}

func (s *NewsSource) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "trivia-service/1.0")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
