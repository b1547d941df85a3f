package generator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <item>
      <title>Big launch announced</title>
      <description>The &lt;b&gt;new platform&lt;/b&gt; shipped today.</description>
    </item>
    <item>
      <title>Second story</title>
      <description></description>
    </item>
  </channel>
</rss>`

const samplePage = `<html><body>
<h1>Front Page Headline Today</h1>
<h2>x</h2>
<p>This paragraph is long enough to be worth keeping as context.</p>
<p>short</p>
</body></html>`

func TestNewsSourceParsesFirstWorkingFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/broken":
			http.Error(w, "gone", http.StatusNotFound)
		case "/feed":
			w.Write([]byte(sampleRSS))
		}
	}))
	defer server.Close()

	source := NewNewsSource([]string{server.URL + "/broken", server.URL + "/feed"}, "", nil)
	content, err := source.Gather(context.Background())
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(content) != 2 {
		t.Fatalf("expected 2 feed items, got %d: %v", len(content), content)
	}
	if !strings.Contains(content[0], "Big launch announced") {
		t.Fatalf("expected first item title, got %q", content[0])
	}
	if strings.Contains(content[0], "<b>") {
		t.Fatalf("expected markup stripped, got %q", content[0])
	}
}

func TestNewsSourceScrapesHeadingsAndParagraphs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	source := NewNewsSource(nil, server.URL, nil)
	content, err := source.Gather(context.Background())
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	// Short fragments are filtered out.
	if len(content) != 2 {
		t.Fatalf("expected heading and paragraph only, got %v", content)
	}
}

func TestNewsSourceStaticSnippetsAlwaysIncluded(t *testing.T) {
	source := NewNewsSource(nil, "", []string{"pinned snippet"})
	content, err := source.Gather(context.Background())
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(content) != 1 || content[0] != "pinned snippet" {
		t.Fatalf("expected static snippet, got %v", content)
	}
}
