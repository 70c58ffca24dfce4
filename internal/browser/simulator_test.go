package browser_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shehryarbajwa/browserpilot/internal/browser"
)

func newFastSimulator() *browser.Simulator {
	sim := browser.NewSimulator()
	sim.Latency = 0
	return sim
}

func TestNavigateAndScrape(t *testing.T) {
	ctx := context.Background()
	sim := newFastSimulator()

	sess, err := sim.CreateSession(ctx, nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := sim.Navigate(ctx, sess, "https://en.wikipedia.org/wiki/Go"); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}

	content, err := sim.Scrape(ctx, sess)
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if !strings.Contains(content.Title, "Wikipedia") {
		t.Fatalf("expected wikipedia-keyed content, got title %q", content.Title)
	}
	if len(content.Links) == 0 {
		t.Fatalf("expected simulated links")
	}
}

func TestScrapeIsDeterministic(t *testing.T) {
	ctx := context.Background()
	sim := newFastSimulator()

	sess, _ := sim.CreateSession(ctx, nil)
	if err := sim.Navigate(ctx, sess, "https://github.com/trending"); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}

	first, err := sim.Scrape(ctx, sess)
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	second, err := sim.Scrape(ctx, sess)
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if first.Title != second.Title || first.Text != second.Text {
		t.Fatalf("expected identical content across scrapes of the same url")
	}
}

func TestNavigateRejectsInvalidURL(t *testing.T) {
	ctx := context.Background()
	sim := newFastSimulator()

	sess, _ := sim.CreateSession(ctx, nil)
	if err := sim.Navigate(ctx, sess, "not a url"); err == nil {
		t.Fatalf("expected error for invalid url")
	}
}

func TestScreenshotRendersSVG(t *testing.T) {
	ctx := context.Background()
	sim := newFastSimulator()

	sess, _ := sim.CreateSession(ctx, nil)
	if err := sim.Navigate(ctx, sess, "https://news.example.test/article/1"); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}

	img, contentType, err := sim.Screenshot(ctx, sess)
	if err != nil {
		t.Fatalf("Screenshot failed: %v", err)
	}
	if contentType != "image/svg+xml" {
		t.Fatalf("expected svg content type, got %q", contentType)
	}
	if !strings.Contains(string(img), "news.example.test") {
		t.Fatalf("expected screenshot to reference the page url")
	}
}

func TestScrapeWithoutPage(t *testing.T) {
	ctx := context.Background()
	sim := newFastSimulator()

	sess, _ := sim.CreateSession(ctx, nil)
	if _, err := sim.Scrape(ctx, sess); err == nil {
		t.Fatalf("expected error scraping before navigation")
	}
}

func TestCloseReleasesSession(t *testing.T) {
	ctx := context.Background()
	sim := newFastSimulator()

	sess, _ := sim.CreateSession(ctx, nil)
	if err := sim.Close(ctx, sess); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := sim.Navigate(ctx, sess, "https://example.test"); err == nil {
		t.Fatalf("expected navigation on closed session to fail")
	}
}
