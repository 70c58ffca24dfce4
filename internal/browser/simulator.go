package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shehryarbajwa/browserpilot/pkg/models"
)

// Simulator is a Backend that fabricates page content instead of driving a
// real browser engine. Content is deterministic per url so tests and demos
// are repeatable. Latency defaults to a small delay to mimic page loads.
// All per-session page state is held in the pages map under the lock.
type Simulator struct {
	mu      sync.RWMutex
	pages   map[string]string // sessionID -> current page url
	Latency time.Duration
}

// NewSimulator creates a simulator with a 100ms simulated page-load latency
func NewSimulator() *Simulator {
	return &Simulator{
		pages:   make(map[string]string),
		Latency: 100 * time.Millisecond,
	}
}

func (s *Simulator) CreateSession(ctx context.Context, sessionData json.RawMessage) (*Session, error) {
	sess := &Session{
		ID:          uuid.New().String(),
		SessionData: sessionData,
	}
	s.mu.Lock()
	s.pages[sess.ID] = ""
	s.mu.Unlock()
	return sess, nil
}

func (s *Simulator) Navigate(ctx context.Context, sess *Session, rawURL string) error {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pages[sess.ID]; !ok {
		return fmt.Errorf("browser session %s is closed", sess.ID)
	}
	s.pages[sess.ID] = rawURL
	return nil
}

// currentPage reads the session's loaded url under the lock
func (s *Simulator) currentPage(sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pageURL, ok := s.pages[sessionID]
	if !ok {
		return "", fmt.Errorf("browser session %s is closed", sessionID)
	}
	if pageURL == "" {
		return "", fmt.Errorf("no page loaded")
	}
	return pageURL, nil
}

func (s *Simulator) Scrape(ctx context.Context, sess *Session) (*models.PageContent, error) {
	pageURL, err := s.currentPage(sess.ID)
	if err != nil {
		return nil, err
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return simulatedContent(pageURL), nil
}

func (s *Simulator) Screenshot(ctx context.Context, sess *Session) ([]byte, string, error) {
	pageURL, err := s.currentPage(sess.ID)
	if err != nil {
		return nil, "", err
	}
	if err := s.wait(ctx); err != nil {
		return nil, "", err
	}

	content := simulatedContent(pageURL)
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="1280" height="800">
  <rect width="1280" height="800" fill="#f5f6f8"/>
  <rect width="1280" height="64" fill="#2b3440"/>
  <text x="24" y="40" font-family="sans-serif" font-size="20" fill="#ffffff">%s</text>
  <text x="24" y="120" font-family="sans-serif" font-size="32" fill="#1a1a1a">%s</text>
  <text x="24" y="170" font-family="sans-serif" font-size="16" fill="#555555">%s</text>
</svg>`, escapeXML(pageURL), escapeXML(content.Title), escapeXML(firstLine(content.Text)))

	return []byte(svg), "image/svg+xml", nil
}

func (s *Simulator) Close(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pages[sess.ID]; !ok {
		return fmt.Errorf("browser session %s is closed", sess.ID)
	}
	delete(s.pages, sess.ID)
	return nil
}

// wait sleeps for the simulated latency, honoring ctx cancellation
func (s *Simulator) wait(ctx context.Context) error {
	if s.Latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(s.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// simulatedContent fabricates page content keyed on url substring matching
func simulatedContent(pageURL string) *models.PageContent {
	host := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		host = u.Host
	}
	lower := strings.ToLower(pageURL)

	content := &models.PageContent{
		URL:      pageURL,
		Metadata: map[string]string{"source": "simulated"},
	}

	switch {
	case strings.Contains(lower, "wikipedia"):
		content.Title = "Wikipedia — The Free Encyclopedia"
		content.Text = "Wikipedia is a free online encyclopedia, created and edited by volunteers around the world.\nFeatured article: History of distributed computing."
		content.Links = []models.PageLink{
			{Text: "Featured article", URL: pageURL + "#featured"},
			{Text: "Random article", URL: "https://en.wikipedia.org/wiki/Special:Random"},
		}
	case strings.Contains(lower, "github"):
		content.Title = "GitHub — Where software is built"
		content.Text = "Trending repositories today.\n1. example/awesome-project — A curated list of awesome things.\n2. example/fast-parser — A parser that is fast."
		content.Links = []models.PageLink{
			{Text: "Trending", URL: "https://github.com/trending"},
			{Text: "Explore", URL: "https://github.com/explore"},
		}
	case strings.Contains(lower, "news") || strings.Contains(lower, "article"):
		content.Title = "Daily News — Top Stories"
		content.Text = "Top story: Markets steady as quarterly reports land.\nTechnology: New browser automation tools gain adoption."
		content.Links = []models.PageLink{
			{Text: "Top story", URL: pageURL + "/top"},
			{Text: "Technology", URL: pageURL + "/tech"},
		}
		content.Images = []string{pageURL + "/img/lead.jpg"}
	case strings.Contains(lower, "shop") || strings.Contains(lower, "store"):
		content.Title = "Shop — Best Sellers"
		content.Text = "Best sellers this week.\nWireless headphones — $79.\nMechanical keyboard — $129."
		content.Links = []models.PageLink{
			{Text: "Best sellers", URL: pageURL + "/best"},
			{Text: "Cart", URL: pageURL + "/cart"},
		}
	default:
		content.Title = fmt.Sprintf("Page at %s", host)
		content.Text = fmt.Sprintf("Sample content extracted from %s.\nThis page was rendered by the simulated automation backend.", pageURL)
		content.Links = []models.PageLink{
			{Text: "Home", URL: pageURL},
		}
	}
	return content
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
