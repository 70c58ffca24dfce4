// Package browser defines the page automation backend consumed by the
// session manager. The shipped implementation is a deterministic simulator;
// a real browser-engine driver would satisfy the same interface.
package browser

import (
	"context"
	"encoding/json"

	"github.com/shehryarbajwa/browserpilot/pkg/models"
)

// Session is the backend's handle for one live browser instance.
// Page state lives inside the backend; the handle itself is immutable.
type Session struct {
	ID          string
	SessionData json.RawMessage
}

// Backend drives browser pages on behalf of browsing sessions
type Backend interface {
	// CreateSession starts a browser instance restored from the profile's
	// opaque session data.
	CreateSession(ctx context.Context, sessionData json.RawMessage) (*Session, error)

	// Navigate loads a url in the session's page
	Navigate(ctx context.Context, sess *Session, url string) error

	// Scrape extracts the current page's text, links, images, and metadata
	Scrape(ctx context.Context, sess *Session) (*models.PageContent, error)

	// Screenshot renders the current page as an image. Returns the image
	// bytes and their content type.
	Screenshot(ctx context.Context, sess *Session) ([]byte, string, error)

	// Close releases the browser instance
	Close(ctx context.Context, sess *Session) error
}
