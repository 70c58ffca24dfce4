package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/shehryarbajwa/browserpilot/internal/actionlog"
	"github.com/shehryarbajwa/browserpilot/internal/browser"
	"github.com/shehryarbajwa/browserpilot/internal/store"
	"github.com/shehryarbajwa/browserpilot/pkg/models"
)

// Manager handles all browsing session operations
type Manager struct {
	store       *store.Store
	backend     browser.Backend
	actions     *actionlog.Log
	concurrency map[string]*semaphore.Weighted
	backendSess sync.Map // sessionID -> *browser.Session
	mu          sync.RWMutex

	maxPerUser int64
}

// NewManager creates a new session manager
func NewManager(st *store.Store, backend browser.Backend, actions *actionlog.Log, maxPerUser int64) *Manager {
	if maxPerUser <= 0 {
		maxPerUser = 10
	}
	return &Manager{
		store:       st,
		backend:     backend,
		actions:     actions,
		concurrency: make(map[string]*semaphore.Weighted),
		maxPerUser:  maxPerUser,
	}
}

// Create starts a new browsing session for a profile
func (m *Manager) Create(ctx context.Context, req models.CreateSessionRequest) (*models.BrowseSession, error) {
	if req.ProfileID == "" {
		return nil, fmt.Errorf("profileId is required")
	}

	profile, err := m.store.Profiles.Get(req.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", req.ProfileID, err)
	}

	if req.Timeout == 0 {
		req.Timeout = 3600
	}
	if req.Timeout < 60 || req.Timeout > 21600 {
		return nil, fmt.Errorf("timeout must be between 60 and 21600 seconds")
	}

	if err := m.acquireSlot(profile.UserID); err != nil {
		return nil, err
	}

	backendSess, err := m.backend.CreateSession(ctx, profile.SessionData)
	if err != nil {
		m.releaseSlot(profile.UserID)
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	created := m.store.Sessions.Create(&models.BrowseSession{
		ProfileID: profile.ID,
		UserID:    profile.UserID,
		Status:    models.StatusRunning,
		Timeout:   req.Timeout,
		BackendID: backendSess.ID,
	})
	sess, err := m.store.Sessions.Update(created.ID, func(s *models.BrowseSession) {
		s.ExpiresAt = s.StartedAt.Add(time.Duration(req.Timeout) * time.Second)
	})
	if err != nil {
		m.releaseSlot(profile.UserID)
		return nil, err
	}

	m.backendSess.Store(sess.ID, backendSess)

	m.actions.Record(profile.UserID, "session_created", fmt.Sprintf("profile %s", profile.Name), "")

	// Terminate the session when its timeout elapses
	go m.handleTimeout(sess.ID, time.Duration(req.Timeout)*time.Second)

	return sess, nil
}

// Get retrieves a session by ID
func (m *Manager) Get(id string) (*models.BrowseSession, error) {
	return m.store.Sessions.Get(id)
}

// List returns sessions, optionally filtered by user and status
func (m *Manager) List(userID string, status models.SessionStatus) []*models.BrowseSession {
	return m.store.Sessions.List(func(s *models.BrowseSession) bool {
		if userID != "" && s.UserID != userID {
			return false
		}
		if status != "" && s.Status != status {
			return false
		}
		return true
	})
}

// Navigate loads a url in a running session and records the visit
func (m *Manager) Navigate(ctx context.Context, id, url string) (*models.BrowsingHistoryItem, error) {
	sess, backendSess, err := m.running(id)
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, fmt.Errorf("url is required")
	}

	if err := m.backend.Navigate(ctx, backendSess, url); err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	m.store.Sessions.Update(id, func(s *models.BrowseSession) {
		s.CurrentURL = url
	})

	item := &models.BrowsingHistoryItem{
		ProfileID: sess.ProfileID,
		URL:       url,
	}
	if content, err := m.backend.Scrape(ctx, backendSess); err == nil {
		item.Title = content.Title
		item.Summary = firstLine(content.Text)
	}
	m.store.History.Create(item)

	m.actions.Record(sess.UserID, "navigate", "", url)
	log.Printf("session %.8s navigated to %s", id, url)

	return item, nil
}

// Scrape extracts the current page content from a running session
func (m *Manager) Scrape(ctx context.Context, id string) (*models.PageContent, error) {
	_, backendSess, err := m.running(id)
	if err != nil {
		return nil, err
	}
	return m.backend.Scrape(ctx, backendSess)
}

// Screenshot renders the current page of a running session
func (m *Manager) Screenshot(ctx context.Context, id string) ([]byte, string, error) {
	_, backendSess, err := m.running(id)
	if err != nil {
		return nil, "", err
	}
	return m.backend.Screenshot(ctx, backendSess)
}

// Close marks a session as completed and releases its browser
func (m *Manager) Close(ctx context.Context, id string) error {
	sess, err := m.store.Sessions.Get(id)
	if err != nil {
		return err
	}
	if sess.Status != models.StatusRunning {
		return fmt.Errorf("session is not running")
	}
	m.terminate(ctx, sess, models.StatusCompleted)
	m.actions.Record(sess.UserID, "session_closed", "", "")
	return nil
}

// running loads a session and its backend handle, requiring RUNNING status
func (m *Manager) running(id string) (*models.BrowseSession, *browser.Session, error) {
	sess, err := m.store.Sessions.Get(id)
	if err != nil {
		return nil, nil, err
	}
	if sess.Status != models.StatusRunning {
		return nil, nil, fmt.Errorf("session is not running")
	}
	value, ok := m.backendSess.Load(id)
	if !ok {
		return nil, nil, fmt.Errorf("no browser attached to session %s", id)
	}
	return sess, value.(*browser.Session), nil
}

func (m *Manager) terminate(ctx context.Context, sess *models.BrowseSession, status models.SessionStatus) {
	if value, ok := m.backendSess.LoadAndDelete(sess.ID); ok {
		if err := m.backend.Close(ctx, value.(*browser.Session)); err != nil {
			log.Printf("warning: failed to close browser for session %.8s: %v", sess.ID, err)
		}
	}
	m.store.Sessions.Update(sess.ID, func(s *models.BrowseSession) {
		s.Status = status
	})
	m.releaseSlot(sess.UserID)
}

// acquireSlot tries to acquire a concurrency slot for the user
func (m *Manager) acquireSlot(userID string) error {
	m.mu.Lock()
	sem, exists := m.concurrency[userID]
	if !exists {
		sem = semaphore.NewWeighted(m.maxPerUser)
		m.concurrency[userID] = sem
	}
	m.mu.Unlock()

	if !sem.TryAcquire(1) {
		return fmt.Errorf("concurrency limit reached for user %s", userID)
	}
	return nil
}

// releaseSlot releases a concurrency slot for the user
func (m *Manager) releaseSlot(userID string) {
	m.mu.RLock()
	sem := m.concurrency[userID]
	m.mu.RUnlock()

	if sem != nil {
		sem.Release(1)
	}
}

// handleTimeout automatically terminates a session after its timeout
func (m *Manager) handleTimeout(id string, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	<-timer.C

	sess, err := m.store.Sessions.Get(id)
	if err != nil || sess.Status != models.StatusRunning {
		return
	}

	log.Printf("session %.8s timed out", id)
	m.terminate(context.Background(), sess, models.StatusTimedOut)
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
