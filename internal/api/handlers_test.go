package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/shehryarbajwa/browserpilot/internal/actionlog"
	"github.com/shehryarbajwa/browserpilot/internal/ai"
	"github.com/shehryarbajwa/browserpilot/internal/api"
	"github.com/shehryarbajwa/browserpilot/internal/browser"
	"github.com/shehryarbajwa/browserpilot/internal/chat"
	"github.com/shehryarbajwa/browserpilot/internal/ratelimit"
	"github.com/shehryarbajwa/browserpilot/internal/session"
	"github.com/shehryarbajwa/browserpilot/internal/store"
	"github.com/shehryarbajwa/browserpilot/internal/task"
	"github.com/shehryarbajwa/browserpilot/pkg/models"
)

type fixture struct {
	router  *mux.Router
	store   *store.Store
	tracker *task.Tracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := store.New()
	actions := actionlog.New(0)
	sim := browser.NewSimulator()
	sim.Latency = 0

	sessions := session.NewManager(st, sim, actions, 10)
	tracker := task.NewTracker(st, actions, 5*time.Millisecond, 5)
	chats := chat.NewService(st, ai.NewMockGenerator("Understood."), actions)

	handler := api.NewHandler(st, sessions, tracker, chats, actions)
	router := handler.SetupRoutes(ratelimit.NewLimiter(100000, 1000), 100000)

	return &fixture{router: router, store: st, tracker: tracker}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return out
}

func (f *fixture) createTemplate(t *testing.T) *models.TaskTemplate {
	t.Helper()
	return f.store.Templates.Create(&models.TaskTemplate{
		UserID: "demo-user",
		Name:   "Data Extraction",
		Steps: []models.TemplateStep{
			{Type: "navigate", Description: "Open page"},
			{Type: "scrape", Description: "Collect rows"},
			{Type: "export", Description: "Write CSV"},
		},
	})
}

func TestExecuteTaskUnknownTemplate(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "POST", "/api/tasks/execute", models.ExecuteTaskRequest{TemplateID: "ghost"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	if f.store.Executions.Len() != 0 {
		t.Fatalf("failed execute must not create an execution record")
	}

	body := decode[map[string]string](t, rec)
	if body["error"] == "" {
		t.Fatalf("expected error body")
	}
}

func TestExecuteTaskMissingTemplateID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "POST", "/api/tasks/execute", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestExecuteThenListShowsRunning(t *testing.T) {
	f := newFixture(t)
	tmpl := f.createTemplate(t)

	rec := f.do(t, "POST", "/api/tasks/execute", models.ExecuteTaskRequest{TemplateID: tmpl.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	started := decode[models.TaskExecution](t, rec)
	if started.Status != models.ExecutionRunning || started.Progress != 0 {
		t.Fatalf("expected running/0, got %s/%d", started.Status, started.Progress)
	}

	list := decode[[]models.TaskExecution](t, f.do(t, "GET", "/api/tasks/executions", nil))
	if len(list) != 1 {
		t.Fatalf("expected 1 execution, got %d", len(list))
	}
	if list[0].ID != started.ID {
		t.Fatalf("expected listed execution to match started one")
	}
}

func TestExecutionLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)
	tmpl := f.createTemplate(t)

	started := decode[models.TaskExecution](t, f.do(t, "POST", "/api/tasks/execute", models.ExecuteTaskRequest{TemplateID: tmpl.ID}))

	deadline := time.Now().Add(3 * time.Second)
	var final models.TaskExecution
	for {
		final = decode[models.TaskExecution](t, f.do(t, "GET", "/api/tasks/executions/"+started.ID, nil))
		if final.Status.Terminal() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("execution did not finish")
		}
		time.Sleep(2 * time.Millisecond)
	}

	if final.Status != models.ExecutionCompleted || final.Progress != 100 {
		t.Fatalf("expected completed/100, got %s/%d", final.Status, final.Progress)
	}
	if final.CompletedAt == nil {
		t.Fatalf("expected completedAt on completed execution")
	}
	if len(final.Logs) != 3 {
		t.Fatalf("expected 3 log lines, got %v", final.Logs)
	}
}

func TestCancelExecutionOverHTTP(t *testing.T) {
	st := store.New()
	slow := task.NewTracker(st, actionlog.New(0), time.Second, 5)
	chats := chat.NewService(st, ai.NewMockGenerator(""), actionlog.New(0))
	sim := browser.NewSimulator()
	sim.Latency = 0
	handler := api.NewHandler(st, session.NewManager(st, sim, actionlog.New(0), 10), slow, chats, actionlog.New(0))
	router := handler.SetupRoutes(ratelimit.NewLimiter(100000, 1000), 100000)
	slowFixture := &fixture{router: router, store: st}

	tmpl := slowFixture.createTemplate(t)
	started := decode[models.TaskExecution](t, slowFixture.do(t, "POST", "/api/tasks/execute", models.ExecuteTaskRequest{TemplateID: tmpl.ID}))

	rec := slowFixture.do(t, "POST", "/api/tasks/executions/"+started.ID+"/cancel", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		exec := decode[models.TaskExecution](t, slowFixture.do(t, "GET", "/api/tasks/executions/"+started.ID, nil))
		if exec.Status == models.ExecutionCancelled {
			if exec.CompletedAt != nil {
				t.Fatalf("cancelled execution must not have completedAt")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("execution was not cancelled, status %s", exec.Status)
		}
		time.Sleep(2 * time.Millisecond)
	}

	rec = slowFixture.do(t, "POST", "/api/tasks/executions/"+started.ID+"/cancel", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 cancelling terminal execution, got %d", rec.Code)
	}
}

func TestExecuteTaskSlotLimitReturns429(t *testing.T) {
	st := store.New()
	slow := task.NewTracker(st, actionlog.New(0), time.Second, 1)
	chats := chat.NewService(st, ai.NewMockGenerator(""), actionlog.New(0))
	sim := browser.NewSimulator()
	sim.Latency = 0
	handler := api.NewHandler(st, session.NewManager(st, sim, actionlog.New(0), 10), slow, chats, actionlog.New(0))
	router := handler.SetupRoutes(ratelimit.NewLimiter(100000, 1000), 100000)
	f := &fixture{router: router, store: st}

	tmpl := f.createTemplate(t)

	rec := f.do(t, "POST", "/api/tasks/execute", models.ExecuteTaskRequest{TemplateID: tmpl.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for first execute, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, "POST", "/api/tasks/execute", models.ExecuteTaskRequest{TemplateID: tmpl.ID})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 when execution cap is hit, got %d: %s", rec.Code, rec.Body.String())
	}
	if f.store.Executions.Len() != 1 {
		t.Fatalf("rejected execute must not create a record, len=%d", f.store.Executions.Len())
	}
}

func TestLogsEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "POST", "/api/logs", models.AppendLogRequest{Action: "navigate", URL: "https://example.test"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode[map[string]bool](t, rec)
	if !body["logged"] {
		t.Fatalf("expected logged=true")
	}

	for i := 0; i < 5; i++ {
		f.do(t, "POST", "/api/logs", models.AppendLogRequest{Action: fmt.Sprintf("action-%d", i)})
	}

	entries := decode[[]models.ActionLogEntry](t, f.do(t, "GET", "/api/logs?limit=3", nil))
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Action != "action-4" {
		t.Fatalf("expected most recent first, got %q", entries[0].Action)
	}

	rec = f.do(t, "POST", "/api/logs", models.AppendLogRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing action, got %d", rec.Code)
	}
}

func TestProfileCRUD(t *testing.T) {
	f := newFixture(t)

	created := decode[models.BrowserProfile](t, f.do(t, "POST", "/api/profiles", models.CreateProfileRequest{Name: "Work", IsDefault: true}))
	if created.ID == "" || !created.IsDefault {
		t.Fatalf("unexpected profile %+v", created)
	}

	second := decode[models.BrowserProfile](t, f.do(t, "POST", "/api/profiles", models.CreateProfileRequest{Name: "Personal"}))

	rec := f.do(t, "POST", "/api/profiles/"+second.ID+"/default", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// setting a new default clears the old one
	first := decode[models.BrowserProfile](t, f.do(t, "GET", "/api/profiles/"+created.ID, nil))
	if first.IsDefault {
		t.Fatalf("expected previous default cleared")
	}

	newName := "Work (renamed)"
	updated := decode[models.BrowserProfile](t, f.do(t, "PATCH", "/api/profiles/"+created.ID, models.UpdateProfileRequest{Name: &newName}))
	if updated.Name != newName {
		t.Fatalf("expected renamed profile, got %q", updated.Name)
	}

	rec = f.do(t, "PATCH", "/api/profiles/ghost", models.UpdateProfileRequest{Name: &newName})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 updating missing profile, got %d", rec.Code)
	}

	rec = f.do(t, "DELETE", "/api/profiles/"+second.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	list := decode[[]models.BrowserProfile](t, f.do(t, "GET", "/api/profiles", nil))
	if len(list) != 1 {
		t.Fatalf("expected 1 profile left, got %d", len(list))
	}
}

func TestSessionNavigateAndHistory(t *testing.T) {
	f := newFixture(t)

	profile := decode[models.BrowserProfile](t, f.do(t, "POST", "/api/profiles", models.CreateProfileRequest{Name: "Default"}))

	sess := decode[models.BrowseSession](t, f.do(t, "POST", "/api/sessions", models.CreateSessionRequest{ProfileID: profile.ID}))
	if sess.Status != models.StatusRunning {
		t.Fatalf("expected RUNNING, got %s", sess.Status)
	}

	rec := f.do(t, "POST", "/api/sessions/"+sess.ID+"/navigate", models.NavigateRequest{URL: "https://en.wikipedia.org/wiki/Go"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	items := decode[[]models.BrowsingHistoryItem](t, f.do(t, "GET", "/api/history?profileId="+profile.ID, nil))
	if len(items) != 1 {
		t.Fatalf("expected 1 history item, got %d", len(items))
	}
	if items[0].URL != "https://en.wikipedia.org/wiki/Go" {
		t.Fatalf("unexpected history url %q", items[0].URL)
	}

	content := decode[models.PageContent](t, f.do(t, "GET", "/api/sessions/"+sess.ID+"/scrape", nil))
	if content.Title == "" || len(content.Links) == 0 {
		t.Fatalf("expected scraped content, got %+v", content)
	}

	shot := f.do(t, "GET", "/api/sessions/"+sess.ID+"/screenshot", nil)
	if shot.Code != http.StatusOK {
		t.Fatalf("expected 200 screenshot, got %d", shot.Code)
	}
	if ct := shot.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Fatalf("expected svg screenshot, got %q", ct)
	}

	rec = f.do(t, "DELETE", "/api/sessions/"+sess.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestCreateSessionUnknownProfile(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "POST", "/api/sessions", models.CreateSessionRequest{ProfileID: "ghost"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestChatEndpoints(t *testing.T) {
	f := newFixture(t)

	resp := decode[models.ChatResponse](t, f.do(t, "POST", "/api/chat", models.ChatRequest{Message: "Summarize this page"}))
	if resp.Reply != "Understood." {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}

	conv := decode[models.ChatConversation](t, f.do(t, "GET", "/api/chat", nil))
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
	}

	rec := f.do(t, "POST", "/api/chat", models.ChatRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty message, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "GET", "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
