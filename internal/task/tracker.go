// Package task runs template executions in the background and tracks their
// progress, logs, and terminal state.
package task

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/shehryarbajwa/browserpilot/internal/actionlog"
	"github.com/shehryarbajwa/browserpilot/internal/store"
	"github.com/shehryarbajwa/browserpilot/pkg/models"
)

// ErrTooManyExecutions is returned when a user's running-execution cap is hit
var ErrTooManyExecutions = errors.New("too many running executions")

// Tracker creates execution records and advances them as a background
// routine steps through a template. Each execution is sequential; separate
// executions interleave freely since their records are independent.
type Tracker struct {
	store       *store.Store
	actions     *actionlog.Log
	concurrency map[string]*semaphore.Weighted
	cancels     sync.Map // executionID -> context.CancelFunc
	mu          sync.RWMutex

	stepDelay  time.Duration
	maxPerUser int64

	// RunStep performs one template step. The default runner simulates the
	// step by waiting stepDelay. Replaceable so tests can inject failures.
	RunStep func(ctx context.Context, step models.TemplateStep, params map[string]string) error
}

// NewTracker creates a tracker. stepDelay is the simulated duration of one
// step (1s when zero); maxPerUser caps concurrently running executions per
// user (5 when zero).
func NewTracker(st *store.Store, actions *actionlog.Log, stepDelay time.Duration, maxPerUser int64) *Tracker {
	if stepDelay <= 0 {
		stepDelay = time.Second
	}
	if maxPerUser <= 0 {
		maxPerUser = 5
	}
	t := &Tracker{
		store:       st,
		actions:     actions,
		concurrency: make(map[string]*semaphore.Weighted),
		stepDelay:   stepDelay,
		maxPerUser:  maxPerUser,
	}
	t.RunStep = t.simulateStep
	return t
}

// Execute starts a new execution of the template and returns its record
// with status running and progress 0. The step loop runs in the background.
func (t *Tracker) Execute(ctx context.Context, req models.ExecuteTaskRequest) (*models.TaskExecution, error) {
	if req.TemplateID == "" {
		return nil, fmt.Errorf("templateId is required")
	}

	tmpl, err := t.store.Templates.Get(req.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", req.TemplateID, err)
	}

	userID := req.UserID
	if userID == "" {
		userID = tmpl.UserID
	}

	if err := t.acquireSlot(userID); err != nil {
		return nil, err
	}

	exec := t.store.Executions.Create(&models.TaskExecution{
		TemplateID: tmpl.ID,
		UserID:     userID,
		Status:     models.ExecutionRunning,
		Progress:   0,
		Logs:       []string{},
		Parameters: req.Parameters,
	})

	t.actions.Record(userID, "task_executed", fmt.Sprintf("template %s", tmpl.Name), "")
	log.Printf("execution %.8s started for template %q (%d steps)", exec.ID, tmpl.Name, len(tmpl.Steps))

	// Register the cancel func before the loop starts so Cancel can reach
	// an execution the moment Execute returns it.
	runCtx, cancel := context.WithCancel(context.Background())
	t.cancels.Store(exec.ID, cancel)

	go t.run(runCtx, cancel, exec.ID, userID, tmpl, req.Parameters)

	return exec, nil
}

// Get retrieves an execution by ID
func (t *Tracker) Get(id string) (*models.TaskExecution, error) {
	return t.store.Executions.Get(id)
}

// List returns executions, most recently started first, optionally
// filtered by user
func (t *Tracker) List(userID string) []*models.TaskExecution {
	execs := t.store.Executions.List(func(e *models.TaskExecution) bool {
		return userID == "" || e.UserID == userID
	})
	// store lists in insertion order; newest first for the dashboard
	for i, j := 0, len(execs)-1; i < j; i, j = i+1, j-1 {
		execs[i], execs[j] = execs[j], execs[i]
	}
	return execs
}

// Cancel requests cancellation of a running execution. The step loop
// observes it at its next suspension point.
func (t *Tracker) Cancel(id string) error {
	exec, err := t.store.Executions.Get(id)
	if err != nil {
		return err
	}
	if exec.Status.Terminal() {
		return fmt.Errorf("execution is not running")
	}
	value, ok := t.cancels.Load(id)
	if !ok {
		return fmt.Errorf("execution is not running")
	}
	value.(context.CancelFunc)()
	t.actions.Record(exec.UserID, "task_cancelled", fmt.Sprintf("execution %s", id), "")
	return nil
}

// run is the background step loop for one execution
func (t *Tracker) run(runCtx context.Context, cancel context.CancelFunc, execID, userID string, tmpl *models.TaskTemplate, params map[string]string) {
	defer func() {
		t.cancels.Delete(execID)
		cancel()
		t.releaseSlot(userID)
	}()
	defer func() {
		if r := recover(); r != nil {
			t.finish(execID, models.ExecutionFailed, map[string]any{"error": fmt.Sprint(r)})
		}
	}()

	n := len(tmpl.Steps)
	for i, step := range tmpl.Steps {
		if runCtx.Err() != nil {
			t.finishCancelled(execID, i)
			return
		}

		if err := t.RunStep(runCtx, step, params); err != nil {
			if runCtx.Err() != nil {
				t.finishCancelled(execID, i)
				return
			}
			t.finish(execID, models.ExecutionFailed, map[string]any{"error": err.Error()})
			return
		}

		desc := step.Description
		if desc == "" {
			desc = step.Type
		}
		progress := stepProgress(i+1, n)
		t.store.Executions.Update(execID, func(e *models.TaskExecution) {
			e.Logs = append(e.Logs, fmt.Sprintf("Step %d: %s", i+1, desc))
			e.Progress = progress
		})
	}

	t.finish(execID, models.ExecutionCompleted, map[string]any{
		"summary":    fmt.Sprintf("Completed %d steps of %q", n, tmpl.Name),
		"templateId": tmpl.ID,
	})
}

// simulateStep is the default step runner: it just takes the configured
// simulated duration, honoring cancellation.
func (t *Tracker) simulateStep(ctx context.Context, step models.TemplateStep, params map[string]string) error {
	select {
	case <-time.After(t.stepDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// finish moves an execution to a terminal status. CompletedAt is stamped
// for completed and failed only.
func (t *Tracker) finish(execID string, status models.ExecutionStatus, result map[string]any) {
	now := time.Now()
	t.store.Executions.Update(execID, func(e *models.TaskExecution) {
		if e.Status.Terminal() {
			return
		}
		e.Status = status
		e.Result = result
		if status == models.ExecutionCompleted {
			e.Progress = 100
		}
		if status == models.ExecutionCompleted || status == models.ExecutionFailed {
			e.CompletedAt = &now
		}
	})
	log.Printf("execution %.8s finished with status %s", execID, status)
}

func (t *Tracker) finishCancelled(execID string, atStep int) {
	t.store.Executions.Update(execID, func(e *models.TaskExecution) {
		if e.Status.Terminal() {
			return
		}
		e.Status = models.ExecutionCancelled
		e.Logs = append(e.Logs, fmt.Sprintf("Cancelled before step %d", atStep+1))
	})
	log.Printf("execution %.8s cancelled", execID)
}

// stepProgress is round(done/total * 100); a 3-step template reports
// 33, 67, 100.
func stepProgress(done, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// acquireSlot tries to acquire an execution slot for the user
func (t *Tracker) acquireSlot(userID string) error {
	t.mu.Lock()
	sem, exists := t.concurrency[userID]
	if !exists {
		sem = semaphore.NewWeighted(t.maxPerUser)
		t.concurrency[userID] = sem
	}
	t.mu.Unlock()

	if !sem.TryAcquire(1) {
		return fmt.Errorf("user %s: %w", userID, ErrTooManyExecutions)
	}
	return nil
}

func (t *Tracker) releaseSlot(userID string) {
	t.mu.RLock()
	sem := t.concurrency[userID]
	t.mu.RUnlock()

	if sem != nil {
		sem.Release(1)
	}
}
