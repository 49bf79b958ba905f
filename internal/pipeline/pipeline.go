package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"leadswarm/internal/analyst"
	"leadswarm/internal/closer"
	"leadswarm/internal/config"
	"leadswarm/internal/events"
	"leadswarm/internal/outreach"
	"leadswarm/internal/scout"
)

var ErrRunInProgress = errors.New("a pipeline run is already in progress")

// Deps bundles everything a run needs. Providers are interfaces so tests can
// run the whole pipeline against stubs.
type Deps struct {
	DB       *sql.DB
	Cfg      func() config.Config
	Provider scout.SearchProvider
	Getter   analyst.SiteGetter
	Analyzer analyst.Analyzer
	Sender   outreach.Sender
	Enricher outreach.EmailEnricher
	Mailbox  func(ctx context.Context) (closer.Mailbox, error)
	Hub      *events.Hub
}

type StageResult struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

type RunStatus struct {
	RunID      string        `json:"run_id"`
	Niche      string        `json:"niche,omitempty"`
	Location   string        `json:"location,omitempty"`
	Running    bool          `json:"running"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Stages     []StageResult `json:"stages"`
}

// Runner drives the stages in order and keeps the last run's status around
// for the API. Only one run may be active at a time.
type Runner struct {
	deps    Deps
	running sync.Mutex
	status  atomic.Value // RunStatus
}

func NewRunner(deps Deps) *Runner {
	r := &Runner{deps: deps}
	r.status.Store(RunStatus{})
	return r
}

func (r *Runner) Status() RunStatus {
	return r.status.Load().(RunStatus)
}

func (r *Runner) publish(runID, typ string, data any) {
	if r.deps.Hub != nil {
		r.deps.Hub.Publish(events.MakeEvent(runID, typ, 1, data))
	}
}

// Run executes scout, analyst, and sniper in order. A stage that fails is
// recorded and the next stage still runs on whatever backlog exists.
func (r *Runner) Run(ctx context.Context, niche, location string) (RunStatus, error) {
	if !r.running.TryLock() {
		return r.Status(), ErrRunInProgress
	}
	defer r.running.Unlock()

	cfg := r.deps.Cfg()
	st := RunStatus{
		RunID:     uuid.NewString(),
		Niche:     niche,
		Location:  location,
		Running:   true,
		StartedAt: time.Now().UTC(),
	}
	r.status.Store(st)
	log.Printf("[pipeline] run %s starting (%s / %s)", st.RunID, niche, location)

	stages := []struct {
		name string
		fn   func(context.Context) (int, error)
	}{
		{"scout", func(ctx context.Context) (int, error) {
			return scout.Run(ctx, r.deps.DB, cfg, r.deps.Provider, niche, location)
		}},
		{"analyst", func(ctx context.Context) (int, error) {
			return analyst.Run(ctx, r.deps.DB, cfg, r.deps.Getter, r.deps.Analyzer)
		}},
		{"sniper", func(ctx context.Context) (int, error) {
			return outreach.Run(ctx, r.deps.DB, cfg, r.deps.Sender, r.deps.Enricher)
		}},
	}

	var firstErr error
	for _, stage := range stages {
		r.publish(st.RunID, events.TypeStageStarted, map[string]string{"stage": stage.name})
		count, err := stage.fn(ctx)
		sr := StageResult{Stage: stage.name, Count: count}
		if err != nil {
			sr.Error = err.Error()
			if firstErr == nil {
				firstErr = err
			}
			log.Printf("[pipeline] stage %s: %v", stage.name, err)
			r.publish(st.RunID, events.TypeStageFailed, sr)
		} else {
			r.publish(st.RunID, events.TypeStageFinished, sr)
		}
		st.Stages = append(st.Stages, sr)
		r.status.Store(st)

		if ctx.Err() != nil {
			firstErr = ctx.Err()
			break
		}
	}

	now := time.Now().UTC()
	st.Running = false
	st.FinishedAt = &now
	r.status.Store(st)
	log.Printf("[pipeline] run %s finished", st.RunID)
	return st, firstErr
}

// RunCloser sweeps the inbox once. It dials its own mailbox session so the
// scheduler can call it on a timer without holding a connection open.
func (r *Runner) RunCloser(ctx context.Context) (closer.Result, error) {
	if r.deps.Mailbox == nil {
		return closer.Result{}, errors.New("mailbox is not configured")
	}
	mbox, err := r.deps.Mailbox(ctx)
	if err != nil {
		return closer.Result{}, err
	}
	defer mbox.Close()

	runID := uuid.NewString()
	r.publish(runID, events.TypeStageStarted, map[string]string{"stage": "closer"})
	res, err := closer.Run(ctx, r.deps.DB, r.deps.Cfg(), mbox, r.deps.Sender)
	if err != nil {
		r.publish(runID, events.TypeStageFailed, StageResult{Stage: "closer", Error: err.Error()})
		return res, err
	}
	r.publish(runID, events.TypeStageFinished, StageResult{Stage: "closer", Count: res.Replied + res.FollowedUp})
	return res, nil
}
