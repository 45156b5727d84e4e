package engine

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/seantiz/textlife/internal/gate"
	"github.com/seantiz/textlife/internal/generator"
	"github.com/seantiz/textlife/internal/grid"
	"github.com/seantiz/textlife/internal/model"
)

// Sentinel errors for requests the engine declines. These are expected
// races from a concurrent UI, not faults; the caller can simply retry once
// the conflicting operation finishes.
var (
	ErrStepInProgress = errors.New("a generation step is already running")
	ErrCellBusy       = errors.New("cell already has an update in flight")
	ErrUpdateInFlight = errors.New("single-cell updates are still in flight")
	ErrOutOfBounds    = errors.New("coordinate is outside the grid")
	ErrInvalidSize    = errors.New("grid size must be at least 1")
	ErrBadBoard       = errors.New("board contents do not match its dimensions")
)

// Engine owns the grid and drives generation against the external text
// service. Every external call passes through the admission gate, so a
// full step over a large grid becomes a controlled trickle of requests
// rather than a burst.
type Engine struct {
	gate   *gate.Limiter
	gen    generator.Generator
	logger *slog.Logger
	broker *Broker

	mu       sync.Mutex
	grid     *grid.Grid
	inflight map[grid.Coord]struct{}
	stepping bool
	stepID   string

	wg sync.WaitGroup // background work launched by Start*

	stepsRun       atomic.Uint64
	cellsGenerated atomic.Uint64
	cellsFailed    atomic.Uint64
}

// New creates an engine owning an empty cols×rows grid.
func New(cols, rows int, lim *gate.Limiter, gen generator.Generator, logger *slog.Logger) *Engine {
	return &Engine{
		gate:     lim,
		gen:      gen,
		logger:   logger,
		broker:   NewBroker(),
		grid:     grid.New(cols, rows),
		inflight: make(map[grid.Coord]struct{}),
	}
}

// Broker returns the engine's event broker for SSE subscription.
func (e *Engine) Broker() *Broker {
	return e.broker
}

// Dims returns the current grid dimensions.
func (e *Engine) Dims() (cols, rows int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid.Cols(), e.grid.Rows()
}

// Cells returns a copy of the current grid contents.
func (e *Engine) Cells() [][]grid.Cell {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid.Cells()
}

// InFlight returns the coordinates currently awaiting or executing an
// external call, sorted row-major for a stable response.
func (e *Engine) InFlight() []grid.Coord {
	e.mu.Lock()
	coords := make([]grid.Coord, 0, len(e.inflight))
	for c := range e.inflight {
		coords = append(coords, c)
	}
	e.mu.Unlock()

	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Y != coords[j].Y {
			return coords[i].Y < coords[j].Y
		}
		return coords[i].X < coords[j].X
	})
	return coords
}

// StepInProgress reports whether a full step is running, and its ID.
func (e *Engine) StepInProgress() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stepID, e.stepping
}

// Stats is a point-in-time summary of engine activity.
type Stats struct {
	StepsRun       uint64 `json:"steps_run"`
	CellsGenerated uint64 `json:"cells_generated"`
	CellsFailed    uint64 `json:"cells_failed"`
	InFlight       int    `json:"in_flight"`
	StepInProgress bool   `json:"step_in_progress"`
}

// Stats returns current counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	inflight := len(e.inflight)
	stepping := e.stepping
	e.mu.Unlock()

	return Stats{
		StepsRun:       e.stepsRun.Load(),
		CellsGenerated: e.cellsGenerated.Load(),
		CellsFailed:    e.cellsFailed.Load(),
		InFlight:       inflight,
		StepInProgress: stepping,
	}
}

// Wait blocks until all background work launched by StartStep and
// StartCellUpdate has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// stepState is everything a running step needs, captured at claim time so
// later grid mutations cannot reach it.
type stepState struct {
	id     string
	rule   string
	snap   *grid.Snapshot
	coords []grid.Coord
}

// beginStep claims the step slot and captures the snapshot. Steps and
// single-cell updates exclude each other in both directions: a step is
// declined while any cell still has an external call in flight, just as
// beginCell declines while a step runs. Coordinates are shuffled fresh
// each step so no region of the grid is systematically first or last in
// line for admission.
func (e *Engine) beginStep(rule string) (*stepState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stepping {
		return nil, ErrStepInProgress
	}
	if len(e.inflight) > 0 {
		return nil, ErrUpdateInFlight
	}

	st := &stepState{
		id:   model.NewID(),
		rule: rule,
		snap: e.grid.Snapshot(),
	}
	cols, rows := e.grid.Cols(), e.grid.Rows()
	st.coords = make([]grid.Coord, 0, cols*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			st.coords = append(st.coords, grid.Coord{X: x, Y: y})
		}
	}
	rand.Shuffle(len(st.coords), func(i, j int) {
		st.coords[i], st.coords[j] = st.coords[j], st.coords[i]
	})

	e.stepping = true
	e.stepID = st.id
	return st, nil
}

// runStep launches one task per coordinate and blocks on the completion
// barrier: the step is over only when every task has resolved, succeeded
// or failed.
func (e *Engine) runStep(ctx context.Context, st *stepState) {
	e.logger.Info("step started", "step_id", st.id, "cells", len(st.coords), "rule_len", len(st.rule))
	e.broker.Publish(Event{Type: EventStepStarted, StepID: st.id})

	var wg sync.WaitGroup
	for _, c := range st.coords {
		wg.Add(1)
		go func(c grid.Coord) {
			defer wg.Done()
			e.runCell(ctx, st.id, st.snap, c, st.rule, false)
		}(c)
	}
	wg.Wait()

	e.stepsRun.Add(1)
	stepsTotal.Inc()

	e.mu.Lock()
	e.stepping = false
	e.stepID = ""
	e.mu.Unlock()

	e.broker.Publish(Event{Type: EventStepCompleted, StepID: st.id})
	e.logger.Info("step completed", "step_id", st.id)
}

// RunStep executes a full generation pass over every cell and blocks until
// the completion barrier. It returns ErrStepInProgress when a step is
// already running; the running step is unaffected.
func (e *Engine) RunStep(ctx context.Context, rule string) error {
	st, err := e.beginStep(rule)
	if err != nil {
		return err
	}
	e.runStep(ctx, st)
	return nil
}

// StartStep is RunStep detached: the step slot and snapshot are claimed
// before it returns, so a concurrent second request is already rejected,
// and the pass itself runs in the background. The returned ID correlates
// the step's events on the broker stream.
func (e *Engine) StartStep(ctx context.Context, rule string) (string, error) {
	st, err := e.beginStep(rule)
	if err != nil {
		return "", err
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.runStep(ctx, st)
	}()
	return st.id, nil
}

// beginCell validates a single-cell request and claims the coordinate.
// Claiming up front is the single-flight guard: a second request for the
// same cell is rejected even while the first is still waiting on admission.
func (e *Engine) beginCell(x, y int) (*grid.Snapshot, grid.Coord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stepping {
		return nil, grid.Coord{}, ErrStepInProgress
	}
	if !e.grid.InBounds(x, y) {
		return nil, grid.Coord{}, ErrOutOfBounds
	}
	c := grid.Coord{X: x, Y: y}
	if _, busy := e.inflight[c]; busy {
		return nil, grid.Coord{}, ErrCellBusy
	}
	e.inflight[c] = struct{}{}
	cellsInFlight.Set(float64(len(e.inflight)))
	return e.grid.Snapshot(), c, nil
}

// UpdateCell regenerates a single cell and blocks until it completes.
// It is rejected while a full step runs, when (x, y) is out of bounds, or
// when that cell already has an update in flight. Updates on distinct
// cells may run concurrently, each gated individually.
func (e *Engine) UpdateCell(ctx context.Context, x, y int, rule string) error {
	snap, c, err := e.beginCell(x, y)
	if err != nil {
		return err
	}
	e.runCell(ctx, "", snap, c, rule, true)
	return nil
}

// StartCellUpdate is UpdateCell detached: validation and the single-flight
// claim happen before it returns, the generation itself in the background.
func (e *Engine) StartCellUpdate(ctx context.Context, x, y int, rule string) error {
	snap, c, err := e.beginCell(x, y)
	if err != nil {
		return err
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.runCell(ctx, "", snap, c, rule, true)
	}()
	return nil
}

// runCell is the per-cell task: admission, generation, write-back. marked
// reports whether the caller already added the coordinate to the in-flight
// set (single-cell updates claim it up front; step tasks mark only after
// admission, since the step itself already excludes competing writers).
func (e *Engine) runCell(ctx context.Context, stepID string, snap *grid.Snapshot, c grid.Coord, rule string, marked bool) {
	err := e.gate.Acquire(ctx)
	if err == nil {
		defer e.gate.Release()
		if !marked {
			e.markInFlight(c)
			marked = true
		}
	}
	if marked {
		defer e.clearInFlight(c)
	}
	if err != nil {
		e.recordFailure(stepID, c, "admission wait cancelled: "+err.Error())
		return
	}

	nb := snap.Neighborhood(c.X, c.Y)
	text, genErr := e.gen.Generate(ctx, generator.Request{
		Rule:    rule,
		Current: nb.Current,
		North:   nb.North,
		South:   nb.South,
		West:    nb.West,
		East:    nb.East,
	})
	if genErr != nil {
		e.recordFailure(stepID, c, genErr.Error())
		return
	}
	e.recordResult(stepID, c, text)
}

func (e *Engine) markInFlight(c grid.Coord) {
	e.mu.Lock()
	e.inflight[c] = struct{}{}
	cellsInFlight.Set(float64(len(e.inflight)))
	e.mu.Unlock()
}

func (e *Engine) clearInFlight(c grid.Coord) {
	e.mu.Lock()
	delete(e.inflight, c)
	cellsInFlight.Set(float64(len(e.inflight)))
	e.mu.Unlock()
}

// recordResult writes a successful generation into the live grid. A write
// whose coordinate no longer exists (the grid shrank while the call was in
// flight) is dropped.
func (e *Engine) recordResult(stepID string, c grid.Coord, text string) {
	e.mu.Lock()
	ok := e.grid.SetText(c.X, c.Y, text)
	e.mu.Unlock()

	if !ok {
		e.logger.Debug("dropped write outside resized grid", "x", c.X, "y", c.Y)
		return
	}
	e.cellsGenerated.Add(1)
	cellsGeneratedTotal.Inc()
	e.broker.Publish(Event{Type: EventCellUpdated, StepID: stepID, X: c.X, Y: c.Y, Text: text})
}

// recordFailure marks the cell with the failure message. The failure is
// contained to this cell; siblings and the step barrier are unaffected.
func (e *Engine) recordFailure(stepID string, c grid.Coord, msg string) {
	e.mu.Lock()
	ok := e.grid.SetErr(c.X, c.Y, msg)
	e.mu.Unlock()

	if !ok {
		return
	}
	e.cellsFailed.Add(1)
	cellsFailedTotal.Inc()
	e.logger.Warn("cell generation failed", "x", c.X, "y", c.Y, "error", msg)
	e.broker.Publish(Event{Type: EventCellFailed, StepID: stepID, X: c.X, Y: c.Y, Error: msg})
}

// Resize replaces the grid with a size×size grid, preserving the top-left
// overlap of the old contents. It is legal while tasks are in flight: they
// hold their own snapshot, and any write landing outside the new bounds is
// dropped.
func (e *Engine) Resize(size int) error {
	if size < 1 {
		return ErrInvalidSize
	}

	e.mu.Lock()
	e.grid = e.grid.Resize(size, size)
	e.mu.Unlock()

	e.logger.Info("grid resized", "size", size)
	e.broker.Publish(Event{Type: EventGridResized, Cols: size, Rows: size})
	return nil
}

// SetCellText writes user-provided text directly into a cell, clearing any
// error marker. No external call is involved, so the gate is not consulted.
func (e *Engine) SetCellText(x, y int, text string) error {
	e.mu.Lock()
	ok := e.grid.SetText(x, y, text)
	e.mu.Unlock()

	if !ok {
		return ErrOutOfBounds
	}
	e.broker.Publish(Event{Type: EventCellUpdated, X: x, Y: y, Text: text})
	return nil
}

// Restore replaces the grid contents wholesale from a saved board. It is
// rejected while a step is running so a load cannot race an entire pass of
// pending writes.
func (e *Engine) Restore(b *model.Board) error {
	g, ok := grid.FromCells(b.Cols, b.Rows, b.Cells)
	if !ok {
		return ErrBadBoard
	}

	e.mu.Lock()
	if e.stepping {
		e.mu.Unlock()
		return ErrStepInProgress
	}
	e.grid = g
	e.mu.Unlock()

	e.logger.Info("board restored", "board", b.Name, "cols", b.Cols, "rows", b.Rows)
	e.broker.Publish(Event{Type: EventGridResized, Cols: b.Cols, Rows: b.Rows})
	return nil
}
