package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

const (
	progressKey          = "lumis-journey-progress"
	incorrectRevertDelay = 2 * time.Second
	celebrationDelay     = time.Second
)

var (
	ErrUnknownArc        = errors.New("unknown arc")
	ErrInvalidOption     = errors.New("option out of range")
	ErrArcLocked         = errors.New("arc is locked")
	ErrNoSelection       = errors.New("no answer selected")
	ErrResetNotConfirmed = errors.New("reset not confirmed")
	ErrMalformedSnapshot = errors.New("malformed progress snapshot")
)

// JourneyState is the whole persisted journey.
type JourneyState struct {
	CompletedArcs   map[int]struct{}
	SelectedAnswers map[int]int
}

func NewJourneyState() JourneyState {
	return JourneyState{
		CompletedArcs:   map[int]struct{}{},
		SelectedAnswers: map[int]int{},
	}
}

func (s JourneyState) clone() JourneyState {
	out := NewJourneyState()
	for a := range s.CompletedArcs {
		out.CompletedArcs[a] = struct{}{}
	}
	for a, o := range s.SelectedAnswers {
		out.SelectedAnswers[a] = o
	}
	return out
}

type ArcStatus string

const (
	ArcLocked    ArcStatus = "locked"
	ArcAvailable ArcStatus = "available"
	ArcCompleted ArcStatus = "completed"
)

// RecomputeUI derives every arc's status from the completed set alone.
// Arc 1 is never locked; completed wins over available.
func RecomputeUI(completed map[int]struct{}) [TotalArcs]ArcStatus {
	var out [TotalArcs]ArcStatus
	for arc := 1; arc <= TotalArcs; arc++ {
		_, done := completed[arc]
		_, prevDone := completed[arc-1]
		switch {
		case done:
			out[arc-1] = ArcCompleted
		case arc == 1 || prevDone:
			out[arc-1] = ArcAvailable
		default:
			out[arc-1] = ArcLocked
		}
	}
	return out
}

// Feedback is the transient correct/incorrect marking shown after a submit.
type Feedback struct {
	Correct         bool `json:"correct"`
	CorrectOption   int  `json:"correctOption"`
	IncorrectOption *int `json:"incorrectOption,omitempty"`
}

type ArcView struct {
	Arc      int       `json:"arc"`
	Title    string    `json:"title"`
	Status   ArcStatus `json:"status"`
	Expanded bool      `json:"expanded"`
	Selected *int      `json:"selected,omitempty"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

type ProgressSummary struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
	Label     string  `json:"label"`
}

type JourneyView struct {
	Arcs     []ArcView       `json:"arcs"`
	Progress ProgressSummary `json:"progress"`
}

type SubmitResult struct {
	Arc              int      `json:"arc"`
	Correct          bool     `json:"correct"`
	AlreadyCompleted bool     `json:"alreadyCompleted,omitempty"`
	Unlocked         int      `json:"unlocked,omitempty"`
	Feedback         Feedback `json:"feedback"`
	Message          string   `json:"message"`
}

// Tracker owns the journey state and gates arcs in order. All methods are
// safe for concurrent use; timeline steps re-enter through the same lock.
type Tracker struct {
	mu        sync.Mutex
	store     ProgressStore
	notifier  Notifier
	scheduler Scheduler

	state    JourneyState
	expanded map[int]bool
	feedback map[int]Feedback

	// ctx scopes every scheduled timeline; replaced on reset/restore.
	ctx    context.Context
	cancel context.CancelFunc
}

func NewTracker(store ProgressStore, notifier Notifier, scheduler Scheduler) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		store:     store,
		notifier:  notifier,
		scheduler: scheduler,
		state:     NewJourneyState(),
		expanded:  map[int]bool{},
		feedback:  map[int]Feedback{},
		ctx:       ctx,
		cancel:    cancel,
	}
}

// LoadProgress replaces the in-memory state with the persisted snapshot.
// Absent or malformed snapshots yield an empty journey.
func (t *Tracker) LoadProgress() JourneyState {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = NewJourneyState()
	raw, err := t.store.Load(progressKey)
	switch {
	case errors.Is(err, ErrSnapshotNotFound):
	case err != nil:
		log.Printf("load progress: %v", err)
	default:
		st, err := decodeSnapshot(raw)
		if err != nil {
			log.Printf("load progress: %v; starting fresh", err)
		} else {
			t.state = st
		}
	}
	return t.state.clone()
}

func (t *Tracker) State() JourneyState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.clone()
}

// ToggleExpansion flips an arc's expanded flag unless the arc is still locked.
func (t *Tracker) ToggleExpansion(arc int) (bool, error) {
	if !validArc(arc) {
		return false, ErrUnknownArc
	}
	var out outbox
	t.mu.Lock()
	defer func() { t.mu.Unlock(); out.flush(t.notifier) }()

	if !t.availableLocked(arc) {
		out.add(toast(LevelWarning, fmt.Sprintf("Complete Arc %d first!", arc-1)))
		return false, ErrArcLocked
	}
	t.expanded[arc] = !t.expanded[arc]
	return t.expanded[arc], nil
}

func (t *Tracker) SelectAnswer(arc, option int) error {
	if !validArc(arc) {
		return ErrUnknownArc
	}
	if !validOption(option) {
		return ErrInvalidOption
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.SelectedAnswers[arc] = option
	return nil
}

// SubmitAnswer checks the selected option for arc against correct.
// A correct answer completes the arc once; re-submitting is a no-op for the
// persisted state. A wrong answer is shown, then reverted after a delay.
func (t *Tracker) SubmitAnswer(arc, correct int) (SubmitResult, error) {
	if !validArc(arc) {
		return SubmitResult{}, ErrUnknownArc
	}
	var out outbox
	t.mu.Lock()
	defer func() { t.mu.Unlock(); out.flush(t.notifier) }()

	if !t.availableLocked(arc) {
		out.add(toast(LevelWarning, fmt.Sprintf("Complete Arc %d first!", arc-1)))
		return SubmitResult{}, ErrArcLocked
	}
	selected, ok := t.state.SelectedAnswers[arc]
	if !ok {
		out.add(toast(LevelWarning, "Please select an answer first!"))
		return SubmitResult{}, ErrNoSelection
	}

	fb := Feedback{Correct: selected == correct, CorrectOption: correct}
	if !fb.Correct {
		wrong := selected
		fb.IncorrectOption = &wrong
	}
	t.feedback[arc] = fb
	res := SubmitResult{Arc: arc, Correct: fb.Correct, Feedback: fb}

	if !fb.Correct {
		res.Message = "NOT QUITE... Study the lessons above and try again, Seeker."
		t.play(Timeline{{Name: "revert", At: incorrectRevertDelay, Do: t.guarded(func(out *outbox) {
			delete(t.state.SelectedAnswers, arc)
			delete(t.feedback, arc)
			out.add(Event{Type: EventRevert, Arc: arc})
		})}})
		return res, nil
	}

	res.Message = "CORRECT! Your wisdom grows, Seeker. The path ahead illuminates."
	if _, done := t.state.CompletedArcs[arc]; done {
		res.AlreadyCompleted = true
		return res, nil
	}

	t.state.CompletedArcs[arc] = struct{}{}
	t.persistLocked()

	if arc < TotalArcs {
		res.Unlocked = arc + 1
		out.add(toast(LevelSuccess, fmt.Sprintf("Arc %d unlocked!", arc+1)))
	} else {
		t.play(Timeline{{Name: "celebration", At: celebrationDelay, Do: t.guarded(func(out *outbox) {
			out.add(Event{
				Type:    EventCelebration,
				Message: "LUMINARI ACHIEVED",
				Data: map[string]any{
					"detail": "You have completed all five arcs of wisdom, Seeker.",
				},
			})
		})}})
	}
	return res, nil
}

// ResetAll wipes the journey. Nothing happens unless confirmed is true.
func (t *Tracker) ResetAll(confirmed bool) (JourneyView, error) {
	if !confirmed {
		return t.View(), ErrResetNotConfirmed
	}
	t.mu.Lock()
	t.replaceLocked(NewJourneyState())
	view := t.viewLocked()
	t.mu.Unlock()

	t.notifier.Notify(Event{Type: EventReload})
	return view, nil
}

// Export returns the snapshot exactly as it is persisted.
func (t *Tracker) Export() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return encodeSnapshot(t.state)
}

// Restore replaces the journey with a previously exported snapshot.
func (t *Tracker) Restore(raw []byte) (JourneyView, error) {
	st, err := decodeSnapshotStrict(raw)
	if err != nil {
		return JourneyView{}, err
	}
	t.mu.Lock()
	t.replaceLocked(st)
	view := t.viewLocked()
	t.mu.Unlock()

	t.notifier.Notify(Event{Type: EventReload})
	return view, nil
}

func (t *Tracker) View() JourneyView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked()
}

func (t *Tracker) Summary() ProgressSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return summarize(len(t.state.CompletedArcs))
}

// Close cancels every pending timeline.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancel()
}

func summarize(completed int) ProgressSummary {
	return ProgressSummary{
		Completed: completed,
		Total:     TotalArcs,
		Percent:   percentOf(completed, TotalArcs),
		Label:     fmt.Sprintf("%d / %d ARCS COMPLETED", completed, TotalArcs),
	}
}

func (t *Tracker) viewLocked() JourneyView {
	statuses := RecomputeUI(t.state.CompletedArcs)
	arcs := make([]ArcView, 0, TotalArcs)
	for i, st := range statuses {
		arc := i + 1
		def, _ := arcDefinition(arc)
		v := ArcView{Arc: arc, Title: def.Title, Status: st, Expanded: t.expanded[arc]}
		if sel, ok := t.state.SelectedAnswers[arc]; ok {
			v.Selected = &sel
		}
		if fb, ok := t.feedback[arc]; ok {
			v.Feedback = &fb
		}
		arcs = append(arcs, v)
	}
	return JourneyView{Arcs: arcs, Progress: summarize(len(t.state.CompletedArcs))}
}

// availableLocked reports whether arc may be opened or answered: completed
// arcs always may, otherwise arc 1 or the successor of a completed arc.
func (t *Tracker) availableLocked(arc int) bool {
	if _, done := t.state.CompletedArcs[arc]; done || arc == 1 {
		return true
	}
	_, ok := t.state.CompletedArcs[arc-1]
	return ok
}

func (t *Tracker) replaceLocked(st JourneyState) {
	t.cancel()
	t.ctx, t.cancel = context.WithCancel(context.Background())
	t.state = st
	t.expanded = map[int]bool{}
	t.feedback = map[int]Feedback{}
	t.persistLocked()
}

// persistLocked is best effort: the in-memory state stays authoritative.
func (t *Tracker) persistLocked() {
	raw, err := encodeSnapshot(t.state)
	if err == nil {
		err = t.store.Save(progressKey, raw)
	}
	if err != nil {
		log.Printf("save progress: %v", err)
	}
}

func (t *Tracker) play(tl Timeline) {
	t.scheduler.Play(t.ctx, tl)
}

// guarded wraps a step so it runs under the lock and is dropped if the
// timeline's context was cancelled while the step waited for the lock.
// Events the step queues are delivered once the lock is released.
func (t *Tracker) guarded(fn func(out *outbox)) func() {
	ctx := t.ctx
	return func() {
		var out outbox
		t.mu.Lock()
		defer func() { t.mu.Unlock(); out.flush(t.notifier) }()
		if ctx.Err() != nil {
			return
		}
		fn(&out)
	}
}
