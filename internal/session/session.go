// Package session holds the state of one sorting run: the snapshot of image
// records taken at start, the Idle → Running → {Completed, Cancelled,
// Failed} state machine, and the progress counters the UI reads.
//
// A Session has exactly one writer, the sorting worker. Everything else
// observes it through Snapshot (a consistent copy of the counters), the
// event stream, or Wait. Event sends never block the worker: when the
// consumer lags and the buffer fills, progress events are dropped; terminal
// state is always available through Wait and Snapshot.
package session

import (
	"errors"
	"sync"

	"github.com/mhaussmann/textsort/internal/classify"
)

// State is the lifecycle state of a session.
type State int

const (
	Idle State = iota
	Running
	Completed
	Cancelled
	Failed
)

// String returns a stable lowercase name used in events and the journal.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is one of the three end states.
func (s State) Terminal() bool {
	return s == Completed || s == Cancelled || s == Failed
}

// ErrNotIdle is returned by Start when the session already ran.
var ErrNotIdle = errors.New("session already started")

// ImageRecord is the per-image outcome within a session.
type ImageRecord struct {
	// Path is the image's location at session start.
	Path string

	// Processed is set once the record reached its final outcome.
	Processed bool

	// CharCount is the number of counted recognized characters. Zero for
	// errored and blank-filtered images.
	CharCount int

	// Classification is Unclassified until the image is processed, then
	// ContainsText or NoText. Errored images stay Unclassified.
	Classification classify.Classification

	// Err describes the per-image error, empty on success.
	Err string

	// MovedTo is the destination path after a move, empty when the file
	// stayed in place. On dry runs it is the destination the file would
	// have been moved to.
	MovedTo string

	// Duplicate marks records whose classification was reused from a
	// perceptually identical earlier image.
	Duplicate bool
}

// Progress is the read-only view the UI polls.
type Progress struct {
	State          State
	Processed      int
	Total          int
	ContainsText   int
	NoText         int
	Errors         int
	CurrentFile    string
	CurrentClass   classify.Classification
}

// EventKind discriminates stream events.
type EventKind string

const (
	// EventStarted is emitted once, when the session enters Running.
	EventStarted EventKind = "started"

	// EventProcessing is emitted when the worker picks up an image.
	EventProcessing EventKind = "processing"

	// EventClassified is emitted when an image reached a verdict.
	EventClassified EventKind = "classified"

	// EventImageError is emitted when an image errored and was skipped.
	EventImageError EventKind = "image_error"

	// EventDone is emitted once, when the session reaches a terminal
	// state. It is the last event; the stream is closed right after.
	EventDone EventKind = "done"
)

// Event is one entry of the one-way notification stream from the worker to
// the UI.
type Event struct {
	Kind           EventKind `json:"kind"`
	Path           string    `json:"path,omitempty"`
	Classification string    `json:"classification,omitempty"`
	MovedTo        string    `json:"moved_to,omitempty"`
	Duplicate      bool      `json:"duplicate,omitempty"`
	Error          string    `json:"error,omitempty"`
	Processed      int       `json:"processed"`
	Total          int       `json:"total"`
	State          string    `json:"state,omitempty"`
}

// Session owns the records and counters of one run.
type Session struct {
	mu           sync.Mutex
	state        State
	records      []ImageRecord
	processed    int
	containsText int
	noText       int
	errored      int
	currentFile  string
	currentClass classify.Classification
	err          error

	events chan Event
	done   chan struct{}
}

// New creates an Idle session over a snapshot of image paths. The snapshot
// is fixed: files appearing in the input folder after this point are not
// part of the session.
func New(paths []string) *Session {
	records := make([]ImageRecord, len(paths))
	for i, p := range paths {
		records[i] = ImageRecord{Path: p}
	}
	return &Session{
		state:   Idle,
		records: records,
		events:  make(chan Event, 2*len(paths)+16),
		done:    make(chan struct{}),
	}
}

// Start transitions Idle → Running. Any other starting state is an error.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return ErrNotIdle
	}
	s.state = Running
	s.emit(Event{Kind: EventStarted, Total: len(s.records)})
	return nil
}

// Total returns the number of images in the snapshot.
func (s *Session) Total() int {
	return len(s.records)
}

// Record returns a copy of record i.
func (s *Session) Record(i int) ImageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[i]
}

// Records returns a copy of all records.
func (s *Session) Records() []ImageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ImageRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Begin marks record i as the one being processed and emits a processing
// event.
func (s *Session) Begin(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentFile = s.records[i].Path
	s.currentClass = classify.Unclassified
	s.emit(Event{
		Kind:      EventProcessing,
		Path:      s.records[i].Path,
		Processed: s.processed,
		Total:     len(s.records),
	})
}

// Finish applies the outcome for record i. Each record finishes exactly
// once; a second Finish for the same record panics, since it would break
// the count invariant.
func (s *Session) Finish(i int, rec ImageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.records[i].Processed {
		panic("session: record finished twice: " + rec.Path)
	}
	rec.Processed = true
	s.records[i] = rec
	s.processed++
	s.currentFile = rec.Path
	s.currentClass = rec.Classification

	ev := Event{
		Path:           rec.Path,
		Classification: rec.Classification.String(),
		MovedTo:        rec.MovedTo,
		Duplicate:      rec.Duplicate,
		Processed:      s.processed,
		Total:          len(s.records),
	}
	switch {
	case rec.Err != "":
		s.errored++
		ev.Kind = EventImageError
		ev.Error = rec.Err
		ev.Classification = ""
	case rec.Classification == classify.ContainsText:
		s.containsText++
		ev.Kind = EventClassified
	default:
		s.noText++
		ev.Kind = EventClassified
	}
	s.emit(ev)
}

// Complete transitions Running → Completed.
func (s *Session) Complete() { s.finish(Completed, nil) }

// Cancel transitions Running → Cancelled. The in-flight image has already
// finished by the time the worker calls this; remaining records stay
// Unclassified.
func (s *Session) Cancel() { s.finish(Cancelled, nil) }

// Fail transitions Running → Failed with the fatal error. Moves performed
// before the failure are not rolled back; the records identify them.
func (s *Session) Fail(err error) { s.finish(Failed, err) }

func (s *Session) finish(state State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return
	}
	s.state = state
	s.err = err
	ev := Event{
		Kind:      EventDone,
		State:     state.String(),
		Processed: s.processed,
		Total:     len(s.records),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	s.emit(ev)
	close(s.events)
	close(s.done)
}

// Snapshot returns a consistent copy of the progress counters.
func (s *Session) Snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Progress{
		State:        s.state,
		Processed:    s.processed,
		Total:        len(s.records),
		ContainsText: s.containsText,
		NoText:       s.noText,
		Errors:       s.errored,
		CurrentFile:  s.currentFile,
		CurrentClass: s.currentClass,
	}
}

// Events returns the notification stream. It is closed after the EventDone
// entry. Slow consumers lose intermediate events, never the session state.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Wait blocks until the session reaches a terminal state and returns it.
func (s *Session) Wait() State {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the fatal error of a Failed session, nil otherwise.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// emit sends without blocking; callers hold s.mu. Dropped events are
// progress-only, the terminal event always fits because the buffer is sized
// for the whole session.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
