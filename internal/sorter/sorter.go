// Package sorter runs the sorting pipeline: snapshot the input folder,
// classify each image through the prefilters and the OCR engine, and move
// classified files to their destination folder.
//
// One worker goroutine processes images sequentially and is the sole
// mutator of the session. Cancellation is cooperative: the context is
// checked once per image, an in-flight recognition is allowed to finish.
package sorter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/corona10/goimagehash"

	"github.com/mhaussmann/textsort/internal/classify"
	"github.com/mhaussmann/textsort/internal/config"
	"github.com/mhaussmann/textsort/internal/history"
	"github.com/mhaussmann/textsort/internal/ocr"
	"github.com/mhaussmann/textsort/internal/prefilter"
	"github.com/mhaussmann/textsort/internal/report"
	"github.com/mhaussmann/textsort/internal/scan"
	"github.com/mhaussmann/textsort/internal/session"
)

// ErrSessionActive is returned by Start while a previous session is still
// running. Concurrent sessions are not supported; the caller must cancel or
// wait out the active one.
var ErrSessionActive = errors.New("a sorting session is already active")

// Sorter classifies and sorts the images of one input folder. A Sorter can
// run many sessions, but only one at a time.
type Sorter struct {
	cfg    config.SortConfig
	engine ocr.Engine

	running atomic.Bool
}

// New returns a sorter for cfg using engine for recognition.
func New(cfg config.SortConfig, engine ocr.Engine) *Sorter {
	return &Sorter{cfg: cfg, engine: engine}
}

// Start validates the configuration, snapshots the input folder and starts
// the worker goroutine. The returned session is already Running; observe it
// through Events, Snapshot and Wait.
//
// Errors returned here mean the session never started: invalid
// configuration, an unreadable input folder, or an active previous session.
func (s *Sorter) Start(ctx context.Context) (*session.Session, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSessionActive
	}
	started := false
	defer func() {
		if !started {
			s.running.Store(false)
		}
	}()

	paths, err := scan.Snapshot(s.cfg.InputDir, s.cfg.Recursive)
	if err != nil {
		return nil, err
	}

	var log *report.Logger
	if s.cfg.LogPath != "" {
		log, err = report.Create(s.cfg.LogPath)
		if err != nil {
			return nil, err
		}
	}

	var journal *history.Store
	var journalID int64
	if s.cfg.HistoryPath != "" {
		journal, err = history.Open(s.cfg.HistoryPath)
		if err != nil {
			log.Close()
			return nil, err
		}
		journalID, err = journal.BeginSession(s.cfg.InputDir, s.cfg.OutputDir, s.cfg.Threshold)
		if err != nil {
			log.Close()
			journal.Close()
			return nil, err
		}
	}

	sess := session.New(paths)
	if err := sess.Start(); err != nil {
		log.Close()
		if journal != nil {
			journal.Close()
		}
		return nil, err
	}

	started = true
	go s.run(ctx, sess, log, journal, journalID)
	return sess, nil
}

// run is the session worker. It owns the log and the journal and releases
// them on every exit path.
func (s *Sorter) run(ctx context.Context, sess *session.Session, log *report.Logger, journal *history.Store, journalID int64) {
	defer s.running.Store(false)
	defer log.Close()
	if journal != nil {
		defer journal.Close()
	}

	finish := func(state session.State, err error) {
		switch state {
		case session.Completed:
			sess.Complete()
		case session.Cancelled:
			sess.Cancel()
		case session.Failed:
			sess.Fail(err)
		}
		p := sess.Snapshot()
		log.Infof("session %s: processed %d/%d, text %d, no-text %d, errors %d",
			state, p.Processed, p.Total, p.ContainsText, p.NoText, p.Errors)
		if journal != nil {
			if jerr := journal.FinishSession(journalID, state, p); jerr != nil {
				log.Errorf("failed to update session journal: %v", jerr)
			}
		}
	}

	classifier := s.cfg.Classifier()

	// A zero threshold accepts every image, including blank ones; the
	// uniform-color shortcut must not override that.
	var uniform *prefilter.Uniform
	if s.cfg.DetectBlank && (s.cfg.Threshold > 0 || s.cfg.DensityThreshold > 0) {
		uniform = &prefilter.Uniform{}
	}
	var dedup *prefilter.Dedup
	if s.cfg.DetectDuplicates {
		dedup = &prefilter.Dedup{}
	}

	log.Infof("session started: %d images in %s, threshold %d",
		sess.Total(), s.cfg.InputDir, s.cfg.Threshold)

	// Recognition must not be interrupted mid-image; cancellation is
	// observed only at the top of the loop.
	imageCtx := context.WithoutCancel(ctx)

	for i := 0; i < sess.Total(); i++ {
		if ctx.Err() != nil {
			finish(session.Cancelled, nil)
			return
		}

		sess.Begin(i)
		rec := s.classifyImage(imageCtx, sess.Record(i).Path, classifier, uniform, dedup)

		if rec.Err == "" {
			if fatal := s.place(&rec); fatal != nil {
				log.Errorf("%s: %v", rec.Path, fatal)
				finish(session.Failed, fatal)
				return
			}
		}

		switch {
		case rec.Err != "":
			log.Errorf("%s: %s", rec.Path, rec.Err)
		case rec.MovedTo != "" && s.cfg.DryRun:
			log.Infof("%s: %s (%d chars), would move to %s", rec.Path, rec.Classification, rec.CharCount, rec.MovedTo)
		case rec.MovedTo != "":
			log.Infof("%s: %s (%d chars), moved to %s", rec.Path, rec.Classification, rec.CharCount, rec.MovedTo)
		default:
			log.Infof("%s: %s (%d chars), left in place", rec.Path, rec.Classification, rec.CharCount)
		}

		if journal != nil {
			if err := journal.RecordImage(journalID, rec); err != nil {
				log.Errorf("failed to journal %s: %v", rec.Path, err)
			}
		}

		sess.Finish(i, rec)
	}

	finish(session.Completed, nil)
}

// classifyImage produces the record for one image: prefilters, OCR,
// threshold policy. Every failure is recorded on the record, never
// returned; per-image errors must not abort the session.
func (s *Sorter) classifyImage(ctx context.Context, path string, classifier classify.Classifier, uniform *prefilter.Uniform, dedup *prefilter.Dedup) session.ImageRecord {
	rec := session.ImageRecord{Path: path}

	var img image.Image
	if uniform != nil || dedup != nil || s.cfg.DensityThreshold > 0 {
		var err error
		img, err = scan.Decode(path)
		if err != nil {
			rec.Err = err.Error()
			return rec
		}
	}

	// A visually uniform image cannot contain readable text.
	if uniform != nil && uniform.IsBlank(img) {
		rec.Classification = classify.NoText
		return rec
	}

	var imgHash *goimagehash.ImageHash
	if dedup != nil {
		imgHash = dedup.Hash(img)
		if class, ok := dedup.Match(imgHash); ok {
			rec.Classification = class
			rec.Duplicate = true
			return rec
		}
	}

	res, err := s.engine.Recognize(ctx, path)
	if err != nil {
		rec.Err = err.Error()
		return rec
	}

	rec.CharCount = classifier.CharCount(res.Text)
	if s.cfg.DensityThreshold > 0 {
		bounds := img.Bounds()
		rec.Classification = classifier.ClassifyDensity(res.Text, bounds.Dx()*bounds.Dy(), s.cfg.DensityThreshold)
	} else {
		rec.Classification = classifier.Classify(res.Text)
	}

	if dedup != nil {
		dedup.Remember(imgHash, rec.Classification)
	}
	return rec
}

// place moves the file to its destination folder, if any. Per-image move
// problems land on the record; a non-nil return means the destination
// itself became unusable and the session must fail.
func (s *Sorter) place(rec *session.ImageRecord) error {
	var destDir string
	switch rec.Classification {
	case classify.ContainsText:
		destDir = s.cfg.OutputDir
	case classify.NoText:
		destDir = s.cfg.NoTextDir
	}
	if destDir == "" {
		return nil
	}

	dest := uniqueDest(filepath.Join(destDir, filepath.Base(rec.Path)))
	if s.cfg.DryRun {
		rec.MovedTo = dest
		return nil
	}

	if err := moveFile(rec.Path, dest); err != nil {
		// Distinguish a broken destination (fatal) from a problem with
		// this one file (recoverable).
		if _, statErr := os.Stat(destDir); statErr != nil {
			return fmt.Errorf("destination folder inaccessible: %w", err)
		}
		rec.Err = err.Error()
		return nil
	}
	rec.MovedTo = dest
	return nil
}
