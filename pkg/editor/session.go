// Package editor wires the expression core to hosting editor surfaces.
//
// A Session owns the full pipeline for one editable field: buffer
// snapshots in, highlight instructions and debounced change notifications
// out. Sessions hold no global state; the Manager owns the mapping from
// surface IDs to sessions explicitly.
package editor

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"

	"github.com/inlet-lang/inlet/pkg/highlight"
	"github.com/inlet-lang/inlet/pkg/notify"
	"github.com/inlet-lang/inlet/pkg/resolve"
	"github.com/inlet-lang/inlet/pkg/segment"
)

const (
	defaultMemoTTL     = 5 * time.Minute
	defaultMemoCleanup = 10 * time.Minute
)

// Snapshot is the editing surface's view of a field at one revision. The
// core receives snapshots by value and never holds a live reference to the
// surface's buffer. Cursor is a byte offset, or NoCursor when the field is
// not focused.
type Snapshot struct {
	Text     string
	Revision int64
	Cursor   int
}

// NoCursor marks a snapshot without a caret position.
const NoCursor = -1

// Options configures a session.
type Options struct {
	// FieldPath and FieldOwner identify the field in change notifications.
	FieldPath  string
	FieldOwner string
	// Delims default to {{ / }}.
	Delims segment.Delimiters
	// Window is the notifier's quiescent window; zero means the default.
	Window time.Duration
}

// PassResult summarizes one segmentation/resolution/diff pass.
type PassResult struct {
	Revision    int64
	Resolutions []resolve.Resolution
	// Applied is how many highlight instructions were emitted to the
	// projector this pass.
	Applied int
	// Diagnostics aggregates the evaluation failures of the pass
	// (incomplete expressions excluded). It is informational: a pass
	// with diagnostics still succeeded.
	Diagnostics error
}

// Session runs the pipeline for one field.
type Session struct {
	id        string
	opts      Options
	resolver  *resolve.Resolver
	projector highlight.Projector
	notifier  *notify.Notifier
	memo      *gocache.Cache

	mu         sync.Mutex
	data       resolve.Context
	snapshot   Snapshot
	resolved   []resolve.Resolution // all resolutions of the last pass
	marked     []resolve.Resolution // subset currently marked on the surface
	completion CompletionSource
	closed     bool
}

func newSession(id string, opts Options, projector highlight.Projector, emit func(notify.Change)) *Session {
	if !optsDelimsValid(opts) {
		opts.Delims = segment.DefaultDelimiters()
	}
	var notifyOpts []notify.Option
	if opts.Window > 0 {
		notifyOpts = append(notifyOpts, notify.WithWindow(opts.Window))
	}
	return &Session{
		id:        id,
		opts:      opts,
		resolver:  resolve.New(),
		projector: projector,
		notifier:  notify.New(opts.FieldPath, opts.FieldOwner, emit, notifyOpts...),
		memo:      gocache.New(defaultMemoTTL, defaultMemoCleanup),
		data:      resolve.EmptyContext(),
		snapshot:  Snapshot{Cursor: NoCursor},
	}
}

func optsDelimsValid(opts Options) bool {
	return opts.Delims.Open != "" && opts.Delims.Close != ""
}

// ID returns the surface identifier this session is attached to.
func (s *Session) ID() string {
	return s.id
}

// UpdateBuffer runs one pass over a new buffer snapshot: segment, resolve
// (reusing memoized resolutions for unchanged spans), diff against the
// previous pass, project the instructions, and arm the change notifier.
//
// Snapshots older than the last processed revision are dropped.
func (s *Session) UpdateBuffer(ctx context.Context, snap Snapshot) (PassResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return PassResult{}, errors.New("session is closed")
	}
	if snap.Revision < s.snapshot.Revision {
		zerolog.Ctx(ctx).Debug().
			Int64("revision", snap.Revision).
			Int64("latest", s.snapshot.Revision).
			Msg("dropping stale buffer snapshot")
		return PassResult{Revision: s.snapshot.Revision}, nil
	}

	// caret-only snapshots (same text, new revision) re-run the pass for
	// suppression but are not mutations and must not arm a notification
	textChanged := snap.Text != s.snapshot.Text

	res, err := s.runPass(ctx, snap)
	if err != nil {
		return PassResult{}, err
	}
	if textChanged {
		s.notifier.Push(snap.Text)
	}
	return res, nil
}

// SetDataContext swaps the runtime data. All memoized resolutions are
// invalidated and the current buffer is re-marked in full.
func (s *Session) SetDataContext(ctx context.Context, data resolve.Context) (PassResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return PassResult{}, errors.New("session is closed")
	}
	s.data = data
	s.memo.Flush()
	zerolog.Ctx(ctx).Debug().
		Str("session", s.id).
		Int("bindings", data.Names()).
		Msg("data context replaced")
	// context changes do not count as buffer mutations, so the notifier
	// is not armed here
	return s.runPass(ctx, s.snapshot)
}

// runPass executes one synchronous pipeline turn. Callers hold s.mu.
func (s *Session) runPass(ctx context.Context, snap Snapshot) (PassResult, error) {
	var current []resolve.Resolution
	for seg := range segment.Scan(snap.Text, s.opts.Delims) {
		if seg.Kind != segment.Resolvable {
			continue
		}
		current = append(current, s.resolveMemo(ctx, seg))
	}

	// the span under the caret is suppressed from marking while it is
	// being typed; it re-appears on the first pass with the caret gone
	markable := current
	if snap.Cursor != NoCursor {
		markable = nil
		for _, res := range current {
			if res.Segment.Span.ContainsOffset(snap.Cursor) {
				continue
			}
			markable = append(markable, res)
		}
	}

	instrs := highlight.Diff(s.marked, markable)
	if len(instrs) > 0 {
		if err := s.projector.Apply(ctx, instrs); err != nil {
			return PassResult{}, errors.Errorf("applying highlight instructions: %w", err)
		}
	}

	s.snapshot = snap
	s.resolved = current
	s.marked = markable

	var diags error
	for _, res := range current {
		if res.Err != nil && res.State != resolve.StateIncomplete {
			diags = multierr.Append(diags, res.Err)
		}
	}

	zerolog.Ctx(ctx).Debug().
		Str("session", s.id).
		Int64("revision", snap.Revision).
		Int("segments", len(current)).
		Int("instructions", len(instrs)).
		Msg("pass complete")

	return PassResult{
		Revision:    snap.Revision,
		Resolutions: current,
		Applied:     len(instrs),
		Diagnostics: diags,
	}, nil
}

// resolveMemo reuses the prior resolution for a span whose (raw text,
// offset) identity is unchanged; reused entries are returned verbatim, so
// they are byte-identical across passes.
func (s *Session) resolveMemo(ctx context.Context, seg segment.Segment) resolve.Resolution {
	key := resolve.Resolution{Segment: seg}.Key()
	if cached, ok := s.memo.Get(key); ok {
		if res, ok := cached.(resolve.Resolution); ok {
			return res
		}
	}
	res := s.resolver.Resolve(ctx, seg, s.data)
	s.memo.SetDefault(key, res)
	return res
}

// Preview renders the last pass as plain text with resolved values
// substituted in.
func (s *Session) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return resolve.Preview(s.snapshot.Text, s.resolved)
}

// Flatten returns the aggregate resolvable list of the last pass,
// structural segments excluded.
func (s *Session) Flatten() []resolve.Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return resolve.Flatten(s.resolved)
}

// Close tears the session down: pending notifications are discarded, all
// markings are removed from the surface, and further calls fail.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.notifier.Dispose()

	if instrs := highlight.Diff(s.marked, nil); len(instrs) > 0 {
		if err := s.projector.Apply(ctx, instrs); err != nil {
			return errors.Errorf("clearing highlights on close: %w", err)
		}
	}
	s.marked = nil
	s.resolved = nil
	return nil
}
