// Package session holds an open joinery document: its source text, the
// current selection and the last evaluation and recompute. A Session is
// the host the join commands run against.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/joinery/pkg/command"
	"github.com/chazu/joinery/pkg/engine"
	"github.com/chazu/joinery/pkg/graph"
	"github.com/chazu/joinery/pkg/recompute"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrNoDocument is returned by operations that need an open document.
var ErrNoDocument = errors.New("session: no active document")

// Notifier shows blocking messages to the user.
type Notifier interface {
	Warn(title, text string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, text string)

func (f NotifierFunc) Warn(title, text string) { f(title, text) }

// Update is the outcome of one evaluation and recompute of the source.
type Update struct {
	Graph    *graph.DesignGraph
	Result   *recompute.Result
	Errors   []engine.EvalError
	Warnings []engine.EvalWarning
}

// OK reports whether the source evaluated and every object is valid.
func (u *Update) OK() bool {
	return len(u.Errors) == 0 && u.Result != nil && u.Result.OK()
}

// Err joins the evaluation errors and object failures into one error, or
// returns nil when the update is OK.
func (u *Update) Err() error {
	var errs []error
	for _, e := range u.Errors {
		errs = append(errs, e)
	}
	if u.Result != nil {
		for _, o := range u.Result.Failed() {
			errs = append(errs, fmt.Errorf("%s: %w", o.Node.Label(), o.Status.Err))
		}
	}
	return errors.Join(errs...)
}

// Session is an open document. It is safe for concurrent use.
type Session struct {
	id       uuid.UUID
	eng      *engine.Engine
	rc       *recompute.Recomputer
	log      *zap.Logger
	notifier Notifier

	mu        sync.Mutex
	open      bool
	path      string
	source    string
	selection []string
	last      *Update
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithNotifier sets where warnings are shown. The default only logs them.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// New returns a session with no open document.
func New(eng *engine.Engine, rc *recompute.Recomputer, opts ...Option) *Session {
	s := &Session{
		id:  uuid.New(),
		eng: eng,
		rc:  rc,
		log: zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With(zap.Stringer("document", s.id))
	return s
}

// ID identifies the session's document in logs.
func (s *Session) ID() uuid.UUID { return s.id }

// Path returns the file the document was loaded from, if any.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Source returns the current document source.
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Last returns the most recent update, or nil before the first one.
func (s *Session) Last() *Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Open replaces the document source and recomputes it.
func (s *Session) Open(ctx context.Context, source string) (*Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.source = source
	s.selection = nil
	return s.update(ctx)
}

// Load opens the document stored at path.
func (s *Session) Load(ctx context.Context, path string) (*Update, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", path, err)
	}
	u, err := s.Open(ctx, string(data))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
	return u, nil
}

// Save writes the source back to the file it was loaded from.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return errors.New("session: document has no file")
	}
	if err := os.WriteFile(s.path, []byte(s.source), 0o644); err != nil {
		return fmt.Errorf("session: write %s: %w", s.path, err)
	}
	return nil
}

// Select replaces the selection. Every name must be a document object.
func (s *Session) Select(names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrNoDocument
	}
	if s.last == nil || s.last.Graph == nil {
		if len(names) > 0 {
			return errors.New("session: document did not evaluate; nothing to select")
		}
		s.selection = nil
		return nil
	}

	objects := lo.Map(s.last.Graph.Objects(), func(n *graph.Node, _ int) string { return n.Name })
	if missing := lo.Without(names, objects...); len(missing) > 0 {
		return fmt.Errorf("session: no object named %s", strings.Join(quoteAll(missing), ", "))
	}
	s.selection = lo.Uniq(names)
	return nil
}

// RunCommand activates the command with the given ID against this session.
func (s *Session) RunCommand(ctx context.Context, id string) (string, error) {
	d, ok := command.Lookup(id)
	if !ok {
		return "", fmt.Errorf("session: unknown command %q", id)
	}
	s.log.Info("running command", zap.String("command", id), zap.Strings("selection", s.Selection()))
	return d.Activate(ctx, s)
}

// update evaluates the source and recomputes it. The caller holds s.mu.
func (s *Session) update(ctx context.Context) (*Update, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.eng.Run(s.source)
	if err != nil {
		return nil, fmt.Errorf("session: evaluate: %w", err)
	}
	u := &Update{Graph: res.Graph, Errors: res.Errors, Warnings: res.Warnings}
	if res.Graph != nil {
		if u.Result, err = s.rc.Recompute(res.Graph); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}
	s.last = u

	s.log.Debug("document updated",
		zap.Int("errors", len(u.Errors)),
		zap.Int("warnings", len(u.Warnings)),
		zap.Bool("ok", u.OK()),
	)
	return u, nil
}

// evaluate checks the source without touching the kernel. The caller
// holds s.mu.
func (s *Session) evaluate(source string) (*graph.DesignGraph, error) {
	g, evalErrs, err := s.eng.Evaluate(source)
	if err != nil {
		return nil, fmt.Errorf("session: evaluate: %w", err)
	}
	if len(evalErrs) > 0 {
		return nil, errors.Join(lo.Map(evalErrs, func(e engine.EvalError, _ int) error { return e })...)
	}
	return g, nil
}

// objectNames returns every name used in the last good graph.
func (s *Session) objectNames() map[string]bool {
	names := make(map[string]bool)
	if s.last != nil && s.last.Graph != nil {
		for name := range s.last.Graph.NameIndex {
			names[name] = true
		}
	}
	return names
}

func quoteAll(names []string) []string {
	return lo.Map(names, func(n string, _ int) string { return strconv.Quote(n) })
}
