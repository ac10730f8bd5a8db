package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/joinery/pkg/command"
	"github.com/chazu/joinery/pkg/join"
	"go.uber.org/zap"
)

var _ command.Host = (*Session)(nil)

// HasActiveDocument reports whether a document is open.
func (s *Session) HasActiveDocument() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Selection returns a copy of the selected object names.
func (s *Session) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.selection...)
}

// Warn forwards a warning to the notifier.
func (s *Session) Warn(title, text string) {
	s.log.Warn(text, zap.String("title", title))
	if s.notifier != nil {
		s.notifier.Warn(title, text)
	}
}

// OpenTransaction snapshots the document. Aborting restores the snapshot.
func (s *Session) OpenTransaction(title string) command.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &transaction{
		s:         s,
		title:     title,
		source:    s.source,
		selection: append([]string(nil), s.selection...),
		last:      s.last,
	}
}

type transaction struct {
	s         *Session
	title     string
	source    string
	selection []string
	last      *Update
	done      bool
}

func (t *transaction) Commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	t.s.log.Debug("transaction committed", zap.String("transaction", t.title))
}

func (t *transaction) Abort() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	t.s.source = t.source
	t.s.selection = t.selection
	t.s.last = t.last
	t.s.log.Info("transaction aborted", zap.String("transaction", t.title))
}

// AddJoin appends a join form to the source. The refine default of the
// engine is written out explicitly, so the feature keeps it when the
// preference later changes. The document is evaluated but not recomputed.
func (s *Session) AddJoin(base string, mode join.Mode, baseObject, toolObject string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return "", ErrNoDocument
	}

	name := uniqueName(base, s.objectNames())
	source := appendForm(s.source, joinForm(name, mode, baseObject, toolObject, s.eng.Options().RefineDefault))
	g, err := s.evaluate(source)
	if err != nil {
		return "", fmt.Errorf("session: add %s: %w", name, err)
	}

	s.source = source
	s.last = &Update{Graph: g}
	s.log.Info("join feature added",
		zap.String("object", name),
		zap.Stringer("mode", mode),
		zap.String("base", baseObject),
		zap.String("tool", toolObject),
	)
	return name, nil
}

// Recompute evaluates and recomputes the document and returns the named
// object's failure. Evaluation errors are returned as well.
func (s *Session) Recompute(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrNoDocument
	}

	u, err := s.update(ctx)
	if err != nil {
		return err
	}
	if len(u.Errors) > 0 {
		return u.Err()
	}
	o := u.Result.Get(name)
	if o == nil {
		return fmt.Errorf("session: no object named %q", name)
	}
	return o.Status.Err
}

// Hide appends a hide form for names and updates the document.
func (s *Session) Hide(names ...string) error {
	if len(names) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrNoDocument
	}

	prev := s.source
	s.source = appendForm(s.source, "(hide "+strings.Join(quoteAll(names), " ")+")")
	u, err := s.update(context.Background())
	if err == nil && len(u.Errors) > 0 {
		err = u.Err()
	}
	if err != nil {
		s.source = prev
		return fmt.Errorf("session: hide: %w", err)
	}
	return nil
}

// joinForm renders a join feature as a DSL form.
func joinForm(name string, mode join.Mode, base, tool string, refine bool) string {
	if mode == join.Bypass {
		return fmt.Sprintf("(join %s :mode :bypass :base %s :tool %s :refine %t)",
			strconv.Quote(name), strconv.Quote(base), strconv.Quote(tool), refine)
	}
	return fmt.Sprintf("(%s %s %s %s :refine %t)",
		strings.ToLower(mode.String()), strconv.Quote(name), strconv.Quote(base), strconv.Quote(tool), refine)
}

func appendForm(source, form string) string {
	if source != "" && !strings.HasSuffix(source, "\n") {
		source += "\n"
	}
	return source + form + "\n"
}

// uniqueName returns base, or base followed by the first free three digit
// counter.
func uniqueName(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s%03d", base, i)
		if !taken[name] {
			return name
		}
	}
}
