package main

import (
	"context"
	"fmt"

	"github.com/chazu/joinery/pkg/command"
	"github.com/chazu/joinery/pkg/config"
	"github.com/chazu/joinery/pkg/kernel"
	"github.com/chazu/joinery/pkg/kernel/sdfx"
	"github.com/chazu/joinery/pkg/session"
	"github.com/chazu/joinery/pkg/tessellate"
	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"
)

// colorPalette is a default palette used to assign distinct colors to objects.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// staleColor marks meshes drawn from the last good result of a failed
// feature.
const staleColor = "#9E9E9E"

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx     context.Context
	log     *zap.Logger
	kernel  kernel.Kernel
	session *session.Session

	// dialog shows a blocking warning. Nil means the Wails message dialog.
	dialog func(title, text string)
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Object   string    `json:"object"`
	Color    string    `json:"color"`
	Stale    bool      `json:"stale"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
	Object  string `json:"object,omitempty"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	Source   string          `json:"source"`
}

// CommandData describes a join command for the frontend toolbar.
type CommandData struct {
	ID       string `json:"id"`
	MenuText string `json:"menuText"`
	ToolTip  string `json:"toolTip"`
	Pixmap   string `json:"pixmap"`
	Active   bool   `json:"active"`
}

// CommandResult is returned by RunCommand. Object is empty when the
// command did nothing, for example after a bad selection.
type CommandResult struct {
	Object string     `json:"object"`
	Error  string     `json:"error,omitempty"`
	Result EvalResult `json:"result"`
}

// NewApp creates a new App with the default configuration and the sdfx
// kernel.
func NewApp() *App {
	cfg := config.Default()
	k := sdfx.New(sdfx.WithMeshCells(cfg.Kernel.MeshCells), sdfx.WithVolumeCells(cfg.Kernel.VolumeCells))
	a, err := newApp(*cfg, k, zap.NewNop())
	if err != nil {
		panic(err) // the default configuration is always valid
	}
	return a
}

func newApp(cfg config.Config, k kernel.Kernel, log *zap.Logger) (*App, error) {
	a := &App{log: log, kernel: k}
	s, err := session.FromConfig(cfg, k, log, session.WithNotifier(session.NotifierFunc(a.warn)))
	if err != nil {
		return nil, err
	}
	a.session = s
	return a, nil
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

func (a *App) context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// warn shows a blocking warning dialog.
func (a *App) warn(title, text string) {
	if a.dialog != nil {
		a.dialog(title, text)
		return
	}
	if a.ctx == nil {
		return
	}
	_, err := runtime.MessageDialog(a.ctx, runtime.MessageDialogOptions{
		Type:    runtime.WarningDialog,
		Title:   title,
		Message: text,
	})
	if err != nil {
		a.log.Warn("message dialog failed", zap.Error(err))
	}
}

// Evaluate takes Lisp source and returns mesh data + errors.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	u, err := a.session.Open(a.context(), source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("evaluate failed", zap.Error(err))
		result := newEvalResult(source)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	return a.render(u, source)
}

// Commands lists the join commands with their availability.
func (a *App) Commands() []CommandData {
	var out []CommandData
	for _, d := range command.All() {
		out = append(out, CommandData{
			ID:       d.ID,
			MenuText: d.MenuText,
			ToolTip:  d.ToolTip,
			Pixmap:   d.Pixmap,
			Active:   d.IsActive(a.session),
		})
	}
	return out
}

// RunCommand selects the given objects and runs a join command on them.
func (a *App) RunCommand(id string, selection []string) CommandResult {
	var res CommandResult
	if err := a.session.Select(selection...); err != nil {
		res.Error = err.Error()
		res.Result = a.current()
		return res
	}

	name, err := a.session.RunCommand(a.context(), id)
	if err != nil {
		a.log.Warn("command failed", zap.String("command", id), zap.Error(err))
		res.Error = err.Error()
	}
	res.Object = name
	res.Result = a.current()
	return res
}

// current renders the session's last update.
func (a *App) current() EvalResult {
	return a.render(a.session.Last(), a.session.Source())
}

func newEvalResult(source string) EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
		Source:   source,
	}
}

// render converts an update into the frontend format.
func (a *App) render(u *session.Update, source string) EvalResult {
	result := newEvalResult(source)
	if u == nil {
		return result
	}

	for _, e := range u.Errors {
		result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	for _, w := range u.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}
	if u.Result == nil {
		return result
	}

	for _, o := range u.Result.Failed() {
		result.Errors = append(result.Errors, EvalErrorData{
			Message: fmt.Sprintf("%s is %s: %v", o.Node.Label(), o.Status.State, o.Status.Err),
			Object:  o.Node.Label(),
		})
	}

	meshes, err := tessellate.Tessellate(a.context(), u.Result, a.kernel)
	if err != nil {
		a.log.Error("tessellate failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}

	for i, m := range meshes {
		color := colorPalette[i%len(colorPalette)]
		if m.Stale {
			color = staleColor
		}
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Object:   m.Object,
			Color:    color,
			Stale:    m.Stale,
		})
	}
	return result
}
