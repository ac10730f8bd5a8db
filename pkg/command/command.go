// Package command implements the user commands that create join features
// from the current selection. Every command is one row of a descriptor
// table; there is no per-mode command type.
package command

import (
	"context"
	"fmt"

	"github.com/chazu/joinery/pkg/join"
)

// Host is the document and GUI environment a command runs against.
type Host interface {
	// HasActiveDocument reports whether a document is open.
	HasActiveDocument() bool
	// Selection returns the selected object names in selection order.
	Selection() []string
	// Warn shows a blocking warning to the user.
	Warn(title, text string)
	// OpenTransaction starts an undoable change to the document.
	OpenTransaction(title string) Transaction
	// AddJoin creates a join feature named after base, made unique within
	// the document, and returns the name used.
	AddJoin(base string, mode join.Mode, baseObject, toolObject string) (string, error)
	// Recompute recomputes the document and reports the named object's
	// failure, if any.
	Recompute(ctx context.Context, name string) error
	// Hide hides the named objects in the view.
	Hide(names ...string) error
}

// Transaction groups document changes so they can be undone as one.
type Transaction interface {
	Commit()
	Abort()
}

// Descriptor describes one join command.
type Descriptor struct {
	ID          string
	Mode        join.Mode
	FeatureName string
	MenuText    string
	ToolTip     string
	Pixmap      string

	// Shown when the selection is not exactly two objects.
	SelectionTitle string
	SelectionText  string
}

const (
	pixmap         = "PartDesign_InternalExternalGear"
	selectionTitle = "Bad selection"
)

var descriptors = []Descriptor{
	{
		ID:             "Part_ConnectFeature",
		Mode:           join.Connect,
		FeatureName:    "Connect",
		MenuText:       "Connect objects...",
		ToolTip:        "Fuses objects, taking care to preserve voids.",
		Pixmap:         pixmap,
		SelectionTitle: selectionTitle,
		SelectionText:  "Two solids need to be selected, first!",
	},
	{
		ID:             "Part_EmbedFeature",
		Mode:           join.Embed,
		FeatureName:    "Embed",
		MenuText:       "Embed object",
		ToolTip:        "Fuses one object into another, taking care to preserve voids.",
		Pixmap:         pixmap,
		SelectionTitle: selectionTitle,
		SelectionText:  "Select base object, then the object to embed, and invoke this tool.",
	},
	{
		ID:             "Part_CutoutFeature",
		Mode:           join.Cutout,
		FeatureName:    "Cutout",
		MenuText:       "Cutout for object",
		ToolTip:        "Makes a cutout in one object to fit another object.",
		Pixmap:         pixmap,
		SelectionTitle: selectionTitle,
		SelectionText:  "Select the object to make a cutout in, then the object that should fit into the cutout, and invoke this tool.",
	},
}

// All returns the command descriptors in menu order.
func All() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// Lookup finds a descriptor by command ID.
func Lookup(id string) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ForMode returns the descriptor of the command creating mode features.
func ForMode(mode join.Mode) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Mode == mode {
			return d, true
		}
	}
	return Descriptor{}, false
}

// IsActive reports whether the command can run.
func (d Descriptor) IsActive(h Host) bool {
	return h != nil && h.HasActiveDocument()
}

// Activate runs the command. With exactly two objects selected it creates
// one feature using the first as base and the second as tool, recomputes
// it once and hides both inputs, returning the new feature's name. Any
// other selection shows a warning and returns an empty name and no error.
// A failing step rolls back the whole change.
func (d Descriptor) Activate(ctx context.Context, h Host) (string, error) {
	if !d.IsActive(h) {
		return "", fmt.Errorf("%s: no active document", d.ID)
	}

	sel := h.Selection()
	if len(sel) != 2 {
		h.Warn(d.SelectionTitle, d.SelectionText)
		return "", nil
	}

	tx := h.OpenTransaction("Create " + d.Mode.String() + "ObjectsFeature")
	name, err := d.create(ctx, h, sel[0], sel[1])
	if err != nil {
		tx.Abort()
		return "", fmt.Errorf("%s: %w", d.ID, err)
	}
	tx.Commit()
	return name, nil
}

func (d Descriptor) create(ctx context.Context, h Host, base, tool string) (string, error) {
	name, err := h.AddJoin(d.FeatureName, d.Mode, base, tool)
	if err != nil {
		return "", err
	}
	if err := h.Recompute(ctx, name); err != nil {
		return "", err
	}
	if err := h.Hide(base, tool); err != nil {
		return "", err
	}
	return name, nil
}
