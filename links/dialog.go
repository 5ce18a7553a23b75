package links

import (
	"context"
	"sync"

	"github.com/goliatone/go-lide-client/failure"
	"github.com/goliatone/go-lide-client/model"
)

// DialogState is the lifecycle state of a link dialog.
type DialogState int

const (
	DialogClosed DialogState = iota
	DialogOpen
	DialogSubmitting
)

func (s DialogState) String() string {
	switch s {
	case DialogClosed:
		return "closed"
	case DialogOpen:
		return "open"
	case DialogSubmitting:
		return "submitting"
	}
	return "unknown"
}

// DialogMode tells whether a dialog adds a new link or edits one.
type DialogMode int

const (
	ModeAdd DialogMode = iota
	ModeEdit
)

// Dialog drives the add/edit link form: closed, open with a prefilled draft,
// submitting, and back to closed on success or open with an inline error on
// failure.
type Dialog struct {
	manager *Manager

	mu      sync.Mutex
	state   DialogState
	mode    DialogMode
	current model.Link
	draft   model.Link
	err     error
}

// NewDialog creates a closed dialog submitting through m.
func (m *Manager) NewDialog() *Dialog {
	return &Dialog{manager: m}
}

// OpenAdd opens the dialog for a new link prefilled with draft.
func (d *Dialog) OpenAdd(draft model.Link) error {
	return d.open(ModeAdd, nil, draft)
}

// OpenEdit opens the dialog for editing current.
func (d *Dialog) OpenEdit(current model.Link) error {
	if current == nil {
		return failure.InvalidField("link", "is required")
	}
	return d.open(ModeEdit, current, current)
}

func (d *Dialog) open(mode DialogMode, current, draft model.Link) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != DialogClosed {
		return stateError("open", d.state)
	}
	d.state = DialogOpen
	d.mode = mode
	d.current = current
	d.draft = draft
	d.err = nil
	return nil
}

// SetDraft replaces the edited values. Only an open dialog accepts edits.
func (d *Dialog) SetDraft(draft model.Link) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != DialogOpen {
		return stateError("edit", d.state)
	}
	d.draft = draft
	return nil
}

// Submit sends the draft. A second submit while one is running is rejected
// without touching the first. On failure the dialog stays open with the
// error; on success it closes.
func (d *Dialog) Submit(ctx context.Context) (model.Link, error) {
	d.mu.Lock()
	if d.state != DialogOpen {
		state := d.state
		d.mu.Unlock()
		return nil, stateError("submit", state)
	}
	d.state = DialogSubmitting
	d.err = nil
	mode, current, draft := d.mode, d.current, d.draft
	d.mu.Unlock()

	var (
		result model.Link
		err    error
	)
	if mode == ModeEdit {
		result, err = d.manager.Edit(ctx, current, draft)
	} else {
		result, err = d.manager.Add(ctx, draft)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.state = DialogOpen
		d.err = err
		return nil, err
	}
	d.state = DialogClosed
	d.current = nil
	d.draft = nil
	return result, nil
}

// Cancel closes an open dialog. A submitting dialog cannot be cancelled.
func (d *Dialog) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case DialogSubmitting:
		return stateError("cancel", d.state)
	case DialogOpen:
		d.state = DialogClosed
		d.current = nil
		d.draft = nil
		d.err = nil
	}
	return nil
}

func (d *Dialog) State() DialogState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Dialog) Mode() DialogMode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Err is the inline error of the last failed submit.
func (d *Dialog) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *Dialog) Draft() model.Link {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draft
}

func stateError(action string, state DialogState) error {
	return failure.Operation(failure.CodeDialogState, "cannot "+action+" a "+state.String()+" dialog").
		WithMetadata(map[string]any{"state": state.String()})
}
