package board

import (
	"context"
	"errors"

	"taskflow/internal/form"
	"taskflow/internal/service"
)

// ErrNotOpen is returned when submitting a closed dialog.
var ErrNotOpen = errors.New("dialog is not open")

// CreateDialog is the new-task form.
type CreateDialog struct {
	svc   service.Service
	board *Board
	open  bool

	// Form holds the values as entered.
	Form form.Task
}

// NewCreateDialog returns a closed create dialog for b.
func NewCreateDialog(svc service.Service, b *Board) *CreateDialog {
	return &CreateDialog{svc: svc, board: b, Form: form.NewTask()}
}

// Open shows the dialog with default values.
func (d *CreateDialog) Open() {
	d.Form = form.NewTask()
	d.open = true
}

// IsOpen reports whether the dialog is shown.
func (d *CreateDialog) IsOpen() bool { return d.open }

// Close hides the dialog.
func (d *CreateDialog) Close() { d.open = false }

// Submit validates the form and creates the task. On success the task is
// appended to the board and the dialog closes. On failure the dialog stays
// open and the board is unchanged; validation failures are reported as
// *form.ValidationError without contacting the backend.
func (d *CreateDialog) Submit(ctx context.Context) (service.Task, error) {
	if !d.open {
		return service.Task{}, ErrNotOpen
	}
	fields, err := d.Form.Fields()
	if err != nil {
		return service.Task{}, err
	}
	task, err := d.svc.CreateTask(ctx, fields)
	if err != nil {
		return service.Task{}, err
	}
	d.board.Append(task)
	d.Close()
	return task, nil
}

// EditDialog is the edit-task form.
type EditDialog struct {
	svc       service.Service
	board     *Board
	open      bool
	target    service.Task
	hasTarget bool

	// Form holds the values as entered.
	Form form.Task
}

// NewEditDialog returns a closed edit dialog for b.
func NewEditDialog(svc service.Service, b *Board) *EditDialog {
	return &EditDialog{svc: svc, board: b}
}

// Target sets the task being edited. The form is reset from t whenever the
// target differs from the previous one, by id or by any field value.
func (d *EditDialog) Target(t service.Task) {
	if d.hasTarget && sameTask(d.target, t) {
		return
	}
	d.target = t
	d.hasTarget = true
	d.Form = form.TaskFrom(t)
}

// Open targets t and shows the dialog.
func (d *EditDialog) Open(t service.Task) {
	d.Target(t)
	d.open = true
}

// IsOpen reports whether the dialog is shown.
func (d *EditDialog) IsOpen() bool { return d.open }

// Close hides the dialog.
func (d *EditDialog) Close() { d.open = false }

// Submit validates the form and updates the target. On success the board
// entry is replaced and the dialog closes; otherwise the dialog stays open
// and the board is unchanged.
func (d *EditDialog) Submit(ctx context.Context) (service.Task, error) {
	if !d.open || !d.hasTarget {
		return service.Task{}, ErrNotOpen
	}
	fields, err := d.Form.Fields()
	if err != nil {
		return service.Task{}, err
	}
	task, err := UpdateTask(ctx, d.svc, d.board, d.target, fields.Patch())
	if err != nil {
		return service.Task{}, err
	}
	d.target = task
	d.Close()
	return task, nil
}

// UpdateTask sends patch for target and replaces the board entry with the
// reconciled task. Only the fields set in patch are sent. The board is
// unchanged when the backend call fails.
func UpdateTask(ctx context.Context, svc service.Service, b *Board, target service.Task, patch service.TaskPatch) (service.Task, error) {
	updated, err := svc.UpdateTask(ctx, target.ID, patch)
	if err != nil {
		return service.Task{}, err
	}
	task := merge(target.Apply(patch), updated)
	b.Replace(task)
	return task, nil
}

// DeleteTask deletes a task and removes it from the board. The board is
// unchanged when the backend call fails.
func DeleteTask(ctx context.Context, svc service.Service, b *Board, id int) error {
	if err := svc.DeleteTask(ctx, id); err != nil {
		return err
	}
	b.Remove(id)
	return nil
}

// merge overlays the non-empty fields of the server record on the local copy.
func merge(local, server service.Task) service.Task {
	if server.ID != 0 && server.ID != local.ID {
		return local
	}
	if server.Title != "" {
		local.Title = server.Title
	}
	if server.Description != "" {
		local.Description = server.Description
	}
	if server.Status != "" {
		local.Status = server.Status
	}
	if server.Priority != "" {
		local.Priority = server.Priority
	}
	if server.Difficulty != "" {
		local.Difficulty = server.Difficulty
	}
	if !server.DueDate.IsZero() {
		local.DueDate = server.DueDate
	}
	return local
}

func sameTask(a, b service.Task) bool {
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.Description == b.Description &&
		a.Status == b.Status &&
		a.Priority == b.Priority &&
		a.Difficulty == b.Difficulty &&
		a.DueDate.Equal(b.DueDate)
}
