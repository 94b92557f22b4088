package commands

import (
	"flag"

	"taskflow/internal/form"
)

// optional is a string flag that remembers whether it was given.
type optional struct {
	value string
	set   bool
}

func (o *optional) String() string { return o.value }

func (o *optional) Set(v string) error {
	o.value = v
	o.set = true
	return nil
}

// taskFlags are the field flags of add and edit.
type taskFlags struct {
	title       optional
	description optional
	status      optional
	priority    optional
	difficulty  optional
	due         optional
}

func (f *taskFlags) register(fs *flag.FlagSet) {
	*f = taskFlags{}
	fs.Var(&f.title, "title", "")
	fs.Var(&f.title, "t", "")
	fs.Var(&f.description, "description", "")
	fs.Var(&f.description, "d", "")
	fs.Var(&f.status, "status", "")
	fs.Var(&f.status, "s", "")
	fs.Var(&f.priority, "priority", "")
	fs.Var(&f.priority, "p", "")
	fs.Var(&f.difficulty, "difficulty", "")
	fs.Var(&f.due, "due", "")
}

// changes returns the fields whose flags were given.
func (f *taskFlags) changes() form.TaskChanges {
	value := func(o *optional) *string {
		if !o.set {
			return nil
		}
		v := o.value
		return &v
	}
	return form.TaskChanges{
		Title:       value(&f.title),
		Description: value(&f.description),
		Status:      value(&f.status),
		Priority:    value(&f.priority),
		Difficulty:  value(&f.difficulty),
		DueDate:     value(&f.due),
	}
}

// apply overwrites the form fields whose flags were given.
func (f *taskFlags) apply(t *form.Task) {
	for _, p := range []struct {
		opt *optional
		dst *string
	}{
		{&f.title, &t.Title},
		{&f.description, &t.Description},
		{&f.status, &t.Status},
		{&f.priority, &t.Priority},
		{&f.difficulty, &t.Difficulty},
		{&f.due, &t.DueDate},
	} {
		if p.opt.set {
			*p.dst = p.opt.value
		}
	}
}
