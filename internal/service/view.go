package service

import (
	"errors"
	"fmt"

	"gradecalc/internal/grade"
	"gradecalc/internal/model"
)

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
)

const (
	msgEmptyStore = "No student data yet. Add some from the sidebar!"
	msgNotFound   = "Selected student not found."
)

type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Event is one user interaction: an optional form submission and the
// currently selected student name.
type Event struct {
	Submitted  bool
	Submission grade.Submission
	Selected   string
}

// View is everything the page renders after an interaction. Records, Names
// and Chart are empty when the store holds nothing.
type View struct {
	Records  []model.StudentRecord `json:"records"`
	Names    []string              `json:"names"`
	Selected string                `json:"selected"`
	Chart    *model.ChartData      `json:"chart,omitempty"`
	Created  *model.StudentRecord  `json:"created,omitempty"`
	Notices  []Notice              `json:"notices"`
}

func (v View) Empty() bool {
	return len(v.Records) == 0
}

func (v View) Rows() []model.Row {
	rows := make([]model.Row, 0, len(v.Records))
	for _, r := range v.Records {
		rows = append(rows, r.Row())
	}
	return rows
}

// Apply runs one interaction against the session: a valid submission is
// appended, then the store is read back and the selection resolved. The only
// error is ErrSessionEnded; store failures are reported as view warnings.
func Apply(sess *Session, ev Event) (View, error) {
	var view View
	err := sess.Do(func(store RecordStore) error {
		view = apply(store, ev)
		return nil
	})
	return view, err
}

func apply(store RecordStore, ev Event) View {
	view := View{Notices: []Notice{}}

	if ev.Submitted {
		if record, ok := grade.Calculate(ev.Submission); ok {
			if err := store.Append(record); err != nil {
				view.warn(fmt.Sprintf("Could not save %s: %v", record.Name, err))
			} else {
				view.Created = &record
				view.Notices = append(view.Notices, Notice{Level: NoticeSuccess, Message: fmt.Sprintf("Student %s added!", record.Name)})
			}
		}
	}

	records, err := store.Records()
	if err != nil {
		view.warn(fmt.Sprintf("Could not load students: %v", err))
		return view
	}
	if len(records) == 0 {
		view.Notices = append(view.Notices, Notice{Level: NoticeInfo, Message: msgEmptyStore})
		return view
	}
	view.Records = records

	names, err := store.Names()
	if err != nil {
		view.warn(fmt.Sprintf("Could not load student names: %v", err))
		return view
	}
	view.Names = names

	view.Selected = ev.Selected
	if view.Selected == "" {
		view.Selected = names[0]
	}

	record, err := store.FindByName(view.Selected)
	switch {
	case errors.Is(err, ErrStudentNotFound):
		view.warn(msgNotFound)
	case err != nil:
		view.warn(fmt.Sprintf("Could not load %s: %v", view.Selected, err))
	default:
		chart := ProjectChart(record)
		view.Chart = &chart
	}
	return view
}

func (v *View) warn(msg string) {
	v.Notices = append(v.Notices, Notice{Level: NoticeWarning, Message: msg})
}
