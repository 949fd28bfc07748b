package grade

import (
	"strings"

	"gradecalc/internal/model"
)

// Submission is one filled-in form. Marks are trusted to be in [0,100];
// range checks belong to whoever builds the submission.
type Submission struct {
	Name  string             `json:"name"`
	Marks model.SubjectMarks `json:"marks"`
}

const (
	MinMark = 0
	MaxMark = 100
)

// ClampMark pulls a raw score into [MinMark, MaxMark]. Input collectors call
// it; Calculate does not.
func ClampMark(n int) int {
	return min(max(n, MinMark), MaxMark)
}

// Calculate derives a record from a submission. It returns false, and no
// record, when the trimmed name is empty.
func Calculate(sub Submission) (model.StudentRecord, bool) {
	name := strings.TrimSpace(sub.Name)
	if name == "" {
		return model.StudentRecord{}, false
	}

	total := sub.Marks.Sum()
	avg := float64(total) / 5.0

	return model.StudentRecord{
		Name:    name,
		Marks:   sub.Marks,
		Total:   total,
		Average: avg,
		Grade:   ForAverage(avg),
	}, true
}

// ForAverage maps an average onto its band, checked from the top down.
func ForAverage(avg float64) model.Grade {
	switch {
	case avg >= 90:
		return model.GradeA
	case avg >= 75:
		return model.GradeB
	case avg >= 60:
		return model.GradeC
	case avg >= 40:
		return model.GradeD
	default:
		return model.GradeF
	}
}
