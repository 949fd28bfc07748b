package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gradecalc/internal/grade"
	"gradecalc/internal/model"
)

// parseSubmission reads the sidebar form. Marks behave like bounded number
// inputs: blank is 0 and anything outside [0,100] is clamped.
func parseSubmission(r *http.Request) (grade.Submission, error) {
	if err := r.ParseForm(); err != nil {
		return grade.Submission{}, fmt.Errorf("bad form: %w", err)
	}

	sub := grade.Submission{Name: r.PostForm.Get("name")}
	for _, subject := range model.Subjects {
		raw := strings.TrimSpace(r.PostForm.Get(string(subject)))
		score := 0
		if raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return grade.Submission{}, fmt.Errorf("%s marks must be a whole number", subject)
			}
			score = grade.ClampMark(n)
		}
		sub.Marks.Set(subject, score)
	}
	return sub, nil
}
