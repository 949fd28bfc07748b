package render_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gradecalc/internal/grade"
	"gradecalc/internal/model"
	"gradecalc/internal/service"
)

func apply(t *testing.T, sess *service.Session, ev service.Event) service.View {
	t.Helper()
	view, err := service.Apply(sess, ev)
	require.NoError(t, err)
	return view
}

func gradeSubmission(name string, m, s, e, h, g int) grade.Submission {
	return grade.Submission{
		Name:  name,
		Marks: model.SubjectMarks{Maths: m, Science: s, English: e, History: h, Geography: g},
	}
}
