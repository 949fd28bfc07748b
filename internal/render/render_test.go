package render_test

import (
	"bytes"
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradecalc/internal/model"
	"gradecalc/internal/render"
	"gradecalc/internal/service"
)

func ashaChart() model.ChartData {
	return service.ProjectChart(model.StudentRecord{
		Name:  "Asha",
		Marks: model.SubjectMarks{Maths: 90, Science: 85, English: 88, History: 92, Geography: 95},
	})
}

func TestBarChart(t *testing.T) {
	bc := render.BarChart(ashaChart())

	assert.Equal(t, "Marks of Asha", bc.Title)
	require.Len(t, bc.Bars, 5)
	assert.Equal(t, "Maths", bc.Bars[0].Label)
	assert.Equal(t, 90.0, bc.Bars[0].Value)
	assert.Equal(t, "Geography", bc.Bars[4].Label)
	assert.Len(t, bc.Elements, 1)
}

func TestChartPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Chart(&buf, ashaChart(), render.ChartPNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestChartSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Chart(&buf, ashaChart(), render.ChartSVG))

	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "Marks of Asha")
	assert.Contains(t, out, "Geography")
}

func TestChartAllZero(t *testing.T) {
	var buf bytes.Buffer
	data := service.ProjectChart(model.StudentRecord{Name: "Zed"})
	assert.NoError(t, render.Chart(&buf, data, render.ChartPNG))
}

func TestChartFormatContentType(t *testing.T) {
	assert.Equal(t, "image/png", render.ChartPNG.ContentType())
	assert.Equal(t, "image/svg+xml", render.ChartSVG.ContentType())
}

func TestMarkdown(t *testing.T) {
	out := string(render.Markdown("Made by **Bhaskar**\n\n<script>x</script>"))
	assert.Contains(t, out, "<strong>Bhaskar</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestPageRenderEmpty(t *testing.T) {
	page, err := render.NewPage("made with *care*")
	require.NoError(t, err)

	sess := service.NewSessionManager(nil, 0, nil).Start()
	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf, apply(t, sess, service.Event{}), template.HTML(`<input type="hidden" name="gorilla.csrf.Token" value="tok">`)))

	out := buf.String()
	assert.Contains(t, out, "No student data yet. Add some from the sidebar!")
	assert.NotContains(t, out, "<table>")
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, `value="tok"`)
	assert.Contains(t, out, "<em>care</em>")
}

func TestPageRenderWithStudents(t *testing.T) {
	page, err := render.NewPage("")
	require.NoError(t, err)

	sess := service.NewSessionManager(nil, 0, nil).Start()
	apply(t, sess, service.Event{Submitted: true, Submission: gradeSubmission("Asha", 90, 85, 88, 92, 95)})
	view := apply(t, sess, service.Event{Submitted: true, Submission: gradeSubmission("Ravi & Co", 40, 40, 40, 40, 40)})

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf, view, ""))

	out := buf.String()
	assert.Contains(t, out, "Student Ravi &amp; Co added!")
	assert.Contains(t, out, "<td>450</td>")
	assert.Contains(t, out, "<td>90.0</td>")
	assert.Equal(t, 2, strings.Count(out, "<option"))
	assert.Contains(t, out, `<option value="Asha" selected>`)
	assert.Contains(t, out, `src="/chart.png?student=Asha"`)
}
