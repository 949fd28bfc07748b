package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradecalc/internal/handler"
	"gradecalc/internal/model"
	"gradecalc/internal/render"
	"gradecalc/internal/service"
)

type testApp struct {
	server   *httptest.Server
	client   *http.Client
	sessions *service.SessionManager
}

func setupApp(t *testing.T, opts handler.Options) *testApp {
	t.Helper()
	sessions := service.NewSessionManager(nil, time.Hour, nil)
	page, err := render.NewPage("footer")
	require.NoError(t, err)

	server := httptest.NewServer(handler.NewHTTPHandler(sessions, page, kitlog.NewNopLogger(), opts))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testApp{
		server:   server,
		client:   &http.Client{Jar: jar},
		sessions: sessions,
	}
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (a *testApp) postJSON(t *testing.T, path string, v interface{}) (*http.Response, []byte) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	resp, err := a.client.Post(a.server.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func studentForm(name string, marks ...string) url.Values {
	form := url.Values{"name": {name}}
	for i, subject := range model.Subjects {
		if i < len(marks) {
			form.Set(string(subject), marks[i])
		}
	}
	return form
}

func TestIndexEmptyStore(t *testing.T) {
	app := setupApp(t, handler.Options{})

	resp, body := app.get(t, "/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "No student data yet. Add some from the sidebar!")
	assert.NotContains(t, body, "<table>")
	assert.Equal(t, 1, app.sessions.Len())
}

func TestSubmitAndChart(t *testing.T) {
	app := setupApp(t, handler.Options{})

	resp, body := app.postForm(t, "/students", studentForm("Asha", "90", "85", "88", "92", "95"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Student Asha added!")
	assert.Contains(t, body, "<td>450</td>")
	assert.Contains(t, body, "<td>A</td>")
	assert.Contains(t, body, "/chart.png?student=Asha")

	resp, body = app.get(t, "/chart.png?student=Asha")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "\x89PNG"))

	resp, body = app.get(t, "/chart.svg?student=Asha")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Marks of Asha")

	resp, _ = app.get(t, "/chart.gif?student=Asha")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = app.get(t, "/chart.png?student=Nobody")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// one browser, one session
	assert.Equal(t, 1, app.sessions.Len())
}

func TestSubmitForm(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantBody   string
		wantRows   int
	}{
		{"Blank name is skipped", studentForm("   ", "100"), http.StatusOK, "No student data yet", 0},
		{"Marks are clamped", studentForm("Ravi", "150", "-5", "90", "", "100"), http.StatusOK, "<td>290</td>", 1},
		{"Non-numeric mark", studentForm("Meera", "ninety"), http.StatusBadRequest, "Maths marks must be a whole number", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupApp(t, handler.Options{})

			resp, body := app.postForm(t, "/students", tt.form)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Contains(t, body, tt.wantBody)

			resp, data := app.get(t, "/api/students")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var list struct {
				Data []model.Row `json:"data"`
			}
			require.NoError(t, json.Unmarshal([]byte(data), &list))
			assert.Len(t, list.Data, tt.wantRows)
		})
	}
}

func TestSelectionMissShowsWarning(t *testing.T) {
	app := setupApp(t, handler.Options{})
	app.postForm(t, "/students", studentForm("Asha", "50"))

	resp, body := app.get(t, "/?student=Nobody")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Selected student not found.")
	assert.Contains(t, body, "<table>")
	assert.NotContains(t, body, "<img")
}

func TestEndSession(t *testing.T) {
	app := setupApp(t, handler.Options{})
	app.postForm(t, "/students", studentForm("Asha", "50"))

	resp, body := app.postForm(t, "/session/end", url.Values{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "No student data yet")
}

func TestAPIStudents(t *testing.T) {
	app := setupApp(t, handler.Options{})

	resp, body := app.postJSON(t, "/api/students", map[string]interface{}{
		"name": " Asha ", "maths": 90, "science": 85, "english": 88, "history": 92, "geography": 95,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Created bool       `json:"created"`
		Student *model.Row `json:"student"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.True(t, created.Created)
	require.NotNil(t, created.Student)
	assert.Equal(t, "Asha", created.Student.Name)
	assert.Equal(t, 450, created.Student.Total)
	assert.Equal(t, 90.0, created.Student.Average)
	assert.Equal(t, model.GradeA, created.Student.Grade)

	resp, body = app.postJSON(t, "/api/students", map[string]interface{}{"name": "  ", "maths": 10})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"created":false`)

	resp, body = app.postJSON(t, "/api/students", map[string]interface{}{"name": "Ravi", "maths": 101})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "Maths failed max=100")

	resp, _ = app.postJSON(t, "/api/students", map[string]interface{}{"name": "Ravi", "art": 50})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data := app.get(t, "/api/students/names")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"data":["Asha"]}`, data)

	resp, data = app.get(t, "/api/chart?student=Asha")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var chart model.ChartData
	require.NoError(t, json.Unmarshal([]byte(data), &chart))
	assert.Equal(t, "Marks of Asha", chart.Title)
	assert.Equal(t, []model.ChartPoint{
		{Label: "Maths", Value: 90},
		{Label: "Science", Value: 85},
		{Label: "English", Value: 88},
		{Label: "History", Value: 92},
		{Label: "Geography", Value: 95},
	}, chart.Points)
	assert.Equal(t, 100.0, chart.YMax)
}

func TestAPIEmptyStore(t *testing.T) {
	app := setupApp(t, handler.Options{})

	resp, data := app.get(t, "/api/students/names")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"data":[]}`, data)

	resp, data = app.get(t, "/api/chart")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, data, "No student data yet")
}

func TestCSRFProtectsForms(t *testing.T) {
	app := setupApp(t, handler.Options{CSRFKey: []byte("0123456789abcdef0123456789abcdef")})

	resp, body := app.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "gorilla.csrf.Token")

	resp, _ = app.postForm(t, "/students", studentForm("Asha", "50"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	app := setupApp(t, handler.Options{})

	resp, data := app.get(t, "/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","sessions":0}`, data)
}
