package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-playground/validator/v10"

	"gradecalc/internal/grade"
	"gradecalc/internal/model"
	"gradecalc/internal/service"
)

// StudentHandler exposes the session's students as JSON.
type StudentHandler struct {
	cookies  *SessionMiddleware
	validate *validator.Validate
	logger   kitlog.Logger
}

func NewStudentHandler(cookies *SessionMiddleware, logger kitlog.Logger) *StudentHandler {
	return &StudentHandler{
		cookies:  cookies,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

type createStudentRequest struct {
	Name      string `json:"name" validate:"max=200"`
	Maths     int    `json:"maths" validate:"min=0,max=100"`
	Science   int    `json:"science" validate:"min=0,max=100"`
	English   int    `json:"english" validate:"min=0,max=100"`
	History   int    `json:"history" validate:"min=0,max=100"`
	Geography int    `json:"geography" validate:"min=0,max=100"`
}

func (req createStudentRequest) submission() grade.Submission {
	return grade.Submission{
		Name: req.Name,
		Marks: model.SubjectMarks{
			Maths:     req.Maths,
			Science:   req.Science,
			English:   req.English,
			History:   req.History,
			Geography: req.Geography,
		},
	}
}

type createStudentResponse struct {
	Created bool             `json:"created"`
	Student *model.Row       `json:"student,omitempty"`
	Notices []service.Notice `json:"notices"`
}

// ListStudents returns every row of the session in insertion order.
func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	_, view, err := h.cookies.Apply(w, r, service.Event{})
	if err != nil {
		sessionError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":    view.Rows(),
		"total":   len(view.Records),
		"notices": view.Notices,
	})
}

// CreateStudent accepts one submission. A blank name is skipped silently
// and answered with created=false.
func (h *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": validationMessages(err)})
		return
	}

	sess, view, err := h.cookies.Apply(w, r, service.Event{Submitted: true, Submission: req.submission()})
	if err != nil {
		sessionError(w, h.logger, err)
		return
	}
	resp := createStudentResponse{Notices: view.Notices}
	status := http.StatusOK
	if view.Created != nil {
		row := view.Created.Row()
		resp.Created = true
		resp.Student = &row
		status = http.StatusCreated
		level.Info(h.logger).Log("msg", "student added", "session", sess.ID, "student", row.Name, "grade", row.Grade)
	}
	writeJSON(w, status, resp)
}

// ListNames returns the distinct names offered by the selection control.
func (h *StudentHandler) ListNames(w http.ResponseWriter, r *http.Request) {
	_, view, err := h.cookies.Apply(w, r, service.Event{})
	if err != nil {
		sessionError(w, h.logger, err)
		return
	}
	names := view.Names
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": names})
}

// GetChart returns the chart projection for ?student=, defaulting to the
// first student.
func (h *StudentHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	_, view, err := h.cookies.Apply(w, r, service.Event{Selected: r.URL.Query().Get("student")})
	if err != nil {
		sessionError(w, h.logger, err)
		return
	}
	if view.Chart == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"notices": view.Notices})
		return
	}
	writeJSON(w, http.StatusOK, view.Chart)
}

func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return msgs
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
