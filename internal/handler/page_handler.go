package handler

import (
	"bytes"
	"net/http"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"

	"gradecalc/internal/render"
	"gradecalc/internal/service"
)

type PageHandler struct {
	sessions *service.SessionManager
	cookies  *SessionMiddleware
	page     *render.Page
	logger   kitlog.Logger
}

func NewPageHandler(sessions *service.SessionManager, cookies *SessionMiddleware, page *render.Page, logger kitlog.Logger) *PageHandler {
	return &PageHandler{sessions: sessions, cookies: cookies, page: page, logger: logger}
}

// Index renders the page for the current selection (?student=).
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	_, view, err := h.cookies.Apply(w, r, service.Event{Selected: r.URL.Query().Get("student")})
	if err != nil {
		sessionError(w, h.logger, err)
		return
	}
	h.render(w, r, http.StatusOK, view)
}

// Submit handles the sidebar form and re-renders the page.
func (h *PageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sub, err := parseSubmission(r)
	if err != nil {
		_, view, applyErr := h.cookies.Apply(w, r, service.Event{})
		if applyErr != nil {
			sessionError(w, h.logger, applyErr)
			return
		}
		view.Notices = append(view.Notices, service.Notice{Level: service.NoticeWarning, Message: err.Error()})
		h.render(w, r, http.StatusBadRequest, view)
		return
	}

	sess, view, err := h.cookies.Apply(w, r, service.Event{
		Submitted:  true,
		Submission: sub,
		Selected:   r.PostForm.Get("student"),
	})
	if err != nil {
		sessionError(w, h.logger, err)
		return
	}
	if view.Created != nil {
		level.Info(h.logger).Log("msg", "student added", "session", sess.ID, "student", view.Created.Name, "grade", view.Created.Grade)
	}
	h.render(w, r, http.StatusOK, view)
}

// Chart serves the selected student's bar chart as /chart.png or /chart.svg.
func (h *PageHandler) Chart(w http.ResponseWriter, r *http.Request) {
	format := render.ChartFormat(mux.Vars(r)["format"])
	if format != render.ChartPNG && format != render.ChartSVG {
		http.Error(w, "unsupported chart format", http.StatusNotFound)
		return
	}

	sess, view, err := h.cookies.Apply(w, r, service.Event{Selected: r.URL.Query().Get("student")})
	if err != nil {
		sessionError(w, h.logger, err)
		return
	}
	if view.Chart == nil {
		http.Error(w, "Selected student not found.", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := render.Chart(&buf, *view.Chart, format); err != nil {
		level.Error(h.logger).Log("msg", "chart render failed", "session", sess.ID, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// EndSession tears the session down and sends the browser back to an empty
// page.
func (h *PageHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := SessionFromContext(r.Context()); ok {
		if err := h.sessions.End(sess.ID); err != nil {
			level.Error(h.logger).Log("msg", "end session failed", "session", sess.ID, "err", err)
		}
	}
	h.cookies.clearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, view service.View) {
	var buf bytes.Buffer
	if err := h.page.Render(&buf, view, csrf.TemplateField(r)); err != nil {
		level.Error(h.logger).Log("msg", "page render failed", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func sessionError(w http.ResponseWriter, logger kitlog.Logger, err error) {
	level.Error(logger).Log("msg", "session unavailable", "err", err)
	http.Error(w, "no session", http.StatusInternalServerError)
}
