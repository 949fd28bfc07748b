package handler

import (
	"fmt"
	"net/http"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/csrf"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"gradecalc/internal/logging"
	"gradecalc/internal/render"
	"gradecalc/internal/service"
)

type Options struct {
	// CSRFKey enables CSRF protection of the HTML forms when set.
	CSRFKey        []byte
	SecureCookies  bool
	AllowedOrigins []string
}

// NewRouter registers the page, chart and JSON API routes. Every route
// except /healthz runs inside a session.
func NewRouter(sessions *service.SessionManager, page *render.Page, logger kitlog.Logger, opts Options) *mux.Router {
	cookies := NewSessionMiddleware(sessions, opts.SecureCookies)
	pageHandler := NewPageHandler(sessions, cookies, page, logger)
	studentHandler := NewStudentHandler(cookies, logger)
	uploadHandler := NewUploadHandler(cookies, logger)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "sessions": sessions.Len()})
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(cookies.Handler)
	api.HandleFunc("/students", studentHandler.ListStudents).Methods("GET")
	api.HandleFunc("/students", studentHandler.CreateStudent).Methods("POST")
	api.HandleFunc("/students/names", studentHandler.ListNames).Methods("GET")
	api.HandleFunc("/chart", studentHandler.GetChart).Methods("GET")
	api.HandleFunc("/students/import", uploadHandler.ImportCSV).Methods("POST")
	api.HandleFunc("/students/export.csv", uploadHandler.ExportCSV).Methods("GET")

	web := r.PathPrefix("/").Subrouter()
	web.Use(cookies.Handler)
	if len(opts.CSRFKey) > 0 {
		web.Use(csrf.Protect(opts.CSRFKey,
			csrf.Secure(opts.SecureCookies),
			csrf.Path("/"),
			csrf.ErrorHandler(http.HandlerFunc(csrfFailure(logger))),
		))
	}
	web.HandleFunc("/", pageHandler.Index).Methods("GET")
	web.HandleFunc("/students", pageHandler.Submit).Methods("POST")
	web.HandleFunc("/chart.{format}", pageHandler.Chart).Methods("GET")
	web.HandleFunc("/session/end", pageHandler.EndSession).Methods("POST")

	return r
}

// NewHTTPHandler wraps the router with CORS, access logging and panic
// recovery.
func NewHTTPHandler(sessions *service.SessionManager, page *render.Page, logger kitlog.Logger, opts Options) http.Handler {
	r := NewRouter(sessions, page, logger, opts)

	var h http.Handler = handlers.CORS(
		handlers.AllowedOrigins(opts.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowCredentials(),
	)(r)
	h = handlers.CombinedLoggingHandler(logging.Writer(logger, "http"), h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{logger}))(h)
	return h
}

func csrfFailure(logger kitlog.Logger) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		level.Warn(logger).Log("msg", "csrf check failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
		http.Error(w, "Forbidden - CSRF token invalid", http.StatusForbidden)
	}
}

type recoveryLogger struct {
	logger kitlog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	level.Error(l.logger).Log("msg", "panic recovered", "err", fmt.Sprint(v...))
}
