package handler

import (
	"context"
	"errors"
	"net/http"

	"gradecalc/internal/service"
)

const SessionCookie = "gradecalc_session"

var errNoSession = errors.New("no session")

type sessionKey struct{}

func withSession(ctx context.Context, sess *service.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the session attached by SessionMiddleware.
func SessionFromContext(ctx context.Context) (*service.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(*service.Session)
	return sess, ok && sess != nil
}

// SessionMiddleware resolves the session cookie, starting a new session
// when the cookie is missing or names a session that has ended.
type SessionMiddleware struct {
	sessions *service.SessionManager
	secure   bool
}

func NewSessionMiddleware(sessions *service.SessionManager, secure bool) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, secure: secure}
}

func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *service.Session
		if c, err := r.Cookie(SessionCookie); err == nil {
			sess, _ = m.sessions.Get(c.Value)
		}
		if sess == nil {
			sess = m.start(w)
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

// Do runs fn on the request's session. If that session ended while the
// request was in flight, fn runs again on a fresh session, which is returned.
func (m *SessionMiddleware) Do(w http.ResponseWriter, r *http.Request, fn func(sess *service.Session) error) (*service.Session, error) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		return nil, errNoSession
	}
	err := fn(sess)
	if !errors.Is(err, service.ErrSessionEnded) {
		return sess, err
	}
	sess = m.start(w)
	return sess, fn(sess)
}

// Apply runs ev through Do.
func (m *SessionMiddleware) Apply(w http.ResponseWriter, r *http.Request, ev service.Event) (*service.Session, service.View, error) {
	var view service.View
	sess, err := m.Do(w, r, func(sess *service.Session) error {
		var err error
		view, err = service.Apply(sess, ev)
		return err
	})
	return sess, view, err
}

func (m *SessionMiddleware) start(w http.ResponseWriter) *service.Session {
	sess := m.sessions.Start()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (m *SessionMiddleware) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
