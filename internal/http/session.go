package http

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
)

const (
	// SessionCookieName names the cookie carrying the opaque session token.
	SessionCookieName = "birdfinder-session"
	sessionTokenKey   = "token"
)

// NewCookieStore returns a signed and encrypted cookie store keyed from secret.
func NewCookieStore(secret string, maxAge time.Duration, secure bool) *sessions.CookieStore {
	// 32-byte keys for HMAC and AES
	authKey := sha256.Sum256([]byte(secret + "auth"))
	encKey := sha256.Sum256([]byte(secret + "encryption"))

	store := sessions.NewCookieStore(authKey[:], encKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(maxAge / time.Second))
	return store
}

// Protect wraps next with CSRF protection for every unsafe method. Requests
// are treated as plaintext HTTP unless secure is set.
func Protect(next http.Handler, secret string, secure bool, logger *logrus.Logger) http.Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	key := sha256.Sum256([]byte(secret + "csrf"))

	protect := csrf.Protect(
		key[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.WithError(csrf.FailureReason(r)).WithField("path", r.URL.Path).Warn("csrf check failed")
			http.Error(w, "Forbidden", http.StatusForbidden)
		})),
	)
	protected := protect(next)
	if secure {
		return protected
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func (h *Handler) sessionToken(c *gin.Context) string {
	session, err := h.cookies.Get(c.Request, SessionCookieName)
	if err != nil || session == nil {
		return ""
	}
	token, _ := session.Values[sessionTokenKey].(string)
	return token
}

func (h *Handler) setSessionToken(c *gin.Context, token string) error {
	// a stale or tampered cookie still yields a fresh session
	session, _ := h.cookies.Get(c.Request, SessionCookieName)
	if session == nil {
		session = sessions.NewSession(h.cookies, SessionCookieName)
	}
	session.Values[sessionTokenKey] = token
	return session.Save(c.Request, c.Writer)
}

func (h *Handler) clearSessionToken(c *gin.Context) {
	session, _ := h.cookies.Get(c.Request, SessionCookieName)
	if session == nil {
		return
	}
	delete(session.Values, sessionTokenKey)
	if session.Options == nil {
		session.Options = &sessions.Options{Path: "/"}
	}
	session.Options.MaxAge = -1
	if err := session.Save(c.Request, c.Writer); err != nil {
		h.log.WithError(err).Warn("failed to clear session cookie")
	}
}
