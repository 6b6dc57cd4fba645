package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"

	"dockergen/internal/httputil"
)

const (
	// SessionHeader carries the editing session id for API clients
	SessionHeader = "X-Session-ID"
	// SessionCookie carries the editing session id for browsers
	SessionCookie = "session_id"
)

// sessionIDPattern bounds accepted client-supplied ids
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// Session resolves the editing session for each request from the
// X-Session-ID header, then the session_id cookie. Missing or malformed ids
// are replaced by a new uuid. The resolved id is echoed in the response
// header and cookie.
func Session(cookieTTL time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					id = c.Value
				}
			}
			if !sessionIDPattern.MatchString(id) {
				id = uuid.NewString()
			}

			w.Header().Set(SessionHeader, id)
			cookie := &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			}
			if cookieTTL > 0 {
				cookie.MaxAge = int(cookieTTL.Seconds())
			}
			http.SetCookie(w, cookie)

			next.ServeHTTP(w, httputil.WithSessionID(r, id))
		})
	}
}
