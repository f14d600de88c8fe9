package server

import (
	"context"
	"net/http"
)

type contextKey string

const (
	ownerKey contextKey = "owner"
	tokenKey contextKey = "token"
)

// sessionCookie is the cookie carrying the opaque session token.
const sessionCookie = "sgc_sesion"

// noCache forbids caching of every response; the occupied-slot view must
// always be fetched fresh.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// withSession resolves the session cookie to the authenticated owner
// phone and stores both on the request context. Requests without a valid
// session pass through unauthenticated; handlers that need an identity
// call owner() and reject.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		phone, err := s.sessions.Phone(r.Context(), cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ownerKey, phone)
		ctx = context.WithValue(ctx, tokenKey, cookie.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// owner returns the authenticated phone bound to the request, or "".
func owner(r *http.Request) string {
	phone, _ := r.Context().Value(ownerKey).(string)
	return phone
}

// sessionToken returns the resolved session token bound to the request.
func sessionToken(r *http.Request) string {
	token, _ := r.Context().Value(tokenKey).(string)
	return token
}
