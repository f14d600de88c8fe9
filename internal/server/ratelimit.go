package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// credentialLimiter throttles credential endpoints per client address so
// a password-guessing loop cannot hammer the account table.
type credentialLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rate    rate.Limit
	burst   int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newCredentialLimiter(perMinute, burst int) *credentialLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 5
	}
	return &credentialLimiter{
		clients: make(map[string]*clientLimiter),
		rate:    rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
	}
}

func (l *credentialLimiter) allow(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cl, ok := l.clients[host]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[host] = cl
	}
	cl.lastSeen = now

	// Drop idle entries so the map does not grow without bound.
	if len(l.clients) > 1024 {
		for addr, c := range l.clients {
			if now.Sub(c.lastSeen) > 10*time.Minute {
				delete(l.clients, addr)
			}
		}
	}

	return cl.limiter.Allow()
}

// limit wraps a handler with the credential throttle.
func (s *Server) limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(r.RemoteAddr) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{
				Code:    "demasiados_intentos",
				Message: "Demasiados intentos. Espere un momento.",
			})
			return
		}
		next(w, r)
	}
}
