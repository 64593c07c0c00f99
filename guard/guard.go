// Package guard decides whether a view may be entered with the current session.
package guard

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// Authenticator reports the current session status without blocking.
type Authenticator interface {
	IsAuthenticated() bool
}

// Decision is the outcome of a navigation check. Redirect is set when Allowed is false.
type Decision struct {
	Allowed  bool
	Redirect string
}

// RedirectFunc answers a denied request by sending the client to target.
type RedirectFunc func(w http.ResponseWriter, r *http.Request, target string)

type Guard struct {
	auth       Authenticator
	redirectTo string
}

func New(auth Authenticator, redirectTo string) *Guard {
	return &Guard{auth: auth, redirectTo: redirectTo}
}

// CanActivate allows route iff the session is authenticated at the moment of the call.
func (g *Guard) CanActivate(route string) Decision {
	if g.auth.IsAuthenticated() {
		return Decision{Allowed: true}
	}
	log.Debug().Str("route", route).Str("redirect", g.redirectTo).Msg("Navigation denied")
	return Decision{Redirect: g.redirectTo}
}

// Middleware applies CanActivate to every request, answering denied ones with a 303.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return g.MiddlewareWith(seeOther)(next)
}

// MiddlewareWith is Middleware with the denial answered by redirect.
func (g *Guard) MiddlewareWith(redirect RedirectFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.CanActivate(r.URL.Path)
			if !d.Allowed {
				redirect(w, r, d.Redirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
