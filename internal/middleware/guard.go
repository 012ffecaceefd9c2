package middleware

import "net/http"

// UnauthorizedPolicy decides how a protected route responds when no
// logged-in session is present. The guard itself only checks the
// session; the response style (JSON 401 vs redirect to a login page) is
// a policy of the calling surface.
type UnauthorizedPolicy func(w http.ResponseWriter, r *http.Request)

// UnauthorizedJSON responds with a 401 JSON body.
func UnauthorizedJSON() UnauthorizedPolicy {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
	}
}

// UnauthorizedRedirect redirects to a login entry point.
func UnauthorizedRedirect(loginURL string) UnauthorizedPolicy {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, loginURL, http.StatusSeeOther)
	}
}

// RequireAuth rejects requests whose context holds no logged-in session.
// It trusts the session's embedded user snapshot and performs no
// re-verification against the credential store.
func RequireAuth(onUnauthorized UnauthorizedPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil || !sess.IsLoggedIn {
				onUnauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
