package model

import "time"

// Session is the server-side authentication state keyed by an opaque ID
// mirrored to the client in a cookie.
//
// The embedded user is a snapshot taken at login time. It is not
// refreshed on later requests, so it can go stale relative to the
// credential store; protected handlers that need fresh data should
// re-fetch by User.ID.
type Session struct {
	ID         string    `json:"id"`
	IsLoggedIn bool      `json:"is_logged_in"`
	User       User      `json:"user"`
	CreatedAt  time.Time `json:"created_at"`
}
