package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	visitorCookieName = "visitor_id"
	visitorTTL        = 365 * 24 * time.Hour
)

// visitorID returns the anonymous visitor ID from the request cookie,
// issuing a new one when the cookie is missing or malformed.
func visitorID(w http.ResponseWriter, r *http.Request) string {
	if id := existingVisitorID(r); id != "" {
		return id
	}

	id := uuid.NewString()
	setVisitorCookie(w, id)
	return id
}

// existingVisitorID returns the visitor ID from the cookie, or "" if there is none.
func existingVisitorID(r *http.Request) string {
	cookie, err := r.Cookie(visitorCookieName)
	if err != nil {
		return ""
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return ""
	}
	return id.String()
}

// setVisitorCookie sets the visitor cookie on the response.
func setVisitorCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(visitorTTL.Seconds()),
	})
}
