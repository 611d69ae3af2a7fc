package webserver

import (
	"net/http"

	"github.com/google/uuid"
)

// ViewCookie identifies one browser's remote catalog view so that a newer
// browse request can supersede the one still in flight.
const ViewCookie = "view"

// viewKey returns the view id of the request, issuing a new one when the
// cookie is missing or malformed.
func viewKey(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(ViewCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     ViewCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
