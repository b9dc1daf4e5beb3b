package httpx

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// SessionHeader carries the customer session. The cart is keyed on it.
const SessionHeader = "X-Session-Id"

// session returns the request's session id, starting a new session when
// the client sent none. The id is always echoed back.
func session(w http.ResponseWriter, r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(SessionHeader))
	if id == "" || len(id) > 128 {
		id = uuid.NewString()
	}
	w.Header().Set(SessionHeader, id)
	return id
}
