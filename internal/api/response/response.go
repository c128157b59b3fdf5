package response

import (
	"encoding/json"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// AccessDeniedBody is the uniform denial document. The same bytes are
// written for an unresolvable key and a resolvable-but-unauthorized one,
// so responses carry no key-enumeration signal.
const AccessDeniedBody = "<h1>Access Denied</h1><p>You don't have permission to view this feed, please contact your site Administrator.</p>"

// WriteAccessDenied writes the generic denial document with a 401 status.
func WriteAccessDenied(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(AccessDeniedBody))
}
