package admission

import (
	"net/http"
	"strings"
)

// ExtractCredential normalizes the three header conventions the faucet
// accepts an API key under — X-API-Key, Authorization: Bearer <key>,
// and bare Authorization: <key> — into a single value. Returns "" if
// none is present.
func ExtractCredential(h http.Header) string {
	if key := h.Get("X-API-Key"); key != "" {
		return key
	}
	auth := h.Get("Authorization")
	if auth == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return rest
	}
	return auth
}
