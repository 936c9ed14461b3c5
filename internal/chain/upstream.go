package chain

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

func newJSONReader(body string) io.Reader {
	return strings.NewReader(body)
}

// digestFieldNames are the top-level or dot-nested field names an
// upstream faucet response may use for its transaction identifier,
// in priority order; the first non-empty one found wins (spec.md §9
// leaves selection priority to the implementer). txDigest is the
// legacy field name the public testnet faucet still emits alongside
// the newer digest/task.digest/transaction_digest shapes.
var digestFieldNames = []string{"digest", "task.digest", "transaction_digest", "txDigest"}

func extractDigest(resp *http.Response) string {
	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ""
	}
	for _, name := range digestFieldNames {
		if v, ok := lookupDotted(payload, name); ok && v != "" {
			return v
		}
	}
	return ""
}

// lookupDotted resolves a dot-separated path ("task.digest") through
// nested JSON objects decoded as map[string]interface{}.
func lookupDotted(payload map[string]interface{}, path string) (string, bool) {
	parts := strings.Split(path, ".")
	var cur interface{} = payload
	for _, part := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return "", false
		}
		cur, ok = m[part]
		if !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok
}
