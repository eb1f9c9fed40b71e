package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/cinewhisper/internal/platform/api"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

// decodeJSON reads up to maxRequestBodyBytes from r.Body and decodes JSON into dst.
// On failure it writes a 400 response and returns false.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, rid string, dst *T) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(dst); err != nil {
		api.BadRequest(w, "INVALID_JSON", "Invalid JSON", rid, nil)
		return false
	}
	return true
}

func parseInt32(v string, def, min, max int32) int32 {
	if strings.TrimSpace(v) == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	if i < int(min) {
		return min
	}
	if i > int(max) {
		return max
	}
	return int32(i)
}

func parseInt64Param(v string) (int64, bool) {
	i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || i <= 0 {
		return 0, false
	}
	return i, true
}
