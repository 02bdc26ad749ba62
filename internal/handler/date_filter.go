package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// parseDateQuery reads an optional YYYY-MM-DD query parameter. Full RFC 3339
// timestamps are accepted too since some clients send those.
func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD", key)
	}
	return &t, nil
}
