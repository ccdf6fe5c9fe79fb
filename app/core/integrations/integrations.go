// Package integrations holds the vendor adapters and the normalized
// record shape they all produce.
package integrations

import (
	"net/http"
	"time"
)

// Record is a vendor item (issue, PR, application, message) normalized
// for ingestion into the task store.
type Record struct {
	ID        string
	Title     string
	Status    string
	Priority  string
	URL       string
	CreatedAt int64
	UpdatedAt int64
}

// NewHTTPClient builds the client every adapter uses. Vendor calls never
// run without a deadline.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// ParseTime converts a vendor RFC3339 timestamp to unix seconds,
// returning 0 on anything unparsable.
func ParseTime(value string) int64 {
	if value == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0
	}
	return t.Unix()
}
