package logging

import "strings"

const (
	// MaxQueryLogLength is the maximum length of a user query to log.
	MaxQueryLogLength = 120
)

// TruncateQuery shortens free-text user queries before logging so log lines
// stay bounded. Whitespace runs are collapsed to single spaces first.
func TruncateQuery(query string) string {
	collapsed := strings.Join(strings.Fields(query), " ")
	if len(collapsed) <= MaxQueryLogLength {
		return collapsed
	}
	return collapsed[:MaxQueryLogLength] + "..."
}
