package keyword

import "strings"

// Match returns the response of every entry whose keyword occurs in text, in table order.
// Only text is lower-cased; keywords are expected to be lowercase already.
// All matches are reported, including entries that share a response.
func Match(text string, table Table) []string {
	if len(table) == 0 {
		return nil
	}

	lowered := strings.ToLower(text)
	var responses []string
	for _, e := range table {
		if strings.Contains(lowered, e.Keyword) {
			responses = append(responses, e.Response)
		}
	}
	return responses
}
