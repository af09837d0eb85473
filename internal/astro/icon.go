package astro

import "strings"

// NormalizeIconURL turns the protocol-relative icon URLs of the weather API
// ("//cdn.weatherapi.com/...") into http URLs. Anything else is returned
// unchanged.
func NormalizeIconURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "http:" + u
	}
	return u
}
