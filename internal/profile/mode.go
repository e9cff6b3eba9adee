package profile

import "strings"

// Mode selects where profiles come from.
type Mode int

const (
	// Development reads profiles from local files.
	Development Mode = iota
	// Production calls the provider's scraping API.
	Production
)

func (m Mode) String() string {
	switch m {
	case Development:
		return "development"
	case Production:
		return "production"
	default:
		return "unknown"
	}
}

// ParseMode parses a configured mode name. Matching ignores case and
// surrounding whitespace.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "development":
		return Development, nil
	case "production":
		return Production, nil
	default:
		return 0, &InvalidModeError{Mode: s}
	}
}
