package scrape

import (
	"strings"

	"autoapply-engine/internal/config"
)

// Verdict is the role filter's result for one title. Tags are the allow
// terms that matched, used for logging and attempt history.
type Verdict struct {
	Eligible bool
	Reason   string
	Tags     []string
}

// Classify applies the block list, then the allow list, case-insensitively.
// A block hit always wins and a title matching neither list is rejected.
func Classify(f config.FilterConfig, title string) Verdict {
	t := strings.ToLower(CleanText(title))
	if t == "" {
		return Verdict{Reason: "empty_title"}
	}

	for _, b := range f.Block {
		b = strings.ToLower(strings.TrimSpace(b))
		if b == "" {
			continue
		}
		if strings.Contains(t, b) {
			return Verdict{Reason: "blocked:" + b}
		}
	}

	var tags []string
	for _, a := range f.Allow {
		n := strings.ToLower(strings.TrimSpace(a))
		if n == "" {
			continue
		}
		if strings.Contains(t, n) {
			tags = append(tags, a)
		}
	}
	if len(tags) == 0 {
		return Verdict{Reason: "no_allow_match"}
	}
	return Verdict{Eligible: true, Tags: tags}
}

func IsEligible(f config.FilterConfig, title string) bool {
	return Classify(f, title).Eligible
}
