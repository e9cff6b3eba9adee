package icebreaker

import (
	"strings"

	"github.com/michaelbrown/icebreaker/internal/profile"
)

const promptTemplate = `Given the LinkedIn information {linkedin} and Twitter information {twitter} about a person I want you to create:
1. a short summary
2. two interesting facts about them`

// BuildPrompt fills the summary template with both records as JSON.
func BuildPrompt(linkedin, twitter profile.Record) string {
	return strings.NewReplacer(
		"{linkedin}", linkedin.JSON(),
		"{twitter}", twitter.JSON(),
	).Replace(promptTemplate)
}
