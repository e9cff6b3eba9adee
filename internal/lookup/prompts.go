package lookup

import (
	"regexp"
	"strings"

	"github.com/michaelbrown/icebreaker/internal/agent"
)

const linkedInPrompt = `You are an expert in finding LinkedIn profiles from web search results.

Given the full name {name} I want you to find the LinkedIn URL for them.

Examples of LinkedIn profile URLs:
https://fr.linkedin.com/in/firstname-lastname-123456789/
https://fr.linkedin.com/in/john-doe/
https://uk.linkedin.com/in/jbgette/
https://ca.linkedin.com/in/jack-hill/

Your answer should contain only a URL. Remove everything that is not a URL from your answer.
Only output the URL and nothing else.`

const twitterPrompt = `You are an expert in finding Twitter profiles from web search results.

Given the full name {name} I want you to find a link to their Twitter profile page,
and extract from it their username.

Your answer should contain only a Twitter username. Remove everything that is not a username from your answer.
Only output the username and nothing else.`

// LinkedInProfile is the built-in lookup agent for LinkedIn URLs.
func LinkedInProfile() agent.Profile {
	return agent.Profile{
		Name:         "linkedin",
		SystemPrompt: linkedInPrompt,
		Tools:        []string{"web_search"},
		MaxIter:      6,
	}
}

// TwitterProfile is the built-in lookup agent for Twitter usernames.
// Appending " Twitter" to the name gives noticeably better search results.
func TwitterProfile() agent.Profile {
	return agent.Profile{
		Name:         "twitter",
		SystemPrompt: twitterPrompt,
		QuerySuffix:  " Twitter",
		Tools:        []string{"web_search"},
		MaxIter:      6,
	}
}

var (
	linkedInURLRe    = regexp.MustCompile(`https?://(?:[a-z]{2,3}\.)?linkedin\.com/in/[^\s"'<>()\[\]]+`)
	twitterURLRe     = regexp.MustCompile(`(?i)(?:^|[/.\s@])(?:twitter|x)\.com/@?([A-Za-z0-9_]{1,15})`)
	twitterUserRe    = regexp.MustCompile(`^@?([A-Za-z0-9_]{1,15})$`)
	twitterMentionRe = regexp.MustCompile(`@([A-Za-z0-9_]{1,15})`)
)

// ExtractLinkedInURL returns the first LinkedIn profile URL in answer, or the
// trimmed answer when there is none.
func ExtractLinkedInURL(answer string) string {
	answer = strings.TrimSpace(answer)
	if m := linkedInURLRe.FindString(answer); m != "" {
		return strings.TrimRight(m, ".,;")
	}
	return answer
}

// ExtractTwitterUsername returns the username found in answer, from a bare
// handle, a profile URL or an @mention, or the trimmed answer otherwise.
func ExtractTwitterUsername(answer string) string {
	answer = strings.TrimSpace(answer)
	if m := twitterUserRe.FindStringSubmatch(answer); m != nil {
		return m[1]
	}
	if m := twitterURLRe.FindStringSubmatch(answer); m != nil {
		return m[1]
	}
	if m := twitterMentionRe.FindStringSubmatch(answer); m != nil {
		return m[1]
	}
	return answer
}

// Extractor returns the answer post-processor for a provider, or nil.
func Extractor(provider string) func(string) string {
	switch provider {
	case "linkedin":
		return ExtractLinkedInURL
	case "twitter":
		return ExtractTwitterUsername
	default:
		return nil
	}
}

// DefaultProfile returns the built-in lookup profile for a provider.
func DefaultProfile(provider string) (agent.Profile, bool) {
	switch provider {
	case "linkedin":
		return LinkedInProfile(), true
	case "twitter":
		return TwitterProfile(), true
	default:
		return agent.Profile{}, false
	}
}
