// Package providers defines the LinkedIn and Twitter profile policies and
// wires them to their scraping APIs.
package providers

import (
	"log/slog"
	"regexp"
	"time"

	"github.com/michaelbrown/icebreaker/internal/config"
	"github.com/michaelbrown/icebreaker/internal/profile"
	"github.com/michaelbrown/icebreaker/internal/scraper"
)

const (
	LinkedIn = "linkedin"
	Twitter  = "twitter"
)

// linkedInFields are the profile keys kept when cleaning a LinkedIn record.
var linkedInFields = []string{
	"public_identifier",
	"profile_pic_url",
	"first_name",
	"last_name",
	"full_name",
	"headline",
	"country",
	"follower_count",
	"summary",
	"country_full_name",
	"city",
	"state",
	"experiences",
	"languages",
	"education",
	"skills",
}

var twitterUserFields = []string{
	"name",
	"description",
	"followers_count",
	"friends_count",
	"profile_image_url_https",
	"verified",
}

// twitterDeniedFields are tweet keys that carry markup or embedded tweets.
var twitterDeniedFields = []string{
	"display_text_range",
	"entities",
	"extended_entities",
	"quoted_status",
	"retweeted_status",
}

var (
	linkedInSlugPrefix = regexp.MustCompile(`^https_\w{2,3}_linkedin_\w{2,3}_in_`)
	twitterSlugPrefix  = regexp.MustCompile(`^https_(?:www_|mobile_)?(?:twitter|x)_com_`)
)

// LinkedInFields keeps the allow-listed keys and drops empty values.
func LinkedInFields() profile.FieldPolicy {
	return profile.FieldPolicy{Allow: linkedInFields, DropEmpty: true}
}

// TwitterFields drops noisy and empty keys and trims the embedded user.
func TwitterFields() profile.FieldPolicy {
	return profile.FieldPolicy{
		Deny:      twitterDeniedFields,
		DropEmpty: true,
		Nested: map[string]profile.FieldPolicy{
			"user": {Allow: twitterUserFields},
		},
	}
}

// LinkedInPolicy reads stored profiles before paying for an API call.
func LinkedInPolicy(fetcher profile.Fetcher, sampleFile string) profile.Policy {
	return profile.Policy{
		Name:          LinkedIn,
		Fetcher:       fetcher,
		Fields:        LinkedInFields(),
		NormalizeSlug: profile.TrimPattern(linkedInSlugPrefix),
		CacheFirst:    true,
		SampleFile:    sampleFile,
	}
}

func TwitterPolicy(fetcher profile.Fetcher, sampleFile string) profile.Policy {
	return profile.Policy{
		Name:          Twitter,
		Fetcher:       fetcher,
		Fields:        TwitterFields(),
		NormalizeSlug: profile.TrimPattern(twitterSlugPrefix),
		SampleFile:    sampleFile,
	}
}

// NewRegistry registers every provider with the fetchers described in cfg.
func NewRegistry(cfg *config.Config, logger *slog.Logger) *profile.Registry {
	li := cfg.Scrapers.LinkedIn
	tw := cfg.Scrapers.Twitter

	proxycurl := scraper.NewProxycurl(li.Endpoint, li.APIKey, seconds(li.TimeoutSecs), logger)
	apify := scraper.NewApify(tw.Endpoint, tw.APIKey, tw.ActorID, tw.TweetsDesired, seconds(tw.TimeoutSecs), logger)

	return profile.NewRegistry(
		LinkedInPolicy(proxycurl, cfg.Samples[LinkedIn]),
		TwitterPolicy(apify, cfg.Samples[Twitter]),
	)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
