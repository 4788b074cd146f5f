package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known applicant tracking system.
type Platform string

// Known platforms.
const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformAshby      Platform = "ashby"
	PlatformUnknown    Platform = "unknown"
)

type platformSpec struct {
	hosts   []string
	content []string
	noise   []string
}

var platforms = map[Platform]platformSpec{
	PlatformGreenhouse: {
		hosts:   []string{"greenhouse.io"},
		content: []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:   []string{".application--wrapper", ".voluntary-self-id", ".voluntary-self-id-wrapper", "#usa_self_id_section", ".post-apply"},
	},
	PlatformLever: {
		hosts:   []string{"lever.co"},
		content: []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:   []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	PlatformWorkday: {
		hosts:   []string{"workday.com", "myworkdayjobs.com"},
		content: []string{"[data-automation-id='jobDescription']", ".job-description"},
		noise:   []string{"[data-automation-id='applyButton']", ".application-section"},
	},
	PlatformAshby: {
		hosts:   []string{"ashbyhq.com"},
		content: []string{"[class*='_descriptionText']", "main"},
		noise:   []string{"[class*='_applicationForm']"},
	},
}

// commonNoiseSelectors are application forms and legal boilerplate found on most boards.
var commonNoiseSelectors = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	".voluntary-disclosure",
	".eeo-statement",
	".eeo-section",
	".legal-disclosure",
	".social-share",
	".share-buttons",
	".cookie-banner",
	".cookie-consent",
	".gdpr-notice",
}

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())

	for platform, spec := range platforms {
		for _, h := range spec.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return platform
			}
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors for a platform, falling back
// to JobPostingSelectors for unknown boards.
func PlatformContentSelectors(platform Platform) []string {
	spec, ok := platforms[platform]
	if !ok {
		return JobPostingSelectors()
	}
	return append(append([]string{}, spec.content...), JobPostingSelectors()...)
}

// PlatformNoiseSelectors returns the selectors removed before extraction on a platform.
func PlatformNoiseSelectors(platform Platform) []string {
	out := append([]string{}, commonNoiseSelectors...)
	if spec, ok := platforms[platform]; ok {
		out = append(out, spec.noise...)
	}
	return out
}
