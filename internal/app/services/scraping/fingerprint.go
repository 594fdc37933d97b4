package scraping

import "math/rand"

// Fingerprint is the set of request-shaping values picked independently and
// uniformly at random for every fetch, to avoid a static signature across
// requests.
type Fingerprint struct {
	UserAgent string
	Viewport  string
	Locale    string
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.0.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

var viewports = []string{
	"1920x1080",
	"1366x768",
	"1536x864",
	"1440x900",
	"1280x800",
	"375x812",
}

var locales = []string{
	"en-US",
	"en-GB",
	"en-IN",
	"en-CA",
	"en-AU",
}

// RandomFingerprint picks a fingerprint uniformly at random from the curated
// pools above.
func RandomFingerprint() Fingerprint {
	return Fingerprint{
		UserAgent: userAgents[rand.Intn(len(userAgents))],
		Viewport:  viewports[rand.Intn(len(viewports))],
		Locale:    locales[rand.Intn(len(locales))],
	}
}
