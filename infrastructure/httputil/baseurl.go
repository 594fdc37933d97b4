package httputil

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeBaseURL normalizes and validates a base URL used for outbound
// calls (webhook delivery, FX rate lookups).
//
// It trims whitespace, removes trailing slashes, validates scheme/host, and
// disallows embedded user info.
func NormalizeBaseURL(raw string) (string, *url.URL, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(raw), "/")
	if baseURL == "" {
		return "", nil, fmt.Errorf("base URL is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", nil, fmt.Errorf("base URL must be a valid URL")
	}
	if parsed.User != nil {
		return "", nil, fmt.Errorf("base URL must not include user info")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", nil, fmt.Errorf("base URL scheme must be http or https")
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return "", nil, fmt.Errorf("base URL must not include query or fragment")
	}

	return baseURL, parsed, nil
}

// NormalizeWebhookURL is the standard normalization applied to an alert
// subscription's webhook URL before each delivery.
func NormalizeWebhookURL(raw string) (string, *url.URL, error) {
	return NormalizeBaseURL(raw)
}
