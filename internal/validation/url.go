package validation

import (
	"errors"
	"net/url"
	"strings"
)

// NormalizeURL trims raw and prefixes https:// when no scheme is present.
// An empty string stays empty.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}
	return raw
}

// ValidateURL accepts absolute http(s) URLs with a host.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL must use http or https")
	}
	if u.Host == "" || strings.ContainsAny(u.Host, " \t") {
		return errors.New("invalid URL")
	}
	return nil
}

// optionalURL normalizes an optional link. Empty input is a valid "not provided".
func optionalURL(e *Error, field, raw string) string {
	v := NormalizeURL(raw)
	if v == "" {
		return ""
	}
	if err := ValidateURL(v); err != nil {
		e.Add(field, field+": "+err.Error())
	}
	return v
}

// optionalURLPtr keeps nil as "absent" and "" as "cleared".
func optionalURLPtr(e *Error, field string, raw *string) *string {
	if raw == nil {
		return nil
	}
	v := optionalURL(e, field, *raw)
	return &v
}
