package validation

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

const maxURLLength = 2048

// ImageURLValidator accepts only artwork URLs served from an allow-listed
// host. Hosts match exactly, case-insensitively, ignoring any port.
type ImageURLValidator struct {
	AllowedHosts []string
	MaxLength    int
}

func NewImageURLValidator(allowedHosts []string) *ImageURLValidator {
	hosts := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	return &ImageURLValidator{
		AllowedHosts: hosts,
		MaxLength:    maxURLLength,
	}
}

// Validate returns the normalized URL or the reason it was rejected.
func (v *ImageURLValidator) Validate(input string) (string, error) {
	parsedURL, err := parseHTTPURL(input, v.MaxLength)
	if err != nil {
		return "", err
	}

	hostname := strings.ToLower(parsedURL.Hostname())
	if !slices.Contains(v.AllowedHosts, hostname) {
		return "", fmt.Errorf("image host %q is not allowed", hostname)
	}

	if strings.Contains(parsedURL.Path, "..") {
		return "", fmt.Errorf("directory traversal patterns not allowed in URL path")
	}

	return parsedURL.String(), nil
}

// Allowed reports whether Validate would accept input.
func (v *ImageURLValidator) Allowed(input string) bool {
	_, err := v.Validate(input)
	return err == nil
}

// ValidateBaseURL checks an API root. Unlike image URLs any host is
// accepted, including localhost, so local API instances can be used.
func ValidateBaseURL(input string) error {
	parsedURL, err := parseHTTPURL(input, maxURLLength)
	if err != nil {
		return err
	}
	if parsedURL.RawQuery != "" || parsedURL.Fragment != "" {
		return fmt.Errorf("base URL must not carry a query or fragment")
	}
	return nil
}

func parseHTTPURL(input string, maxLength int) (*url.URL, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}
	if maxLength > 0 && len(input) > maxLength {
		return nil, fmt.Errorf("URL too long (max %d characters)", maxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return nil, fmt.Errorf("URL contains invalid characters")
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("invalid URL format: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("URL must use http or https protocol")
	}
	if parsedURL.Hostname() == "" {
		return nil, fmt.Errorf("URL must have a valid hostname")
	}
	return parsedURL, nil
}
