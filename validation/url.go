package validation

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrMissingUrl = errors.New("missing url")
	ErrInvalidUrl = errors.New("invalid url")
)

// ValidateUrl validates a URL provided by the user, and returns a formatted URL as a string.
// Bare hosts such as “x.com/user/status/1” are assumed to be HTTPS. `data:` URLs pass
// through untouched so that pages can be rendered inline.
func ValidateUrl(userUrl string) (validatedUrl string, hostname string, err error) {
	userUrl = strings.TrimSpace(userUrl)
	if userUrl == "" {
		return "", "", ErrMissingUrl
	}

	if strings.HasPrefix(userUrl, "data:") {
		return userUrl, "", nil
	}

	if !strings.HasPrefix(userUrl, "https://") && !strings.HasPrefix(userUrl, "http://") && !strings.Contains(userUrl, "://") {
		userUrl = "https://" + userUrl
	}

	u, err := url.Parse(userUrl)
	if err != nil {
		return "", "", ErrInvalidUrl
	}

	switch u.Scheme {
	case "http", "https":
		if u.Hostname() == "" {
			return "", "", ErrInvalidUrl
		}
	case "file":
		if u.Path == "" {
			return "", "", ErrInvalidUrl
		}
	default:
		return "", u.Hostname(), ErrInvalidUrl
	}

	return u.String(), u.Hostname(), nil
}
