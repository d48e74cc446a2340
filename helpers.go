package inkpost

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// PostDateLayout is the display format stamped on new posts.
const PostDateLayout = "January 02, 2006"

// FormatPostDate renders t the way post dates are stored and shown.
func FormatPostDate(t time.Time) string {
	return t.Format(PostDateLayout)
}

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// GravatarURL returns the avatar URL for email using the retro default
// image and a G rating.
func GravatarURL(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d&r=g&d=retro", hex.EncodeToString(sum[:]), size)
}

// parseID parses a positive numeric path parameter.
func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

var (
	bodyPolicy    *bluemonday.Policy
	commentPolicy *bluemonday.Policy
	policyOnce    sync.Once
)

func initPolicies() {
	policyOnce.Do(func() {
		// Post bodies come from a rich-text editor: keep formatting, images and links.
		bodyPolicy = bluemonday.UGCPolicy()
		bodyPolicy.RequireNoFollowOnLinks(true)

		// Comments are plain text with a handful of inline tags.
		commentPolicy = bluemonday.NewPolicy()
		commentPolicy.AllowStandardURLs()
		commentPolicy.AllowElements("p", "br", "strong", "b", "em", "i", "code")
		commentPolicy.AllowAttrs("href").OnElements("a")
		commentPolicy.RequireNoFollowOnLinks(true)
	})
}

// SanitizeBody strips scripts, event handlers and other unsafe markup from a
// post body while keeping ordinary formatting.
func SanitizeBody(s string) string {
	initPolicies()
	return bodyPolicy.Sanitize(s)
}

// SanitizeComment reduces comment text to a small set of inline tags.
func SanitizeComment(s string) string {
	initPolicies()
	return strings.TrimSpace(commentPolicy.Sanitize(s))
}
