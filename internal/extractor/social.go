package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/pkg/urlutil"
)

// SocialRecognizer turns a link on one platform into a profile. Parse gets
// the non-empty path segments and returns the username, the canonical
// profile path, and whether the link is a profile at all. An empty username
// with ok=true keeps the profile with an unknown username.
type SocialRecognizer struct {
	Platform      insight.Platform
	Hosts         []string
	CanonicalHost string
	Parse         func(segments []string) (username, profilePath string, ok bool)
}

func (r SocialRecognizer) matchesHost(host string) bool {
	host = strings.ToLower(host)
	for _, prefix := range []string{"www.", "m.", "mobile.", "web."} {
		host = strings.TrimPrefix(host, prefix)
	}
	for _, h := range r.Hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// sharePaths are first path segments of share dialogs, posts and other
// non-profile pages.
//
//nolint:gochecknoglobals // static lookup table
var sharePaths = map[string]struct{}{
	"share": {}, "sharer": {}, "sharer.php": {}, "intent": {}, "dialog": {},
	"plugins": {}, "p": {}, "reel": {}, "reels": {}, "tv": {}, "stories": {},
	"watch": {}, "embed": {}, "shorts": {}, "results": {}, "playlist": {},
	"hashtag": {}, "explore": {}, "search": {}, "home": {}, "login": {},
	"signup": {}, "i": {}, "pin": {}, "sharearticle": {}, "tr": {}, "privacy": {},
	"legal": {}, "about": {}, "help": {}, "policies": {}, "terms": {},
}

var (
	instagramUser = regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)
	twitterUser   = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)
	genericUser   = regexp.MustCompile(`^[A-Za-z0-9._-]{1,100}$`)
)

func isShareSegment(segment string) bool {
	_, ok := sharePaths[strings.ToLower(segment)]
	return ok
}

func firstSegmentProfile(pattern *regexp.Regexp) func([]string) (string, string, bool) {
	return func(segments []string) (string, string, bool) {
		if isShareSegment(segments[0]) {
			return "", "", false
		}
		if status := indexOf(segments, "status"); status >= 0 {
			return "", "", false
		}
		if !pattern.MatchString(segments[0]) {
			return "", "", false
		}
		return segments[0], "/" + segments[0], true
	}
}

func parseFacebook(segments []string) (string, string, bool) {
	first := strings.ToLower(segments[0])
	switch {
	case isShareSegment(first):
		return "", "", false
	case first == "profile.php":
		return "", "/profile.php", true
	case first == "pages" && len(segments) >= 2:
		return segments[1], "/" + strings.Join(segments, "/"), true
	case first == "groups" || first == "events" || first == "photo.php" || first == "story.php":
		return "", "", false
	}
	if !genericUser.MatchString(segments[0]) {
		return "", "", false
	}
	return segments[0], "/" + segments[0], true
}

func parseTikTok(segments []string) (string, string, bool) {
	if !strings.HasPrefix(segments[0], "@") || len(segments[0]) < 2 {
		return "", "", false
	}
	if len(segments) > 1 && strings.EqualFold(segments[1], "video") {
		return "", "", false
	}
	user := strings.TrimPrefix(segments[0], "@")
	if !genericUser.MatchString(user) {
		return "", "", false
	}
	return user, "/@" + user, true
}

func parseYouTube(segments []string) (string, string, bool) {
	first := segments[0]
	if strings.HasPrefix(first, "@") && len(first) > 1 {
		user := first[1:]
		return user, "/@" + user, true
	}
	switch strings.ToLower(first) {
	case "channel", "c", "user":
		if len(segments) < 2 || !genericUser.MatchString(segments[1]) {
			return "", "", false
		}
		return segments[1], "/" + strings.ToLower(first) + "/" + segments[1], true
	}
	if isShareSegment(first) || !genericUser.MatchString(first) {
		return "", "", false
	}
	return first, "/" + first, true
}

func parseLinkedIn(segments []string) (string, string, bool) {
	switch strings.ToLower(segments[0]) {
	case "company", "in", "school", "showcase":
		if len(segments) < 2 || !genericUser.MatchString(segments[1]) {
			return "", "", false
		}
		return segments[1], "/" + strings.ToLower(segments[0]) + "/" + segments[1], true
	}
	return "", "", false
}

// DefaultSocialRecognizers returns the built-in platform recognizers in
// platform order.
func DefaultSocialRecognizers() []SocialRecognizer {
	return []SocialRecognizer{
		{
			Platform:      insight.PlatformInstagram,
			Hosts:         []string{"instagram.com", "instagr.am"},
			CanonicalHost: "www.instagram.com",
			Parse:         firstSegmentProfile(instagramUser),
		},
		{
			Platform:      insight.PlatformFacebook,
			Hosts:         []string{"facebook.com", "fb.com", "fb.me"},
			CanonicalHost: "www.facebook.com",
			Parse:         parseFacebook,
		},
		{
			Platform:      insight.PlatformTwitter,
			Hosts:         []string{"twitter.com", "x.com"},
			CanonicalHost: "x.com",
			Parse:         firstSegmentProfile(twitterUser),
		},
		{
			Platform:      insight.PlatformTikTok,
			Hosts:         []string{"tiktok.com"},
			CanonicalHost: "www.tiktok.com",
			Parse:         parseTikTok,
		},
		{
			Platform:      insight.PlatformYouTube,
			Hosts:         []string{"youtube.com"},
			CanonicalHost: "www.youtube.com",
			Parse:         parseYouTube,
		},
		{
			Platform:      insight.PlatformLinkedIn,
			Hosts:         []string{"linkedin.com"},
			CanonicalHost: "www.linkedin.com",
			Parse:         parseLinkedIn,
		},
		{
			Platform:      insight.PlatformPinterest,
			Hosts:         []string{"pinterest.com", "pinterest.co.uk", "pinterest.ca", "pinterest.com.au", "pinterest.de", "pinterest.fr"},
			CanonicalHost: "www.pinterest.com",
			Parse:         firstSegmentProfile(genericUser),
		},
	}
}

// ExtractSocialHandles scans every link of the given pages in order. The
// first profile per platform wins; share links and links without a profile
// path are ignored.
func ExtractSocialHandles(recognizers []SocialRecognizer, pages ...Page) Partial[[]insight.SocialHandle] {
	handles := []insight.SocialHandle{}
	seen := make(map[insight.Platform]struct{})
	var src Page

	for _, page := range pages {
		if !page.Valid() {
			continue
		}
		page.Doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			handle, ok := recognizeSocial(recognizers, page, href)
			if !ok {
				return
			}
			if _, dup := seen[handle.Platform]; dup {
				return
			}
			seen[handle.Platform] = struct{}{}
			handles = append(handles, handle)
			if src.Doc == nil {
				src = page
			}
		})
	}

	if len(handles) == 0 {
		return notFound(handles, "no social profile links")
	}
	return found(handles, src.Kind)
}

func recognizeSocial(recognizers []SocialRecognizer, page Page, href string) (insight.SocialHandle, bool) {
	link, ok := urlutil.Resolve(page.URL, strings.TrimSpace(href))
	if !ok {
		return insight.SocialHandle{}, false
	}
	segments := pathSegments(link.Path)
	if len(segments) == 0 {
		return insight.SocialHandle{}, false
	}
	for _, r := range recognizers {
		if !r.matchesHost(link.Host) {
			continue
		}
		username, profilePath, ok := r.Parse(segments)
		if !ok {
			return insight.SocialHandle{}, false
		}
		handle := insight.SocialHandle{
			Platform: r.Platform,
			URL:      "https://" + r.CanonicalHost + profilePath,
		}
		if username != "" {
			handle.Username = &username
		}
		return handle, true
	}
	return insight.SocialHandle{}, false
}

func pathSegments(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func indexOf(segments []string, value string) int {
	for i, s := range segments {
		if strings.EqualFold(s, value) {
			return i
		}
	}
	return -1
}
