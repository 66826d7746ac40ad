package capture

// Locator identifies the post on a page, and the media inside the post that may still be
// loading when the post itself is already visible. Both are absolute XPaths through the
// page structure; they break whenever the site changes its layout, so they are versioned
// and replaceable from the config file instead of being hard-coded at call sites.
type Locator struct {
	Version string `yaml:"version"`
	Post    string `yaml:"post"`
	Media   string `yaml:"media"`
}

// DefaultLocator matches the single-post page layout of twitter.com as of mid 2020.
var DefaultLocator = Locator{
	Version: "twitter-2020.06",
	Post: "/html/body/div/div/div/div[2]/main/div/div/div/div[1]/div/div/div/section/div/div/div/div[1]/div/" +
		"div/div/div/article",
	Media: "/html/body/div/div/div/div[2]/main/div/div/div/div[1]/div/div/div/section/div/div/div/div[1]/div/" +
		"div/div/div/article/div/div[3]/div[2]/div/div/div/div/div[2]/div/div[2]/a[2]/div/div/div",
}

// Override returns l with every non-empty field of o applied on top.
// A custom post path without a version is reported as “custom”.
func (l Locator) Override(o Locator) Locator {
	if o.Post != "" {
		l.Post = o.Post
		l.Version = "custom"
	}
	if o.Media != "" {
		l.Media = o.Media
	}
	if o.Version != "" {
		l.Version = o.Version
	}
	return l
}
