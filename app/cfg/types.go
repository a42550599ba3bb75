package cfg

import "time"

type Cfg struct {
	// Discovery sources
	HTMLFile              string
	PublicationURL        string
	URLsFile              string
	URLs                  string
	FeedURL               string
	RefetchPublicationURL bool

	// Output
	OutFile      string
	TemplateFile string

	// Storage
	CacheDir string
	DBPath   string

	// Site profile
	CanonicalHost    string
	TitleSuffix      string
	CategoryName     string
	CategoryNicename string
	AllowedHosts     []string

	// Fetching
	UserAgent    string
	RateLimit    float64
	FetchTimeout time.Duration

	// Behaviour
	Strict  bool
	Serve   bool
	Port    string
	Debug   bool
	Version string
}

// HasSource reports whether any discovery source was configured.
func (c *Cfg) HasSource() bool {
	return c.HTMLFile != "" || c.PublicationURL != "" || c.URLsFile != "" || c.URLs != "" || c.FeedURL != ""
}

// SiteProfile is the optional YAML file overriding the platform constants.
type SiteProfile struct {
	CanonicalHost string   `yaml:"canonical_host"`
	TitleSuffix   string   `yaml:"title_suffix"`
	AllowedHosts  []string `yaml:"allowed_hosts"`
	Category      struct {
		Name     string `yaml:"name"`
		Nicename string `yaml:"nicename"`
	} `yaml:"category"`
}
