package cfg

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Discovery sources
	HTMLFile              string `long:"html-file" env:"MEDIUM_HTML_FILE" description:"HTML source of https://medium.com/<publication>/latest, https://medium.com/<publication>/stories/published or https://medium.com/me/stories/public"`
	PublicationURL        string `short:"p" long:"publication-url" env:"MEDIUM_PUBLICATION_URL" description:"Listing page URL, e.g. https://medium.com/<publication>/latest"`
	URLsFile              string `short:"u" long:"urls-file" env:"MEDIUM_URLS_FILE" description:"File containing post urls separated by whitespace"`
	URLs                  string `short:"U" long:"urls" env:"MEDIUM_URLS" description:"Comma separated post urls"`
	FeedURL               string `long:"feed-url" env:"MEDIUM_FEED_URL" description:"Publication RSS feed, e.g. https://medium.com/feed/<publication>"`
	RefetchPublicationURL bool   `short:"r" long:"refetch-publication-url" env:"REFETCH_PUBLICATION_URL" description:"Bypass the cache for the listing page"`

	// Output
	OutFile      string `short:"o" long:"out" env:"OUT_FILE" default:"wp-posts.xml" description:"Generated WordPress XML file name"`
	TemplateFile string `long:"template" env:"WXR_TEMPLATE" description:"WXR skeleton file (embedded skeleton when empty)"`

	// Storage
	CacheDir string `long:"cache-dir" env:"CACHE_DIR" default:"downloadedUrls" description:"Directory holding fetched pages"`
	DBPath   string `long:"db-path" env:"DB_PATH" default:"medium-wxr.db" description:"SQLite run ledger (empty disables)"`

	// Site profile
	SiteConfig    string   `long:"site-config" env:"SITE_CONFIG" description:"YAML site profile overriding the options below"`
	CanonicalHost string   `long:"canonical-host" env:"CANONICAL_HOST" default:"https://medium.com" description:"Canonical host prefix of post urls"`
	TitleSuffix   string   `long:"title-suffix" env:"TITLE_SUFFIX" default:"- Tensult Blogs - Medium" description:"Site name suffix stripped from page titles"`
	Category      string   `long:"category" env:"DEFAULT_CATEGORY" default:"Technology" description:"Top-level category attached to every post"`
	AllowedHosts  []string `long:"allowed-host" env:"ALLOWED_HOSTS" env-delim:"," default:"medium.com" default:"www.medium.com" default:"gist.github.com" description:"Hosts the fetcher may contact"`

	// Fetching
	UserAgent    string  `long:"user-agent" env:"USER_AGENT" default:"medium-wxr/1.0" description:"User agent string for HTTP requests"`
	RateLimit    float64 `long:"rate-limit" env:"RATE_LIMIT" default:"2" description:"Maximum fetches per second"`
	FetchTimeout int     `long:"timeout" env:"FETCH_TIMEOUT" default:"30" description:"Fetch timeout in seconds"`

	// Behaviour
	Strict bool   `long:"strict" env:"STRICT" description:"Abort the run on the first post failure"`
	Serve  bool   `long:"serve" env:"SERVE" description:"Start the preview server after the run"`
	Port   string `long:"port" env:"PORT" default:"8080" description:"Preview server port"`
	Debug  bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses args (without the program name) together with the environment.
// A .env file in the working directory is applied first. Returns nil, nil when
// help was requested.
func Load(args []string) (*Cfg, error) {
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		HTMLFile:              raw.HTMLFile,
		PublicationURL:        raw.PublicationURL,
		URLsFile:              raw.URLsFile,
		URLs:                  raw.URLs,
		FeedURL:               raw.FeedURL,
		RefetchPublicationURL: raw.RefetchPublicationURL,
		OutFile:               raw.OutFile,
		TemplateFile:          raw.TemplateFile,
		CacheDir:              raw.CacheDir,
		DBPath:                raw.DBPath,
		CanonicalHost:         strings.TrimSuffix(raw.CanonicalHost, "/"),
		TitleSuffix:           raw.TitleSuffix,
		CategoryName:          raw.Category,
		CategoryNicename:      strings.ToLower(raw.Category),
		AllowedHosts:          raw.AllowedHosts,
		UserAgent:             raw.UserAgent,
		RateLimit:             raw.RateLimit,
		FetchTimeout:          time.Duration(raw.FetchTimeout) * time.Second,
		Strict:                raw.Strict,
		Serve:                 raw.Serve,
		Port:                  raw.Port,
		Debug:                 raw.Debug,
		Version:               GetVersion(),
	}

	if raw.SiteConfig != "" {
		profile, err := LoadSiteProfile(raw.SiteConfig)
		if err != nil {
			return nil, err
		}
		cfg.applySiteProfile(profile)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WriteHelp prints the option summary to w.
func WriteHelp(w io.Writer) {
	var raw rawCfg
	flags.NewParser(&raw, flags.Default).WriteHelp(w)
}

// LoadSiteProfile reads a YAML site profile.
func LoadSiteProfile(path string) (*SiteProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read site profile: %w", err)
	}

	var profile SiteProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse site profile %s: %w", path, err)
	}

	return &profile, nil
}

func (c *Cfg) applySiteProfile(p *SiteProfile) {
	if p.CanonicalHost != "" {
		c.CanonicalHost = strings.TrimSuffix(p.CanonicalHost, "/")
	}
	if p.TitleSuffix != "" {
		c.TitleSuffix = p.TitleSuffix
	}
	if len(p.AllowedHosts) > 0 {
		c.AllowedHosts = p.AllowedHosts
	}
	if p.Category.Name != "" {
		c.CategoryName = p.Category.Name
		c.CategoryNicename = cmp.Or(p.Category.Nicename, strings.ToLower(p.Category.Name))
	}
}

func (c *Cfg) validate() error {
	if !strings.HasPrefix(c.CanonicalHost, "http://") && !strings.HasPrefix(c.CanonicalHost, "https://") {
		return fmt.Errorf("canonical host must be an absolute http(s) url: %q", c.CanonicalHost)
	}
	if c.OutFile == "" {
		return fmt.Errorf("output file is required")
	}
	if c.CacheDir == "" {
		return fmt.Errorf("cache directory is required")
	}
	if strings.TrimSpace(c.CategoryName) == "" {
		return fmt.Errorf("category name is required")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	return nil
}
