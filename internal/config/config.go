package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type FeedTarget struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	URL      string `yaml:"url"`
}

type SeverityRule struct {
	Level string   `yaml:"level"`
	Any   []string `yaml:"any"`
}

type Config struct {
	App struct {
		DataDir  string `yaml:"data_dir"`
		Depth    int    `yaml:"depth"`
		Headless bool   `yaml:"headless"`
	} `yaml:"app"`

	Targets struct {
		Macro  []FeedTarget `yaml:"macro"`
		Sector []FeedTarget `yaml:"sector"`
	} `yaml:"targets"`

	Filters struct {
		BlockedSources     []string `yaml:"blocked_sources"`
		PremiumSources     []string `yaml:"premium_sources"`
		PrioritySources    []string `yaml:"priority_sources"`
		ForeignMarkers     []string `yaml:"foreign_markers"`
		TitleBlockKeywords []string `yaml:"title_block_keywords"`
		URLBlockKeywords   []string `yaml:"url_block_keywords"`
		AllowedMirrorHosts []string `yaml:"allowed_mirror_hosts"`
	} `yaml:"filters"`

	Company struct {
		ScanDays          int  `yaml:"scan_days"`
		StrictTickerMatch bool `yaml:"strict_ticker_match"`
	} `yaml:"company"`

	Report struct {
		SeverityRules []SeverityRule `yaml:"severity_rules"`
	} `yaml:"report"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
