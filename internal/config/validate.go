package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string
	Warnings []string
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate trims and dedupes the list fields and checks the
// config for problems that would make a scan useless.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Filters.BlockedSources = trimList(out.Filters.BlockedSources)
	out.Filters.PremiumSources = trimList(out.Filters.PremiumSources)
	out.Filters.PrioritySources = trimList(out.Filters.PrioritySources)
	out.Filters.ForeignMarkers = trimList(out.Filters.ForeignMarkers)
	out.Filters.TitleBlockKeywords = trimList(out.Filters.TitleBlockKeywords)
	out.Filters.URLBlockKeywords = trimList(out.Filters.URLBlockKeywords)
	out.Filters.AllowedMirrorHosts = trimList(out.Filters.AllowedMirrorHosts)

	if out.App.Depth <= 0 {
		out.App.Depth = 10
		res.addWarn("app.depth unset; defaulting to 10 articles per target")
	}
	if out.Company.ScanDays <= 0 {
		out.Company.ScanDays = 3
	}

	if len(out.Targets.Macro) == 0 {
		res.addErr("targets.macro is empty: nothing to scan")
	}
	if len(out.Targets.Sector) == 0 {
		res.addWarn("targets.sector is empty; sector scans will do nothing")
	}
	checkTargets := func(kind string, ts []FeedTarget) {
		for _, t := range ts {
			if strings.TrimSpace(t.Name) == "" {
				res.addErr("targets.%s entry with empty name", kind)
			}
			u, err := url.Parse(t.URL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				res.addErr("targets.%s %q has invalid url %q", kind, t.Name, t.URL)
			}
		}
	}
	checkTargets("macro", out.Targets.Macro)
	checkTargets("sector", out.Targets.Sector)

	if len(out.Filters.AllowedMirrorHosts) == 0 {
		res.addWarn("filters.allowed_mirror_hosts is empty; all mirror domains will be skipped")
	}

	prio := map[string]bool{}
	for _, p := range out.Filters.PrioritySources {
		prio[strings.ToUpper(p)] = true
	}
	for _, b := range out.Filters.BlockedSources {
		if prio[strings.ToUpper(b)] {
			res.addWarn("source appears in both blocked and priority lists: %q", b)
		}
	}

	for _, r := range out.Report.SeverityRules {
		switch strings.ToLower(r.Level) {
		case "critical", "warning":
		default:
			res.addErr("report.severity_rules has unknown level %q", r.Level)
		}
		if len(r.Any) == 0 {
			res.addWarn("report severity rule %q has no keywords", r.Level)
		}
	}

	return out, res
}
