package caps

import (
	"math"
	"regexp"
)

// Feature names a single capability probe.
type Feature string

const (
	Canvas                Feature = "canvas"
	CanvasText            Feature = "canvasText"
	PointerEvents         Feature = "pointerEvents"
	TouchEvents           Feature = "touchEvents"
	MouseEvents           Feature = "mouseEvents"
	PassiveEvents         Feature = "passiveEvents"
	LocalStorage          Feature = "localStorage"
	RequestAnimationFrame Feature = "requestAnimationFrame"
	HardwareAcceleration  Feature = "hardwareAcceleration"
)

// AllFeatures lists every probe in display order.
var AllFeatures = []Feature{
	Canvas,
	CanvasText,
	PointerEvents,
	TouchEvents,
	MouseEvents,
	PassiveEvents,
	LocalStorage,
	RequestAnimationFrame,
	HardwareAcceleration,
}

// Browser is the identity parsed from a user agent string.
type Browser struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Mobile    bool   `json:"mobile"`
	UserAgent string `json:"user_agent"`
}

// Report is computed once per session and never changes afterwards.
type Report struct {
	features map[Feature]bool
	browser  Browser
}

// Detect builds a Report from raw probe results and a user agent. Probes that
// are missing count as unsupported, except mouse events which are always there.
func Detect(probes map[string]bool, userAgent string) Report {
	features := make(map[Feature]bool, len(AllFeatures))
	for _, f := range AllFeatures {
		features[f] = probes[string(f)]
	}
	features[MouseEvents] = true
	return Report{
		features: features,
		browser:  ParseUserAgent(userAgent),
	}
}

// Has reports whether a feature was detected.
func (r Report) Has(f Feature) bool {
	return r.features[f]
}

// Features returns a copy of the probe results.
func (r Report) Features() map[Feature]bool {
	out := make(map[Feature]bool, len(r.features))
	for k, v := range r.features {
		out[k] = v
	}
	return out
}

func (r Report) Browser() Browser {
	return r.browser
}

// Score is the rounded percentage of supported probes.
func (r Report) Score() int {
	if len(r.features) == 0 {
		return 0
	}
	supported := 0
	for _, ok := range r.features {
		if ok {
			supported++
		}
	}
	return int(math.Round(float64(supported) / float64(len(r.features)) * 100))
}

// LowSupport is true when the browser should get a compatibility warning.
func (r Report) LowSupport() bool {
	return r.Score() < 70
}

// Missing returns the unsupported features in display order.
func (r Report) Missing() []Feature {
	var out []Feature
	for _, f := range AllFeatures {
		if !r.features[f] {
			out = append(out, f)
		}
	}
	return out
}

var (
	mobileRe   = regexp.MustCompile(`(?i)Mobi|Android|iPhone|iPad|iPod`)
	chromeRe   = regexp.MustCompile(`Chrome/(\d+)`)
	edgeRe     = regexp.MustCompile(`Edge?/(\d+)`)
	edgeMarkRe = regexp.MustCompile(`Edge|Edg`)
	firefoxRe  = regexp.MustCompile(`Firefox/(\d+)`)
	safariRe   = regexp.MustCompile(`Version/(\d+)`)
	ieRe       = regexp.MustCompile(`rv:(\d+)`)
	safariMark = regexp.MustCompile(`Safari`)
	chromeMark = regexp.MustCompile(`Chrome`)
	tridentRe  = regexp.MustCompile(`Trident`)
)

// ParseUserAgent matches the user agent against known browsers in order;
// the first match wins.
func ParseUserAgent(ua string) Browser {
	b := Browser{
		Name:      "Unknown",
		Version:   "Unknown",
		Mobile:    mobileRe.MatchString(ua),
		UserAgent: ua,
	}

	switch {
	case chromeRe.MatchString(ua) && !edgeMarkRe.MatchString(ua):
		b.Name = "Chrome"
		b.Version = firstGroup(chromeRe, ua, "Unknown")
	case firefoxRe.MatchString(ua):
		b.Name = "Firefox"
		b.Version = firstGroup(firefoxRe, ua, "Unknown")
	case safariMark.MatchString(ua) && !chromeMark.MatchString(ua):
		b.Name = "Safari"
		b.Version = firstGroup(safariRe, ua, "Unknown")
	case edgeMarkRe.MatchString(ua):
		b.Name = "Edge"
		b.Version = firstGroup(edgeRe, ua, "Unknown")
	case tridentRe.MatchString(ua):
		b.Name = "Internet Explorer"
		b.Version = firstGroup(ieRe, ua, "11")
	}
	return b
}

func firstGroup(re *regexp.Regexp, s, fallback string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return fallback
	}
	return m[1]
}
