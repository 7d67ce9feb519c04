// Package fingerprint derives a low-entropy pseudo-identity for anonymous
// ad viewers. It exists only to deduplicate impressions per viewer per day;
// it is a best-effort heuristic, not an identity or device-tracking system.
// Collisions under-count distinct viewers and never charge a campaign more
// than once per colliding group per day.
package fingerprint

import (
	"strconv"
	"strings"
)

const prefix = "anon_"

// Signals are the client-observable characteristics the ad-rendering UI
// reports for a visitor without an authenticated user id.
type Signals struct {
	UserAgent           string `json:"user_agent"`
	Language            string `json:"language"`
	ScreenWidth         int    `json:"screen_width"`
	ScreenHeight        int    `json:"screen_height"`
	ColorDepth          int    `json:"color_depth"`
	TimezoneOffset      int    `json:"timezone_offset"`
	HardwareConcurrency int    `json:"hardware_concurrency"`
	MaxTouchPoints      int    `json:"max_touch_points"`
}

// Generate produces a deterministic identity string for the given signals.
// Same device and browser yields the same string; no uniqueness guarantee.
func Generate(s Signals) string {
	raw := strings.Join([]string{
		s.UserAgent,
		s.Language,
		strconv.Itoa(s.ScreenWidth),
		strconv.Itoa(s.ScreenHeight),
		strconv.Itoa(s.ColorDepth),
		strconv.Itoa(s.TimezoneOffset),
		strconv.Itoa(s.HardwareConcurrency),
		strconv.Itoa(s.MaxTouchPoints),
	}, "|")

	// Rolling multiplicative hash truncated to 32 bits.
	var h uint32
	for _, c := range raw {
		h = h*31 + uint32(c)
	}

	return prefix + strconv.FormatUint(uint64(h), 36)
}

// IsAnonymous reports whether a tracking identity was produced by Generate
// rather than taken from an authenticated user id.
func IsAnonymous(trackingID string) bool {
	return strings.HasPrefix(trackingID, prefix)
}
