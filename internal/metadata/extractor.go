// Package metadata derives per-turn metadata from raw segment text.
package metadata

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iPoetDev/browsechat-sub001/internal/marker"
	"github.com/iPoetDev/browsechat-sub001/internal/types"
)

var (
	participantRe = regexp.MustCompile(`^\s*([\p{L}\p{N}_][\p{L}\p{N}_ .'-]*):`)
	keywordRe     = regexp.MustCompile(`#(\w+)`)
	timestampRe   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}(?::\d{2})?`)
)

// timestampLayouts are tried in order against each timestamp match.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// Extract derives metadata from a turn's raw text. It always succeeds:
// empty input yields empty participant and keyword sets with length 0.
// Extract is pure; the same input always produces the same record.
func Extract(text string) types.Metadata {
	md := types.Metadata{
		Length: utf8.RuneCountInString(text),
	}
	if text == "" {
		return md
	}

	seen := make(map[string]bool)
	for _, line := range strings.Split(marker.StripInvisible(text), "\n") {
		m := participantRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := marker.SanitizeName(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		md.Participants = append(md.Participants, name)
	}

	seenKw := make(map[string]bool)
	for _, m := range keywordRe.FindAllStringSubmatch(text, -1) {
		kw := strings.ToLower(m[1])
		if seenKw[kw] {
			continue
		}
		seenKw[kw] = true
		md.Keywords = append(md.Keywords, kw)
	}

	md.StartTime, md.EndTime = timestampWindow(text)
	return md
}

// timestampWindow returns the earliest and latest parsable timestamps in the
// text, or nils when none parse.
func timestampWindow(text string) (*time.Time, *time.Time) {
	var start, end *time.Time
	for _, raw := range timestampRe.FindAllString(text, -1) {
		t, ok := parseTimestamp(raw)
		if !ok {
			continue
		}
		if start == nil || t.Before(*start) {
			tt := t
			start = &tt
		}
		if end == nil || t.After(*end) {
			tt := t
			end = &tt
		}
	}
	return start, end
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
