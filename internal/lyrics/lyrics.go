// Package lyrics parses time-synced lyrics and finds the active line for a
// playback position.
package lyrics

import (
	"bufio"
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Line is one timed lyric line.
type Line struct {
	TimeMs int64  `json:"timeMs"`
	Text   string `json:"text"`
}

// Parse reads LRC formatted text. Each "[mm:ss.xx]" prefix produces a line;
// a line may carry several stamps. Metadata tags like "[ar:...]" and lines
// without a stamp are ignored. The result is sorted by time, lines sharing a
// stamp keep their input order.
func Parse(lrc string) []Line {
	var out []Line
	s := bufio.NewScanner(strings.NewReader(lrc))
	// No line is longer than the input, so Scan never stops early.
	s.Buffer(nil, max(len(lrc)+1, bufio.MaxScanTokenSize))
	for s.Scan() {
		rest := strings.TrimSpace(s.Text())
		var stamps []int64
		for strings.HasPrefix(rest, "[") {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				break
			}
			ms, ok := parseStamp(rest[1:end])
			if !ok {
				break
			}
			stamps = append(stamps, ms)
			rest = rest[end+1:]
		}
		text := strings.TrimSpace(rest)
		for _, ms := range stamps {
			out = append(out, Line{TimeMs: ms, Text: text})
		}
	}
	slices.SortStableFunc(out, func(a, b Line) int {
		return cmp.Compare(a.TimeMs, b.TimeMs)
	})
	return out
}

// parseStamp parses "mm:ss", "mm:ss.xx" or "mm:ss.xxx".
func parseStamp(s string) (int64, bool) {
	mm, rest, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	m, err := strconv.ParseInt(mm, 10, 64)
	if err != nil || m < 0 {
		return 0, false
	}
	ss, frac, _ := strings.Cut(rest, ".")
	sec, err := strconv.ParseInt(ss, 10, 64)
	if err != nil || sec < 0 || sec >= 60 {
		return 0, false
	}
	ms := (m*60 + sec) * 1000
	if frac != "" {
		if len(frac) > 3 {
			frac = frac[:3]
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil || f < 0 {
			return 0, false
		}
		for range 3 - len(frac) {
			f *= 10
		}
		ms += f
	}
	return ms, true
}

// At returns the index of the line active at posMs: the last line whose
// time is at or before posMs. It returns -1 before the first line.
func At(lines []Line, posMs int64) int {
	i, found := slices.BinarySearchFunc(lines, posMs, func(l Line, t int64) int {
		return cmp.Compare(l.TimeMs, t)
	})
	if found {
		// Several lines can share a stamp; the last one wins.
		for i+1 < len(lines) && lines[i+1].TimeMs == posMs {
			i++
		}
		return i
	}
	return i - 1
}
