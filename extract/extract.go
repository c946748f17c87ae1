package extract

import (
	"errors"
	"regexp"
	"strings"

	"github.com/lexcodex/incant/llm"
)

// ErrNoCode means the response carried nothing usable even after falling back
// to the unfenced text.
var ErrNoCode = errors.New("no code found in response")

// Segment is one candidate code span pulled out of a raw response.
type Segment struct {
	Language string
	Body     string
}

var languageTagPattern = regexp.MustCompile(`^[a-zA-Z0-9_+.-]+$`)

// Segments scans a raw response for spans wrapped in the profile's start/end
// delimiters and returns them in document order. Spans that trim to nothing
// are dropped.
func Segments(raw string, cfg llm.BackendConfig) []Segment {
	start := cfg.StartSep
	if start == "" {
		start = llm.DefaultStartSep
	}
	end := cfg.EndSep
	if end == "" {
		end = llm.DefaultEndSep
	}

	var segments []Segment
	rest := raw
	for {
		i := strings.Index(rest, start)
		if i < 0 {
			break
		}
		after := rest[i+len(start):]
		j := strings.Index(after, end)
		if j < 0 {
			break
		}
		span := after[:j]
		rest = after[j+len(end):]

		segment := parseSpan(span, cfg.SkipFirstLine)
		if segment.Body != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// Select picks the authoritative segment: the last fenced span, on the
// rationale that models restate earlier drafts before the final answer. A
// response without any delimiter pair falls back to the whole trimmed text.
func Select(raw string, cfg llm.BackendConfig) (Segment, error) {
	segments := Segments(raw, cfg)
	if len(segments) > 0 {
		return segments[len(segments)-1], nil
	}
	body := trimBlankEdges(raw)
	if body == "" {
		return Segment{}, ErrNoCode
	}
	return Segment{Body: body}, nil
}

// parseSpan turns the text between delimiters into a segment. A bare word on
// the opening line is read as a language tag and counts as the skipped line;
// otherwise skipFirst drops the first content line for models that restate
// the language inside the block.
func parseSpan(span string, skipFirst bool) Segment {
	var segment Segment
	body := span
	tagConsumed := false
	if idx := strings.Index(body, "\n"); idx >= 0 {
		first := strings.TrimRight(body[:idx], "\r \t")
		switch {
		case first == "":
			body = body[idx+1:]
		case languageTagPattern.MatchString(first):
			segment.Language = strings.ToLower(first)
			body = body[idx+1:]
			tagConsumed = true
		}
	}
	if skipFirst && !tagConsumed {
		if idx := strings.Index(body, "\n"); idx >= 0 {
			body = body[idx+1:]
		} else {
			body = ""
		}
	}
	segment.Body = trimBlankEdges(body)
	return segment
}

// trimBlankEdges removes leading and trailing whitespace-only lines while
// preserving interior blank lines and indentation.
func trimBlankEdges(s string) string {
	lines := strings.Split(s, "\n")
	begin := 0
	for begin < len(lines) && strings.TrimSpace(lines[begin]) == "" {
		begin++
	}
	finish := len(lines)
	for finish > begin && strings.TrimSpace(lines[finish-1]) == "" {
		finish--
	}
	return strings.Join(lines[begin:finish], "\n")
}
