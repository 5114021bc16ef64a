package markdown

import (
	"strings"
)

// moreMarkers are the accepted spellings of the excerpt truncation directive.
var moreMarkers = []string{"<!--more-->", "<!-- more -->"}

// SplitMore splits a body at the first "more" truncation marker found outside
// a fenced code block. It returns the excerpt (text before the marker) and
// the full content with the marker line removed. found is false when no
// marker exists; excerpt is then empty and content is the body unchanged.
func SplitMore(body []byte) (excerpt []byte, content []byte, found bool) {
	text := string(body)
	lines := strings.SplitAfter(text, "\n")

	inFence := false
	var fenceChar byte
	offset := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if inFence {
			if isClosingFence(trimmed, fenceChar) {
				inFence = false
			}
			offset += len(line)
			continue
		}
		if len(trimmed) >= 3 && (trimmed[0] == '`' || trimmed[0] == '~') && fenceRun(trimmed, trimmed[0]) >= 3 {
			inFence = true
			fenceChar = trimmed[0]
			offset += len(line)
			continue
		}

		if idx := markerIndex(line); idx >= 0 {
			marker := markerAt(line, idx)
			excerpt = body[:offset+idx]
			rest := text[:offset+idx] + text[offset+idx+len(marker):]
			return excerpt, []byte(rest), true
		}
		offset += len(line)
	}
	return nil, body, false
}

// fenceRun counts the leading run of ch in trimmed.
func fenceRun(trimmed string, ch byte) int {
	n := 0
	for n < len(trimmed) && trimmed[n] == ch {
		n++
	}
	return n
}

// isClosingFence reports whether trimmed closes a fence of ch. Unlike an
// opener, a closing fence carries no info string: the line must consist of
// the fence run alone.
func isClosingFence(trimmed string, ch byte) bool {
	n := fenceRun(trimmed, ch)
	return n >= 3 && n == len(trimmed)
}

func markerIndex(line string) int {
	for _, m := range moreMarkers {
		if idx := strings.Index(line, m); idx >= 0 {
			return idx
		}
	}
	return -1
}

func markerAt(line string, idx int) string {
	for _, m := range moreMarkers {
		if strings.HasPrefix(line[idx:], m) {
			return m
		}
	}
	return moreMarkers[0]
}

// FirstParagraph returns the first plain paragraph of a body, used as an
// excerpt fallback when neither a description field nor a more marker exists.
func FirstParagraph(body []byte) string {
	for _, block := range strings.Split(string(body), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if strings.HasPrefix(block, "#") || strings.HasPrefix(block, "```") || strings.HasPrefix(block, "~~~") {
			continue
		}
		return block
	}
	return ""
}
