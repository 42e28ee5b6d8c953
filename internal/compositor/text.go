package compositor

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const ellipsis = "…"

// wrapText breaks text into at most maxLines lines no wider than maxWidth, breaking at spaces where possible. If the
// text doesn't fit, the last line ends with an ellipsis.
func wrapText(face font.Face, text string, maxWidth fixed.Int26_6, maxLines int) []string {
	words := strings.Fields(text)
	var lines []string
	var line string
	for len(words) > 0 {
		candidate := words[0]
		if line != "" {
			candidate = line + " " + words[0]
		}
		if font.MeasureString(face, candidate) <= maxWidth {
			line = candidate
			words = words[1:]
			continue
		}
		if line == "" {
			// A single word wider than the line is split
			head, tail := splitToWidth(face, words[0], maxWidth)
			line = head
			if tail != "" {
				words[0] = tail
			} else {
				words = words[1:]
			}
		}
		lines = append(lines, line)
		line = ""
		if len(lines) == maxLines {
			if len(words) > 0 {
				lines[maxLines-1] = ellipsize(face, lines[maxLines-1], maxWidth)
			}
			return lines
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func splitToWidth(face font.Face, word string, maxWidth fixed.Int26_6) (string, string) {
	runes := []rune(word)
	n := len(runes)
	for n > 1 && font.MeasureString(face, string(runes[:n])) > maxWidth {
		n--
	}
	return string(runes[:n]), string(runes[n:])
}

// ellipsize shortens line until it fits maxWidth with an ellipsis appended.
func ellipsize(face font.Face, line string, maxWidth fixed.Int26_6) string {
	runes := []rune(line)
	for len(runes) > 0 && font.MeasureString(face, string(runes)+ellipsis) > maxWidth {
		runes = runes[:len(runes)-1]
	}
	return strings.TrimRight(string(runes), " ") + ellipsis
}
