package pdfextract

import (
	"regexp"
	"strings"
	"unicode"
)

var multiSpaceRe = regexp.MustCompile(`[ \t]{2,}`)

// CleanText post-processes raw pdftotext output: trims each line, collapses
// multiple spaces, caps blank-line runs at two, drops OCR artifact runs and
// non-printable characters (newline and tab survive).
func CleanText(raw string) string {
	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	blanks := 0

	for _, line := range lines {
		line = stripNonPrintable(line)
		line = stripArtifactRuns(line)
		line = multiSpaceRe.ReplaceAllString(line, " ")
		line = strings.TrimSpace(line)

		if line == "" {
			blanks++
			if blanks > 2 {
				continue
			}
		} else {
			blanks = 0
		}
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// stripArtifactRuns removes runs of 4 or more repeated non-word characters,
// the usual residue of scanned separators ("-----", "....", "====").
func stripArtifactRuns(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(runes); {
		r := runes[i]
		j := i + 1
		for j < len(runes) && runes[j] == r {
			j++
		}
		runLen := j - i
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
		if runLen >= 4 && !isWord && !unicode.IsSpace(r) {
			i = j
			continue
		}
		for ; i < j; i++ {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripNonPrintable drops control characters while preserving tab.
func stripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return r
		}
		if unicode.IsControl(r) || !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, s)
}
