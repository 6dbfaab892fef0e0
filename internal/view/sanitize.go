package view

import "strings"

// formatting markers that slip through from authoring tools; stripped before
// any text lands in a node.
var markerReplacer = strings.NewReplacer(
	"**", "",
	"__", "",
	"`", "",
)

// Clean strips the known set of formatting markers from stored question text.
func Clean(s string) string {
	s = markerReplacer.Replace(s)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "#") {
			lines[i] = strings.TrimLeft(strings.TrimLeft(trimmed, "#"), " ")
		}
	}
	return strings.Join(lines, "\n")
}

// CleanText builds a text node from sanitized content.
func CleanText(s string) Node {
	return Text(Clean(s))
}
