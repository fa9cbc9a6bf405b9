package chart

import "strings"

// lineBreaks replaces every line break with a single space.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// cellEscaper keeps text inside one Markdown table cell.
var cellEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"\r\n", "<br>",
	"\r", "<br>",
	"\n", "<br>",
)

// TableCell escapes text for a Markdown table cell. Pipes are escaped and
// line breaks become <br>.
func TableCell(s string) string {
	return cellEscaper.Replace(s)
}

// InlineText puts text on one line, for headings and other single-line
// Markdown.
func InlineText(s string) string {
	return lineBreaks.Replace(s)
}

// PieLabel makes text safe inside a quoted mermaid pie label. Mermaid has
// no escape for a double quote there, so it becomes a single quote.
func PieLabel(s string) string {
	return strings.ReplaceAll(InlineText(s), `"`, "'")
}
