package export

import (
	"fmt"
	"html"
	"strings"

	"audio-transcriber/internal/domain"
)

// speakerColors give each speaker a stable accent in the HTML rendering,
// assigned in order of first appearance.
var speakerColors = []string{
	"#667eea", "#f5576c", "#4facfe", "#43e97b",
	"#fa709a", "#fee140", "#30cfd0", "#a8edea",
}

// RenderText renders the transcript as plain text, one block per turn.
func RenderText(entries []domain.TranscriptEntry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s:\n%s\n\n", e.Speaker, e.Text)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// RenderMarkdown renders the transcript as a markdown document.
func RenderMarkdown(title string, entries []domain.TranscriptEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", orDefault(title))

	for _, e := range entries {
		if e.Timestamp != "" {
			fmt.Fprintf(&b, "**%s** _[%s]_\n\n%s\n\n", e.Speaker, e.Timestamp, e.Text)
		} else {
			fmt.Fprintf(&b, "**%s:**\n\n%s\n\n", e.Speaker, e.Text)
		}
	}
	return b.String()
}

// RenderHTML renders a standalone HTML page with per-speaker colors.
func RenderHTML(title string, entries []domain.TranscriptEntry) string {
	title = orDefault(title)

	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>%s</title>
<style>
body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; max-width: 800px; margin: 0 auto; padding: 40px 20px; background: #f5f5f5; color: #333; }
h1 { color: #667eea; border-bottom: 3px solid #667eea; padding-bottom: 10px; }
.segment { background: white; border-radius: 8px; padding: 15px 20px; margin-bottom: 15px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
.speaker { font-weight: bold; margin-bottom: 8px; font-size: 14px; }
.timestamp { color: #999; font-weight: normal; font-size: 12px; }
.text { line-height: 1.6; color: #444; }
</style>
</head>
<body>
<h1>%s</h1>
`, html.EscapeString(title), html.EscapeString(title))

	colors := map[string]string{}
	for _, e := range entries {
		color, ok := colors[e.Speaker]
		if !ok {
			color = speakerColors[len(colors)%len(speakerColors)]
			colors[e.Speaker] = color
		}

		ts := ""
		if e.Timestamp != "" {
			ts = fmt.Sprintf(` <span class="timestamp">[%s]</span>`, html.EscapeString(e.Timestamp))
		}

		fmt.Fprintf(&b, `<div class="segment">
<div class="speaker" style="color: %s;">%s%s</div>
<div class="text">%s</div>
</div>
`, color, html.EscapeString(e.Speaker), ts, html.EscapeString(e.Text))
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func orDefault(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Meeting Transcript"
	}
	return title
}
