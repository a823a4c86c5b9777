package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"
	"github.com/yildizm/histodash/internal/api"
	"github.com/yildizm/histodash/internal/dashboard"
	"github.com/yildizm/histodash/internal/emoji"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(report *dashboard.Report) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b)

	if report.File != nil {
		f.writeFile(&b, report.File)
	}

	f.writePrediction(&b, report)

	if report.Metrics != nil {
		f.writeMetrics(&b, report.Metrics, report.Analytics)
	}

	return []byte(b.String()), nil
}

// writeHeader writes the report title inside a box
func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := "Breast Cancer Image Classifier"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

func (f *terminalFormatter) writeFile(b *strings.Builder, file *dashboard.FileInfo) {
	b.WriteString(emoji.GetEmoji("image") + " Image\n")

	items := []termfmt.TreeItem{
		{Label: "File", Value: file.Name},
		{Label: "Size", Value: FormatBytes(file.Size)},
	}
	if file.Format != "" {
		items = append(items, termfmt.TreeItem{Label: "Format", Value: fmt.Sprintf("%s %dx%d", file.Format, file.Width, file.Height)})
	} else {
		items = append(items, termfmt.TreeItem{Label: "Format", Value: "not a decodable image"})
	}
	items[len(items)-1].Last = true

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writePrediction(b *strings.Builder, report *dashboard.Report) {
	b.WriteString(emoji.GetEmoji("stethoscope") + " Prediction\n")

	if report.Prediction != nil {
		fmt.Fprintf(b, "%s %s\n", emoji.GetEmoji(report.Badge), BadgeText(*report.Prediction))
	} else {
		b.WriteString("No prediction yet\n")
	}

	if report.Error != nil {
		fmt.Fprintf(b, "%s %s\n", emoji.GetEmoji("error"), *report.Error)
	}
	b.WriteString("\n")
}

// writeMetrics writes the classification report as a tree with an accuracy bar
func (f *terminalFormatter) writeMetrics(b *strings.Builder, m *api.Metrics, analytics bool) {
	b.WriteString(emoji.GetEmoji("statistics") + " Model Analytics\n")

	items := []termfmt.TreeItem{
		{
			Label: "Accuracy",
			Value: fmt.Sprintf("%s %.1f%%", termfmt.CreateConfidenceBar(m.Accuracy, f.opts), m.Accuracy*100),
		},
	}

	rows := scoreRows(m)
	for i, row := range rows {
		items = append(items, termfmt.TreeItem{
			Label: displayName(row.Name),
			Value: "",
			Children: []termfmt.TreeItem{
				{Label: "Precision", Value: formatScore(row.Scores.Precision)},
				{Label: "Recall", Value: formatScore(row.Scores.Recall)},
				{Label: "F1 Score", Value: formatScore(row.Scores.F1Score)},
				{Label: "Support", Value: formatSupport(row.Scores.Support), Last: true},
			},
			Last: i == len(rows)-1,
		})
	}

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n")
	if !analytics {
		b.WriteString("(charts appear once a prediction is available)\n")
	}
	b.WriteString("\n")
}
