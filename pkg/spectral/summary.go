package spectral

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SeparatorWidth is the width of the dashed line between the two tables
const SeparatorWidth = 25

var printer = message.NewPrinter(language.English)

// FormatSummary renders the histogram and peak tables as the multi-line text
// shown next to the plots. Either table may be empty.
func FormatSummary(hist []HistogramEntry, peaks []PeakEntry) string {
	var sb strings.Builder

	for _, e := range hist {
		fmt.Fprintf(&sb, "%04xh (%5d)  ---->  ", e.Value, e.Value)
		sb.WriteString(printer.Sprintf("%.3f%% (%d)\n", e.RelativeFrequency*100, e.Count))
	}

	if len(hist) > 0 && len(peaks) > 0 {
		sb.WriteString(strings.Repeat("-", SeparatorWidth))
		sb.WriteByte('\n')
	}

	for _, e := range peaks {
		freq := strconv.FormatFloat(e.Frequency, 'f', -1, 64)
		fmt.Fprintf(&sb, "%4sHz  ---->  ", freq)
		sb.WriteString(printer.Sprintf("%.3f%% (%.2f)\n", e.NormalizedAmplitude*100, e.Amplitude))
	}

	return sb.String()
}
