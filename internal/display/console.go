package display

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/RyanBlaney/latency-benchmark-common/output"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Console writes each update to a stream, either as the plain text summary
// or through one of the structured output formatters.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	format  string
	printer *message.Printer
}

// NewConsole creates a console sink. format is text, json, yaml or table.
func NewConsole(out io.Writer, format string) *Console {
	return &Console{
		out:     out,
		format:  format,
		printer: message.NewPrinter(language.English),
	}
}

func (c *Console) Name() string { return "console" }

// Render writes one update
func (c *Console) Render(u *Update) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.format == "" || c.format == "text" {
		return c.renderText(u)
	}

	formatted, err := NewFormatter(c.format).Format(consoleView(u), true)
	if err != nil {
		return fmt.Errorf("failed to format update %d: %w", u.Sequence, err)
	}
	_, err = c.out.Write(formatted)
	return err
}

func (c *Console) renderText(u *Update) error {
	header := c.printer.Sprintf("frame #%d  %d samples", u.Sequence, u.Waveform.Len())
	if u.AnalysisError != "" {
		header += "  (spectrum unavailable: " + u.AnalysisError + ")"
	}
	_, err := fmt.Fprintf(c.out, "%s\n%s\n", header, u.Summary)
	return err
}

func (c *Console) Close() error { return nil }

// NewFormatter picks the output formatter for a format name, JSON by default
func NewFormatter(format string) output.Formatter {
	switch format {
	case "json":
		return &output.JSONFormatter{}
	case "yaml":
		return &output.YAMLFormatter{}
	case "csv":
		return &output.CSVFormatter{}
	case "table":
		return &output.TableFormatter{}
	default:
		return &output.JSONFormatter{}
	}
}

// consoleView drops the per-sample arrays, which are unreadable on a terminal
func consoleView(u *Update) map[string]any {
	view := map[string]any{
		"sequence":        u.Sequence,
		"timestamp":       u.Timestamp,
		"samples":         u.Waveform.Len(),
		"normalized":      u.Waveform.Normalized,
		"waveform_bounds": u.WaveformBounds,
	}
	if len(u.Waveform.Amplitude) > 0 {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, a := range u.Waveform.Amplitude {
			lo = math.Min(lo, a)
			hi = math.Max(hi, a)
		}
		view["min_amplitude"] = lo
		view["max_amplitude"] = hi
	}
	if u.SpectrumBounds != nil {
		view["spectrum_bounds"] = *u.SpectrumBounds
	}
	if len(u.Histogram) > 0 {
		view["histogram"] = u.Histogram
	}
	if len(u.Peaks) > 0 {
		view["peaks"] = u.Peaks
	}
	if u.Features != nil {
		view["features"] = *u.Features
	}
	if u.AnalysisError != "" {
		view["analysis_error"] = u.AnalysisError
	}
	return SanitizeFloats(view).(map[string]any)
}

// SanitizeFloats replaces NaN and infinite values, which JSON cannot carry,
// with zero. Maps and slices are copied; other values pass through.
func SanitizeFloats(data any) any {
	switch v := data.(type) {
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0.0
		}
		return v
	case []float64:
		result := make([]float64, len(v))
		for i, val := range v {
			result[i] = SanitizeFloats(val).(float64)
		}
		return result
	case map[string]any:
		result := make(map[string]any, len(v))
		for k, val := range v {
			result[k] = SanitizeFloats(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = SanitizeFloats(val)
		}
		return result
	default:
		return data
	}
}
