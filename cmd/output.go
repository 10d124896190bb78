package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/kilianp07/crewroster/core/conflict"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
	headColor = color.New(color.Bold)
)

func severityColor(s conflict.Severity) *color.Color {
	switch s {
	case conflict.SeverityHigh:
		return errColor
	case conflict.SeverityMedium:
		return warnColor
	default:
		return color.New(color.FgCyan)
	}
}

func rate(v float64) string {
	s := fmt.Sprintf("%.1f%%", v*100)
	switch {
	case v >= 0.95:
		return okColor.Sprint(s)
	case v >= 0.8:
		return warnColor.Sprint(s)
	default:
		return errColor.Sprint(s)
	}
}
