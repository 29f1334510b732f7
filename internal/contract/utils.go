package contract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Accuracy label constants.
const (
	ExactValue    = "Exact"    // Exact value
	GoodValue     = "Good"     // Good value
	FairValue     = "Fair"     // Fair value
	PoorValue     = "Poor"     // Poor value
	UnscaledValue = "Unscaled" // Unscaled value
)

// Color variables for console output.
var (
	ExactColor = color.New(color.FgGreen, color.Bold) // exactColor marks a perfect fit.
	GoodColor  = color.New(color.FgCyan)              // goodColor marks errors under a tenth of the mean.
	FairColor  = color.New(color.FgYellow)            // fairColor represents standard caution, not bold.
	PoorColor  = color.New(color.FgRed, color.Bold)   // poorColor represents standard danger.
)

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(label string) string {
	switch label {
	case ExactValue:
		return ExactColor.Sprint(label)
	case GoodValue:
		return GoodColor.Sprint(label)
	case FairValue:
		return FairColor.Sprint(label)
	case PoorValue:
		return PoorColor.Sprint(label)
	default:
		return label
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// IsTerminal reports whether the writer is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// GetCacheDBFilePath returns the path to the SQLite DB file for series cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".flowcast_cache.db"
	}
	return filepath.Join(homeDir, ".flowcast_cache.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for forecast run storage.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".flowcast_runs.db"
	}
	return filepath.Join(homeDir, ".flowcast_runs.db")
}

// TruncateText truncates a string to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to leave room for the "..." and at least one character.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
