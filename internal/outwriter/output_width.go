package outwriter

import (
	"os"

	"github.com/huangsam/flowcast/internal/contract"
	"golang.org/x/term"
)

// getTerminalWidth returns the width override, the detected terminal width, or 80.
func getTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		return 80
	}
	return detectedWidth
}

// getMaxTableParamsWidth calculates the maximum width for the hyperparameter
// column of the forecast summary table.
func getMaxTableParamsWidth(cfg *contract.Config) int {
	// Rank + Series + Model + Strategy + Train + Test + MAE + Label, with borders and padding
	baseWidth := 95
	available := getTerminalWidth(cfg) - baseWidth
	if available < 20 {
		return 20
	}
	if available > 80 {
		return 80
	}
	return available
}
