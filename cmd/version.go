package cmd

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// buildVersion prefers the linker version and falls back to the module version
// recorded by 'go install'.
func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flowcast.",
	Long: `Display version information including build details: release version,
commit hash, build timestamp and Go runtime.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("flowcast CLI\n")
		cmd.Printf("  Version: %s\n", buildVersion())
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  Runtime: %s\n", runtime.Version())
	},
}
