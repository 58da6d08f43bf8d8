package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/conneroisu/coachsite/internal/version"
	"github.com/spf13/cobra"
)

var (
	versionFormat   string
	versionShort    bool
	versionDetailed bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the version, commit, build time, Go version and platform.

Examples:
  coachsite version               # Show version and commit
  coachsite version --detailed    # Show every build field
  coachsite version --format json # Output as JSON`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion(cmd.OutOrStdout(), versionFormat, versionShort, versionDetailed)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
	versionCmd.Flags().BoolVar(&versionDetailed, "detailed", false, "Show detailed version information")
}

func printVersion(w io.Writer, format string, short, detailed bool) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(version.GetBuildInfo())
	case "text":
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", format)
	}

	switch {
	case short:
		_, err := fmt.Fprintln(w, version.GetShortVersion())
		return err
	case detailed:
		_, err := fmt.Fprintln(w, version.GetDetailedVersion())
		return err
	}

	info := version.GetBuildInfo()
	line := "coachsite " + version.GetShortVersion()
	if info.Dirty {
		line += " (dirty)"
	}
	_, err := fmt.Fprintf(w, "%s\n%s %s\n", line, info.GoVersion, info.Platform)
	return err
}
