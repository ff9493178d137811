package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lshan99q/epub-converter/pkg/constants"
	"github.com/lshan99q/epub-converter/pkg/types"
)

// BuildInfo identifies the converter binary
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildTime string
	BuildBy   string
}

// build is filled from the ldflags-injected variables in main.go
var build = BuildInfo{
	Version:   "dev",
	GitCommit: "none",
	BuildTime: "unknown",
	BuildBy:   "unknown",
}

// SetVersionInfo records the build metadata of this binary
func SetVersionInfo(v, commit, buildTimeParam, buildByParam string) {
	build = BuildInfo{
		Version:   v,
		GitCommit: commit,
		BuildTime: buildTimeParam,
		BuildBy:   buildByParam,
	}
}

// CurrentBuild returns the build metadata of this binary
func CurrentBuild() BuildInfo {
	return build
}

// IsRelease reports whether the binary was built from a release tag
func (b BuildInfo) IsRelease() bool {
	return b.Version != "" && !strings.Contains(b.Version, "dev") && !strings.Contains(b.Version, "+")
}

// Short returns the one-line form printed by --version
func (b BuildInfo) Short() string {
	return fmt.Sprintf("%s %s", constants.AppName, b.Version)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build and conversion profile information",
	Long: "Shows the converter build (version, commit, build time, builder),\n" +
		"the Go runtime it was compiled with, and the supported conversion\n" +
		"directions and modes.",
	Run: func(cmd *cobra.Command, args []string) {
		writeVersionInfo(os.Stdout, CurrentBuild())
	},
}

// writeVersionInfo prints the build, runtime and supported conversion profiles
func writeVersionInfo(w io.Writer, b BuildInfo) {
	fmt.Fprintf(w, "📚 EPUB Script Converter\n")
	fmt.Fprintf(w, "=======================\n\n")

	fmt.Fprintf(w, "🔖 Build:\n")
	fmt.Fprintf(w, "  Version:     %s\n", b.Version)
	fmt.Fprintf(w, "  Git Commit:  %s\n", b.GitCommit)
	fmt.Fprintf(w, "  Build Time:  %s\n", b.BuildTime)
	fmt.Fprintf(w, "  Built By:    %s\n", b.BuildBy)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "⚙️ Runtime:\n")
	fmt.Fprintf(w, "  Go Version:  %s\n", runtime.Version())
	fmt.Fprintf(w, "  OS/Arch:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "🔤 Conversion Profiles:\n")
	fmt.Fprintf(w, "  Directions:  %s\n", joinDirections(types.Directions))
	fmt.Fprintf(w, "  Modes:       %s, %s\n", types.ModeFull, types.ModeMarkup)
	fmt.Fprintf(w, "  Output:      %s<name>.epub next to each input\n", constants.DefaultOutputPrefix)
	fmt.Fprintf(w, "\n")

	if b.IsRelease() {
		fmt.Fprintf(w, "🚀 Release build\n")
		fmt.Fprintf(w, "  Release notes: https://github.com/lshan99q/epub-converter/releases/tag/%s\n", b.Version)
	} else {
		fmt.Fprintf(w, "🔧 Development build\n")
	}
}

func joinDirections(directions []types.Direction) string {
	names := make([]string, len(directions))
	for i, d := range directions {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
