// Package version provides version information and the version command.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"

	goversion "github.com/caarlos0/go-version"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Build-time variables injected via ldflags:
//
//	-X github.com/altuslabsxyz/roulette-vrf/internal/version.Version={{.Version}}
//	-X github.com/altuslabsxyz/roulette-vrf/internal/version.GitCommit={{.FullCommit}}
//	-X github.com/altuslabsxyz/roulette-vrf/internal/version.BuildDate={{.Date}}
var (
	// Version is the semantic version of the application.
	// Defaults to "0.1.0-dev" for local builds.
	Version = "0.1.0-dev"

	// GitCommit is the git commit hash of the build.
	GitCommit = "unknown"

	// BuildDate is the date when the binary was built.
	BuildDate = "unknown"
)

// Info contains all version and build information.
type Info struct {
	Name      string   `json:"name" yaml:"name"`
	Version   string   `json:"version" yaml:"version"`
	GitCommit string   `json:"commit" yaml:"commit"`
	BuildDate string   `json:"build_date,omitempty" yaml:"build_date,omitempty"`
	GoVersion string   `json:"go" yaml:"go"`
	Platform  string   `json:"platform,omitempty" yaml:"platform,omitempty"`
	ModuleSum string   `json:"module_sum,omitempty" yaml:"module_sum,omitempty"`
	BuildDeps []string `json:"build_deps,omitempty" yaml:"build_deps,omitempty"`
}

// NewInfo creates a new Info struct for the given app name.
func NewInfo(name string) Info {
	return Info{
		Name:      name,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: fmt.Sprintf("go version %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	}
}

// WithBuildDetails fills in module checksum, platform and dependencies from
// the embedded build info.
func (i Info) WithBuildDetails() Info {
	details := goversion.GetVersionInfo(
		goversion.WithAppDetails(i.Name, "Starknet VRF roulette transaction client", "https://github.com/altuslabsxyz/roulette-vrf"),
		func(gi *goversion.Info) {
			if i.GitCommit != "unknown" {
				gi.GitCommit = i.GitCommit
			}
		},
	)
	i.Platform = details.Platform
	i.ModuleSum = details.ModuleSum
	if i.GitCommit == "unknown" && details.GitCommit != "" && details.GitCommit != "unknown" {
		i.GitCommit = details.GitCommit
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return i
	}
	deps := make([]string, 0, len(buildInfo.Deps))
	for _, dep := range buildInfo.Deps {
		depStr := fmt.Sprintf("%s@%s", dep.Path, dep.Version)
		if dep.Replace != nil {
			depStr = fmt.Sprintf("%s@%s => %s@%s", dep.Path, dep.Version, dep.Replace.Path, dep.Replace.Version)
		}
		deps = append(deps, depStr)
	}
	sort.Strings(deps)
	i.BuildDeps = deps
	return i
}

// String returns a formatted string representation of the version info.
func (i Info) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s version %s\n", i.Name, i.Version))
	sb.WriteString(fmt.Sprintf("  commit:     %s\n", i.GitCommit))
	sb.WriteString(fmt.Sprintf("  build date: %s\n", i.BuildDate))
	sb.WriteString(fmt.Sprintf("  go:         %s\n", i.GoVersion))
	return sb.String()
}

// LongString returns a detailed YAML-formatted string including build dependencies.
func (i Info) LongString() string {
	data, err := yaml.Marshal(i)
	if err != nil {
		return i.String()
	}
	return string(data)
}

// JSON returns the version info as a JSON string.
func (i Info) JSON() (string, error) {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewCmd creates a version command for the given app name.
func NewCmd(name string) *cobra.Command {
	var (
		long       bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version information including build details. Use --long for detailed dependency info.",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := NewInfo(name)
			if long {
				info = info.WithBuildDetails()
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				s, err := info.JSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
				return nil
			}
			if long {
				fmt.Fprint(out, info.LongString())
			} else {
				fmt.Fprint(out, info.String())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&long, "long", false, "Show detailed version info including build dependencies")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info in JSON format")

	return cmd
}
