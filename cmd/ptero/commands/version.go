package commands

import (
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the ptero CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			type VersionInfo struct {
				Version string `json:"version" yaml:"version"`
				Commit  string `json:"commit"  yaml:"commit"`
				Built   string `json:"built"   yaml:"built"`
				Go      string `json:"go"      yaml:"go"`
			}

			info := VersionInfo{
				Version: version,
				Commit:  commit,
				Built:   date,
				Go:      runtime.Version(),
			}

			return render(cmd, info, func(table *Table) {
				table.Header("Property", "Value")
				table.Row("Version", info.Version)
				table.Row("Commit", info.Commit)
				table.Row("Built", info.Built)
				table.Row("Go", info.Go)
			})
		},
	}
}
