package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/ptero/internal/constants"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Table collects the rows of a table rendering.
type Table struct {
	table *tablewriter.Table
}

// Header sets the column names.
func (t *Table) Header(columns ...any) {
	t.table.Header(columns...)
}

// Row appends one row. Cells are formatted with fmt.Sprint.
func (t *Table) Row(cells ...any) {
	row := make([]string, len(cells))
	for i, cell := range cells {
		row[i] = fmt.Sprint(cell)
	}

	_ = t.table.Append(row)
}

// render writes data as JSON or YAML, or as the table built by fill.
func render(cmd *cobra.Command, data any, fill func(table *Table)) error {
	out := cmd.OutOrStdout()

	switch viper.GetString("output") {
	case constants.OutputJSON:
		return renderJSON(out, data)
	case constants.OutputYAML:
		encoder := yaml.NewEncoder(out)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(data)
	default:
		table := tablewriter.NewWriter(out)
		fill(&Table{table: table})

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

func renderJSON(out io.Writer, data any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	return encoder.Encode(data)
}

// renderList renders a list; table output reports empty lists and unfetched
// pages.
func renderList[T any](cmd *cobra.Command, items []T, pagination *ptero.Pagination, noun string, fill func(table *Table)) error {
	if isTableOutput() && len(items) == 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No %s found\n", noun)

		return nil
	}

	err := render(cmd, items, fill)
	if err != nil {
		return err
	}

	if isTableOutput() && pagination != nil && pagination.HasNext() {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nShowing page %d of %d. Use --all to fetch all pages.\n",
			pagination.CurrentPage, pagination.TotalPages)
	}

	return nil
}

// printf writes a status line in table mode only, keeping JSON and YAML
// output machine readable.
func printf(cmd *cobra.Command, format string, args ...any) {
	if !isTableOutput() {
		return
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func formatTime(value string) string {
	if value == "" {
		return ""
	}

	parsed, err := ptero.ParseTimestamp(value)
	if err != nil {
		return value
	}

	return parsed.Format("2006-01-02 15:04")
}

func formatOptional(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}

func formatMiB(value int64) string {
	if value == 0 {
		return "unlimited"
	}

	return strconv.FormatInt(value, 10) + " MiB"
}

func formatBytes(value int64) string {
	const unit = 1024

	if value < unit {
		return strconv.FormatInt(value, 10) + " B"
	}

	div, exp := int64(unit), 0
	for n := value / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(value)/float64(div), "KMGTPE"[exp])
}

func formatBool(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}

func truncate(value string) string {
	runes := []rune(value)
	if len(runes) <= constants.MaxDescriptionWidth {
		return value
	}

	return string(runes[:constants.MaxDescriptionWidth-3]) + "..."
}

func isTableOutput() bool {
	output := viper.GetString("output")

	return output == "" || output == constants.OutputTable
}
