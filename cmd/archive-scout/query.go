package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/archive-scout/internal/mast"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a raw filtered query against a MAST service",
	Long: `Query sends a filtered request to any Mashup service and prints the rows
as JSON. Useful for broad archive browsing outside the duplication check,
e.g. listing all NIRSpec exposures of a program:

  archive-scout query --service Mast.Jwst.Filtered.Nirspec \
      --columns "filename,program,detector" \
      --filter program=2736 --filter detector=NRS1,NRS2

Each --filter takes name=value[,value...]; repeated values match any.`,
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	service, _ := cmd.Flags().GetString("service")
	columns, _ := cmd.Flags().GetString("columns")
	filterSpecs, _ := cmd.Flags().GetStringArray("filter")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	filters, err := parseFilters(filterSpecs)
	if err != nil {
		return err
	}

	client := newMASTClient(timeout)
	rows, err := client.ServiceRequest(context.Background(), service, columns, filters, pageSize)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%d rows\n", len(rows))
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// parseFilters turns name=v1,v2 specs into discrete Mashup filters.
func parseFilters(specs []string) ([]mast.Filter, error) {
	var filters []mast.Filter
	for _, spec := range specs {
		name, values, ok := strings.Cut(spec, "=")
		if !ok || name == "" || values == "" {
			return nil, fmt.Errorf("invalid filter %q: expected name=value[,value...]", spec)
		}
		filters = append(filters, mast.DiscreteFilter(name, strings.Split(values, ",")...))
	}
	return filters, nil
}

func init() {
	queryCmd.Flags().String("service", "", "Mashup service name (e.g. Mast.Jwst.Filtered.Nirspec)")
	queryCmd.Flags().String("columns", "*", "comma-separated column list")
	queryCmd.Flags().StringArray("filter", nil, "discrete filter name=value[,value...] (repeatable)")
	queryCmd.Flags().Int("page-size", 5000, "maximum rows to request")
	queryCmd.Flags().Duration("timeout", 0, "HTTP timeout (0 = configured default)")
	queryCmd.MarkFlagRequired("service")

	rootCmd.AddCommand(queryCmd)
}
