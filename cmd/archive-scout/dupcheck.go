package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/archive-scout/internal/dupcheck"
	"github.com/pdiddy/archive-scout/internal/history"
	"github.com/pdiddy/archive-scout/pkg/types"
)

var dupcheckCmd = &cobra.Command{
	Use:   "dupcheck",
	Short: "Check proposed observations for archive duplicates",
	Long: `Dupcheck queries MAST for existing observations that plausibly duplicate
each proposed target: position within the aperture's search box, same
grating and filter, exposure time within a factor of 4. Non-MSA targets
also get a companion MSA-mode check, since multi-object programs can cover
fixed-slit and IFU fields.

Targets come from a YAML catalog file (--catalog) or from the single-target
flags. An empty result only means no overlap within the configured bounds,
not that the field is untouched.`,
	RunE: runDupCheck,
}

func runDupCheck(cmd *cobra.Command, args []string) error {
	catalog, err := dupcheckTargets(cmd)
	if err != nil {
		return err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	collection, _ := cmd.Flags().GetString("collection")
	if collection == "" {
		collection = viper.GetString("dupcheck.collection")
	}

	matcher := &dupcheck.Matcher{
		Archive:    newMASTClient(timeout),
		Collection: collection,
	}

	report, err := matcher.BuildDuplicateReport(context.Background(), catalog)
	if err != nil {
		return err
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := dupcheck.WriteReportFile(output, catalog, report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", output)
	}

	if record, _ := cmd.Flags().GetBool("record"); record {
		if err := recordHistory(catalog, report); err != nil {
			fmt.Fprintf(os.Stderr, "warning: history recording failed: %v\n", err)
		}
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return dupcheck.FormatJSON(report, os.Stdout)
	}
	dupcheck.FormatTable(report, os.Stdout)
	return nil
}

// dupcheckTargets builds the candidate catalog from --catalog or the
// single-target flags. The two forms are mutually exclusive.
func dupcheckTargets(cmd *cobra.Command) ([]types.CandidateTarget, error) {
	catalogPath, _ := cmd.Flags().GetString("catalog")
	id, _ := cmd.Flags().GetString("id")

	if catalogPath != "" {
		if id != "" {
			return nil, fmt.Errorf("--catalog and --id are mutually exclusive")
		}
		return dupcheck.ReadCatalog(catalogPath)
	}

	aperture, _ := cmd.Flags().GetString("aperture")
	if id == "" || aperture == "" {
		return nil, fmt.Errorf("provide --catalog, or --id and --aperture (one of: %s)",
			strings.Join(dupcheck.ApertureKeys(), ", "))
	}

	ra, _ := cmd.Flags().GetFloat64("ra")
	dec, _ := cmd.Flags().GetFloat64("dec")
	grating, _ := cmd.Flags().GetString("grating")
	filterName, _ := cmd.Flags().GetString("filter")
	exposure, _ := cmd.Flags().GetFloat64("exposure")

	return []types.CandidateTarget{{
		ID:              id,
		RA:              ra,
		Dec:             dec,
		Grating:         grating,
		Filter:          filterName,
		ExposureSeconds: exposure,
		Aperture:        aperture,
	}}, nil
}

func recordHistory(catalog []types.CandidateTarget, report *dupcheck.Report) error {
	store, err := history.NewStore(historyConfig())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordReport(context.Background(), catalog, report)
}

func init() {
	dupcheckCmd.Flags().String("catalog", "", "YAML catalog of candidate targets")
	dupcheckCmd.Flags().String("id", "", "single-target mode: target identifier")
	dupcheckCmd.Flags().Float64("ra", 0, "single-target mode: right ascension (degrees)")
	dupcheckCmd.Flags().Float64("dec", 0, "single-target mode: declination (degrees)")
	dupcheckCmd.Flags().String("grating", "", "single-target mode: grating (e.g. G395H)")
	dupcheckCmd.Flags().String("filter", "", "single-target mode: filter (e.g. F290LP)")
	dupcheckCmd.Flags().Float64("exposure", 0, "single-target mode: exposure time (seconds)")
	dupcheckCmd.Flags().String("aperture", "", "single-target mode: aperture key (e.g. MSA, IFU, S400A1)")
	dupcheckCmd.Flags().String("collection", "", "archive collection to search (default JWST)")
	dupcheckCmd.Flags().Duration("timeout", 0, "HTTP timeout per archive query (0 = configured default)")
	dupcheckCmd.Flags().String("output", "", "write the full report to a YAML file")
	dupcheckCmd.Flags().Bool("record", false, "record this check in the local history store")
	dupcheckCmd.Flags().Bool("json", false, "output the report as JSON")

	rootCmd.AddCommand(dupcheckCmd)
}
