package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/archive-scout/internal/history"
	"github.com/pdiddy/archive-scout/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Review past duplication checks",
	Long: `History manages the local store of recorded duplication checks
(dupcheck --record). Runs are kept in a SQLite database under the history
directory.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded duplication checks, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := history.NewStore(historyConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No recorded checks.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-16s  %-8s  %-8s  %s\n",
		"When", "Target", "Aperture", "Matches", "Proposals")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 72))
	for _, r := range runs {
		proposals := "-"
		if len(r.ProposalIDs) > 0 {
			parts := make([]string, 0, len(r.ProposalIDs))
			for _, id := range r.ProposalIDs {
				parts = append(parts, fmt.Sprintf("%d", id))
			}
			proposals = strings.Join(parts, ", ")
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-16s  %-8s  %-8d  %s\n",
			r.Timestamp.Format("2006-01-02 15:04"), r.TargetID, r.Aperture,
			r.RowsMatched, proposals)
	}
	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(runs))
	return nil
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded duplication checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.NewStore(historyConfig())
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Clear(context.Background()); err != nil {
			return err
		}
		fmt.Println("History cleared.")
		return nil
	},
}

func historyConfig() types.HistoryConfig {
	return types.HistoryConfig{
		HistoryDir: viper.GetString("history.history_dir"),
		MaxResults: viper.GetInt("history.max_results"),
	}
}

func init() {
	historyListCmd.Flags().Int("limit", 0, "maximum runs to list (0 = default)")
	historyListCmd.Flags().Bool("json", false, "output runs as JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
