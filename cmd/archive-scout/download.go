package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/archive-scout/internal/download"
	"github.com/pdiddy/archive-scout/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download [obsid...]",
	Short: "Download archive data products for observation groups",
	Long: `Download lists the data products of each observation group and fetches
them into a per-obsid directory under the products directory. Files already
on disk are skipped; a manifest.yaml records what each directory holds.

Obsids typically come from a dupcheck report's conflicting observation IDs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	productsDir, _ := cmd.Flags().GetString("products-dir")
	if productsDir == "" {
		productsDir = viper.GetString("download.products_dir")
	}
	minRecommended, _ := cmd.Flags().GetBool("min-recommended")

	cfg := types.DownloadConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: viper.GetString("http.user_agent"),
		},
		ProductsDir:    productsDir,
		DownloadDelay:  viper.GetDuration("download.download_delay"),
		MinRecommended: minRecommended,
	}

	client := newMASTClient(timeout)
	result := download.Batch(context.Background(), client.HTTP, client, args, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed to download", result.Failed)
	}
	return nil
}

func init() {
	downloadCmd.Flags().String("products-dir", "", "base directory for downloaded products")
	downloadCmd.Flags().Bool("min-recommended", false, "download only the minimum recommended product set")
	downloadCmd.Flags().Duration("timeout", 0, "HTTP timeout per file (0 = configured default)")

	rootCmd.AddCommand(downloadCmd)
}
