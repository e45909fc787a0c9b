// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the archive-scout CLI.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/archive-scout/internal/mast"
	"github.com/pdiddy/archive-scout/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// newMASTClient builds the shared archive client from config and loaded
// secrets. Subcommands pass a zero timeout to use the configured default.
func newMASTClient(timeout time.Duration) *mast.Client {
	if timeout <= 0 {
		timeout = viper.GetDuration("http.timeout")
	}
	return &mast.Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: viper.GetString("http.user_agent"),
		Token:     secretDefault("mast-api-token", ""),
		Warnings:  os.Stderr,
	}
}

// rootCmd is the base command for the archive-scout CLI.
var rootCmd = &cobra.Command{
	Use:   "archive-scout",
	Short: "Check proposed spectrograph observations against the MAST archive",
	Long: `archive-scout helps proposal planners avoid duplicating existing archive
holdings. Given a catalog of proposed observations (position, grating/filter,
exposure time, aperture mode) it queries MAST for plausibly-duplicating
observations and reports the conflicting proposal and observation IDs.

Secondary commands expose raw filtered archive queries for browsing, data
product download, and a local history of past duplication checks.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./archive-scout.yaml or ~/.config/archive-scout/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("archive-scout")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "archive-scout"))
		}
	}

	viper.SetEnvPrefix("ARCHIVE_SCOUT")
	viper.AutomaticEnv()

	viper.SetDefault("http.timeout", 3*time.Minute)
	viper.SetDefault("http.user_agent", "archive-scout/"+version)
	viper.SetDefault("dupcheck.collection", "JWST")
	viper.SetDefault("download.products_dir", "products")
	viper.SetDefault("download.download_delay", time.Second)
	viper.SetDefault("history.history_dir", ".archive-scout")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
