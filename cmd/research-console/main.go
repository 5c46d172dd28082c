// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-console CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-console/internal/client"
	"github.com/pdiddy/research-console/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the research-console CLI.
var rootCmd = &cobra.Command{
	Use:   "research-console",
	Short: "Ask research questions answered from arXiv papers",
	Long: `research-console collects a search query, a research question, a Groq API
key, a paper count and a model, sends them to the research service and shows
the answer.

Use ask for a one-shot question, tui for the interactive form, and serve to
run the research service locally.`,
	SilenceUsage: true,
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-console.yaml or ~/.config/research-console/research-console.yaml)")
	rootCmd.PersistentFlags().String("endpoint", client.DefaultEndpoint, "research service URL")
	viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
}

func initConfig() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-console")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-console"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_CONSOLE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// apiKey resolves the Groq key: flag, then config or environment, then
// the .secrets/ file.
func apiKey(flag string) string {
	if flag != "" {
		return flag
	}
	return secrets.Default(loadedSecrets, secrets.GroqAPIKeyFile, viper.GetString("groq_api_key"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
