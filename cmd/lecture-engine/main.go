// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the lecture-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lecture-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// apiKey resolves the LLM credential: the LECTURE_ENGINE_API_KEY
// environment variable (or config file) wins, then .secrets/llm-api-key.
func apiKey() string {
	if v := viper.GetString("api_key"); v != "" {
		return v
	}
	return loadedSecrets["llm-api-key"]
}

// rootCmd is the base command for the lecture-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "lecture-engine",
	Short: "Turn lecture PDFs and slide decks into study notes",
	Long: `lecture-engine converts academic PDF and PPTX documents into three study
artifacts: verbatim OCR-extracted text, structured Markdown summary notes,
and exam-style Q&A pairs.

Pages are rasterized locally, batched, and sent to an OpenAI-compatible
vision model for extraction; the aggregated text then feeds two further
model calls for the notes and the Q&A. Use "process" for a document and
"history" to review past runs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./lecture-engine.yaml or ~/.config/lecture-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lecture-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lecture-engine"))
		}
	}

	viper.SetEnvPrefix("LECTURE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
