// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lecture-engine/internal/history"
	"github.com/pdiddy/lecture-engine/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Review past processing runs",
	Long: `History reads the local run database under <output-dir>/index/ and lists
which documents were processed, with which pages, and where the artifacts
were written.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run record",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().String("output-dir", defaultOutputDir, "directory holding the run database")
	historyListCmd.Flags().Bool("json", false, "output JSON instead of a table")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	outputDir, _ := cmd.Flags().GetString("output-dir")
	return history.NewStore(types.HistoryConfig{OutputDir: outputDir})
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-40s  %-10s  %-6s  %s\n",
		"ID", "Source", "Selector", "Pages", "Created")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, r := range records {
		source := r.Source
		if len(source) > 40 {
			source = "..." + source[len(source)-37:]
		}
		selector := r.Selector
		if selector == "" {
			selector = "all"
		}
		if len(selector) > 10 {
			selector = selector[:7] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-40s  %-10s  %-6d  %s\n",
			r.ID, source, selector, len(r.Pages), r.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(records))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("run id must be an integer: %q", args[0])
	}

	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(context.Background(), id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
