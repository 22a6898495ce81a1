package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/claude/healthlens/internal/upload"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	uploadServer   string
	uploadDryRun   bool
	uploadStateDir string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <dir>",
	Short: "Upload new or changed CSV exports to a HealthLens server",
	Long: `Walk a directory for *.csv exports and send each one to the server.

Files already accepted with the same size and hash are skipped. Files the
server rejects are reported and not retried.

Examples:
  healthlens-cli upload --server https://healthlens.tail1234.ts.net ~/exports
  healthlens-cli upload --dry-run ~/exports`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadServer, "server", "s", "", "HealthLens server URL (e.g. https://healthlens.tail1234.ts.net)")
	uploadCmd.Flags().BoolVar(&uploadDryRun, "dry-run", false, "list files that would be sent without sending them")
	uploadCmd.Flags().StringVar(&uploadStateDir, "state-dir", "", "state directory (default ~/.healthlens-upload)")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	log := newLogger()
	dir := args[0]

	if uploadServer == "" && !uploadDryRun {
		return fmt.Errorf("--server is required (or use --dry-run)")
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("export directory not found: %s", dir)
	}

	stateDir := uploadStateDir
	if stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		stateDir = filepath.Join(homeDir, ".healthlens-upload")
	}
	state, err := upload.OpenStateDB(stateDir)
	if err != nil {
		return err
	}
	defer state.Close()

	var client *upload.Client
	if !uploadDryRun {
		client = upload.NewClient(uploadServer)
		version, err := client.Health(cmd.Context())
		if err != nil {
			return err
		}
		log.Info("server reachable", "url", uploadServer, "version", version)
	} else {
		log.Info("DRY RUN mode, files will be listed but not sent")
	}

	stats, err := upload.New(client, state, dir, uploadDryRun, log).Run(cmd.Context())
	printStats(cmd.OutOrStdout(), stats)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	log.Info("upload complete")
	return nil
}

func printStats(w io.Writer, stats *upload.Stats) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintln(w)
	fmt.Fprintln(w, cyan("=== Upload Summary ==="))
	fmt.Fprintf(w, "  Files total:      %d\n", stats.FilesTotal)
	fmt.Fprintf(w, "  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Fprintf(w, "  Files skipped:    %d (already uploaded)\n", stats.FilesSkipped)
	fmt.Fprintf(w, "  Files replaced:   %d (changed since last upload)\n", stats.FilesReplaced)
	fmt.Fprintf(w, "  Files rejected:   %s\n", red(stats.FilesRejected))
	fmt.Fprintf(w, "  Files errored:    %d\n", stats.FilesErrored)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Records analyzed: %d\n", stats.RecordsAnalyzed)
	if stats.LastDataID != "" {
		fmt.Fprintf(w, "  Last run:         %s (score %.0f)\n", stats.LastDataID, stats.LastScore)
	}
	fmt.Fprintln(w)
}
