package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/geonovis/geonovis/internal/adapters/bbolt"
	"github.com/geonovis/geonovis/internal/config"
	"github.com/spf13/cobra"
)

var (
	degradedLimit int
	degradedJSON  bool
	degradedClear bool
	degradedForce bool
)

var degradedCmd = &cobra.Command{
	Use:   "degraded",
	Short: "Show recent degraded geocode loads",
	Long:  "Lists regions that were merged as empty because their file was missing, unreadable or malformed. Newest first.",
	RunE:  runDegraded,
}

func init() {
	degradedCmd.Flags().IntVarP(&degradedLimit, "limit", "n", 20, "Number of entries to show (0 = all)")
	degradedCmd.Flags().BoolVar(&degradedJSON, "json", false, "Output as JSON")
	degradedCmd.Flags().BoolVar(&degradedClear, "clear", false, "Delete all entries")
	degradedCmd.Flags().BoolVar(&degradedForce, "force", false, "Skip confirmation prompt for --clear")
}

func runDegraded(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.AuditEnabled() {
		return fmt.Errorf("audit log disabled (audit.path: %s)", config.AuditOff)
	}
	if _, err := os.Stat(cfg.Audit.Path); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "⚡ no degraded loads recorded")
		return nil
	}

	store, err := bbolt.NewStore(cfg.Audit.Path, cfg.AuditKeep())
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("%s", diagnoseDBLock(cfg.Audit.Path, cfg.Addr))
		}
		return err
	}
	defer store.Close()

	if degradedClear {
		return clearDegraded(cmd, store)
	}

	entries, err := store.Recent(degradedLimit)
	if err != nil {
		return err
	}

	if degradedJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatDegraded(entries))
	return nil
}

func clearDegraded(cmd *cobra.Command, store *bbolt.Store) error {
	n, err := store.Count()
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "⚡ nothing to clear")
		return nil
	}

	if !degradedForce {
		fmt.Fprintf(cmd.OutOrStdout(), "⚠ This will delete %d audit entries. Continue? [y/N] ", n)
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
			return nil
		}
	}

	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ cleared %d entries\n", n)
	return nil
}
