package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"leadswarm/internal/store"
	"leadswarm/internal/vault"
)

var exportVault bool

var exportCmd = &cobra.Command{
	Use:   "export <file.csv>",
	Short: "Export all leads to a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		if err := store.ExportCSV(cmd.Context(), rt.db.Pool, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", args[0])

		if exportVault {
			v, err := vault.New(cmd.Context(), rt.cfg)
			if err != nil {
				return fmt.Errorf("vault: %w", err)
			}
			if v == nil {
				return fmt.Errorf("vault is not enabled in config")
			}
			if err := v.SyncUp(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("uploaded snapshot to vault")
		}
		return nil
	},
}

var importVault bool

var importCmd = &cobra.Command{
	Use:   "import [file.csv]",
	Short: "Import leads from a CSV file, deduplicating by domain",
	Long: `Import merges a CSV export into the database. Rows whose domain is
already known are skipped. The legacy two-column queue format
(URL, Status) is accepted alongside full exports. With --vault the
snapshot is pulled from the configured vault bucket instead of a file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		switch {
		case importVault && path != "":
			return fmt.Errorf("pass either a file or --vault, not both")
		case importVault:
			v, err := vault.New(cmd.Context(), rt.cfg)
			if err != nil {
				return fmt.Errorf("vault: %w", err)
			}
			if v == nil {
				return fmt.Errorf("vault is not enabled in config")
			}
			tmp := filepath.Join(flagDataDir, "leads-restore.csv")
			found, err := v.SyncDown(cmd.Context(), tmp)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("vault bucket has no snapshot yet")
			}
			defer os.Remove(tmp)
			path = tmp
		case path == "":
			return fmt.Errorf("a file argument or --vault is required")
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		added, skipped, err := store.ImportCSV(cmd.Context(), rt.db.Pool, f)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d leads, skipped %d\n", added, skipped)
		return nil
	},
}

func init() {
	exportCmd.Flags().BoolVar(&exportVault, "vault", false, "also upload the snapshot to the configured vault bucket")
	importCmd.Flags().BoolVar(&importVault, "vault", false, "pull the latest snapshot from the vault bucket")
}
