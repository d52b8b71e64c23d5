package main

import (
	"bytes"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/csg33k/aca1095c-generator/internal/adapters/sheet"
	"github.com/csg33k/aca1095c-generator/internal/config"
	"github.com/csg33k/aca1095c-generator/internal/domain"
	"github.com/csg33k/aca1095c-generator/internal/interim"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cfg holds the environment defaults; flags override them per command.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "aca1095c",
	Short:         "ACA Form 1095-C toolkit",
	Long:          "Builds the interim eligibility and enrollment table from an HR workbook and fills Forms 1095-C.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		return err
	},
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "aca1095c %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.Main.Path, bi.GoVersion)
			}
		},
	}
}

func main() {
	rootCmd.AddCommand(versionCmd(), interimCmd(), reportCmd(), fillCmd(), bulkCmd(), fieldsCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

// readInputs opens the HR workbook with the configured sheet names.
func readInputs(path string) (interim.Inputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return interim.Inputs{}, err
	}
	return sheet.ReadWorkbook(bytes.NewReader(data), cfg.Sheets)
}

// readSummary returns nil when path is empty, so Part II is skipped.
func readSummary(path string) ([]domain.SummaryRow, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sheet.ReadSummary(f, path)
}
