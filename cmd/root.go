package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/echantillon-cli/internal/config"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "echantillon",
	Short: "Echantillon CLI: draw survey samples from CSV and Excel datasets",
	Long: `Echantillon loads a tabular dataset (CSV, TSV or XLSX) and draws a sample with
one of five classic survey designs: simple random, systematic, stratified,
one-stage cluster or two-stage cluster. Samples are exported as XLSX, CSV or Parquet.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.echantillon/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	if debug {
		pterm.EnableDebugMessages()
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	pterm.Debug.Printfln("config loaded: method=%s format=%s seed=%d", cfg.DefaultMethod, cfg.ExportFormat, cfg.Seed)
}

// globalConfig returns the loaded configuration, loading it on demand when the
// command runs outside Execute (tests).
func globalConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	if cfg == nil {
		cfg = &cfgpkg.Global{DefaultMethod: "random", ExportFormat: "xlsx", OutputDir: ".", PreviewRows: 10, MaxRows: 1000000, ServerHost: "localhost", ServerPort: 8090, MaxUploadMB: 32}
	}
	return cfg
}
