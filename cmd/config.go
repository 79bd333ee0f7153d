package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/echantillon-cli/internal/config"
	"github.com/KaramelBytes/echantillon-cli/internal/export"
	"github.com/KaramelBytes/echantillon-cli/internal/sampling"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Echantillon configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := globalConfig()
		fmt.Printf("default_method: %s\n", c.DefaultMethod)
		fmt.Printf("default_sample_size: %d\n", c.DefaultSampleSize)
		fmt.Printf("output_dir: %s\n", c.OutputDir)
		fmt.Printf("export_format: %s\n", c.ExportFormat)
		if c.Seed != 0 {
			fmt.Printf("seed: %d\n", c.Seed)
		} else {
			fmt.Println("seed: 0 (random)")
		}
		fmt.Printf("write_manifest: %t\n", c.WriteManifest)
		fmt.Printf("preview_rows: %d\n", c.PreviewRows)
		if c.CSVDelimiter != "" {
			fmt.Printf("csv_delimiter: %q\n", c.CSVDelimiter)
		}
		fmt.Printf("max_rows: %d\n", c.MaxRows)
		fmt.Printf("server_host: %s\n", c.ServerHost)
		fmt.Printf("server_port: %d\n", c.ServerPort)
		fmt.Printf("max_upload_mb: %d\n", c.MaxUploadMB)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := globalConfig()
		if err := applySetting(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func applySetting(c *cfgpkg.Global, key, val string) error {
	nonNegative := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return 0, fmt.Errorf("invalid non-negative int for %s: %v", key, val)
		}
		return i, nil
	}
	switch key {
	case "default_method":
		m, err := sampling.ParseMethod(val)
		if err != nil {
			return err
		}
		c.DefaultMethod = string(m)
	case "default_sample_size":
		i, err := nonNegative()
		if err != nil {
			return err
		}
		c.DefaultSampleSize = i
	case "output_dir":
		c.OutputDir = val
	case "export_format":
		f, err := export.ParseFormat(val)
		if err != nil {
			return err
		}
		c.ExportFormat = string(f)
	case "seed":
		u, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned int for seed: %w", err)
		}
		c.Seed = u
	case "write_manifest":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for write_manifest: %w", err)
		}
		c.WriteManifest = b
	case "preview_rows":
		i, err := nonNegative()
		if err != nil {
			return err
		}
		c.PreviewRows = i
	case "csv_delimiter":
		if _, err := parseDelimiter(val); err != nil {
			return err
		}
		c.CSVDelimiter = val
	case "max_rows":
		i, err := nonNegative()
		if err != nil {
			return err
		}
		c.MaxRows = i
	case "server_host":
		c.ServerHost = val
	case "server_port":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 || i > 65535 {
			return fmt.Errorf("invalid port: %v", val)
		}
		c.ServerPort = i
	case "max_upload_mb":
		i, err := nonNegative()
		if err != nil {
			return err
		}
		c.MaxUploadMB = i
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
