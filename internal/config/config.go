package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DefaultMethod     string `mapstructure:"default_method" yaml:"default_method"`
	DefaultSampleSize int    `mapstructure:"default_sample_size" yaml:"default_sample_size"`
	OutputDir         string `mapstructure:"output_dir" yaml:"output_dir"`
	ExportFormat      string `mapstructure:"export_format" yaml:"export_format"`
	// Seed fixes the random source; 0 draws a fresh seed per run.
	Seed          uint64 `mapstructure:"seed" yaml:"seed"`
	WriteManifest bool   `mapstructure:"write_manifest" yaml:"write_manifest"`
	PreviewRows   int    `mapstructure:"preview_rows" yaml:"preview_rows"`

	// Loading
	CSVDelimiter string `mapstructure:"csv_delimiter" yaml:"csv_delimiter"`
	MaxRows      int    `mapstructure:"max_rows" yaml:"max_rows"`

	// HTTP service
	ServerHost  string `mapstructure:"server_host" yaml:"server_host"`
	ServerPort  int    `mapstructure:"server_port" yaml:"server_port"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".echantillon"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.echantillon/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("ECHANTILLON")
	v.AutomaticEnv()

	v.SetDefault("default_method", "random")
	v.SetDefault("default_sample_size", 0)
	v.SetDefault("output_dir", ".")
	v.SetDefault("export_format", "xlsx")
	v.SetDefault("seed", 0)
	v.SetDefault("write_manifest", false)
	v.SetDefault("preview_rows", 10)
	v.SetDefault("csv_delimiter", "")
	v.SetDefault("max_rows", 1000000)
	v.SetDefault("server_host", "localhost")
	v.SetDefault("server_port", 8090)
	v.SetDefault("max_upload_mb", 32)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
