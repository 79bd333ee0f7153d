package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/echantillon-cli/internal/export"
	"github.com/KaramelBytes/echantillon-cli/internal/server"
	"github.com/spf13/cobra"
)

var (
	srvHost        string
	srvPort        int
	srvMaxUploadMB int
	srvQuiet       bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP sampling service",
	Long: `Start an HTTP service exposing:

  GET  /api/health    liveness probe
  GET  /api/methods   supported sampling designs
  POST /api/inspect   multipart "file": columns and parameter bounds
  POST /api/sample    multipart "file", "method", "size", "column", "clusters",
                      "seed", "format": returns the sample as a download`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := serverConfig(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.New(sc).Run(ctx)
	},
}

// serverConfig builds the service configuration from config and flags.
func serverConfig(cmd *cobra.Command) (server.Config, error) {
	c := globalConfig()
	sc := server.DefaultConfig()
	sc.Host, sc.Port = c.ServerHost, c.ServerPort
	if cmd.Flags().Changed("host") {
		sc.Host = srvHost
	}
	if cmd.Flags().Changed("port") {
		sc.Port = srvPort
	}
	mb := c.MaxUploadMB
	if cmd.Flags().Changed("max-upload-mb") {
		mb = srvMaxUploadMB
	}
	if mb > 0 {
		sc.MaxUploadBytes = int64(mb) << 20
	}
	opt, err := loaderOptions(c, "", "", 0)
	if err != nil {
		return sc, err
	}
	sc.Loader = opt
	if sc.DefaultFormat, err = export.ParseFormat(c.ExportFormat); err != nil {
		return sc, err
	}
	sc.Seed = c.Seed
	sc.EnableLogging = !srvQuiet
	return sc, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvHost, "host", "localhost", "interface to listen on")
	serveCmd.Flags().IntVar(&srvPort, "port", 8090, "port to listen on")
	serveCmd.Flags().IntVar(&srvMaxUploadMB, "max-upload-mb", 32, "maximum upload size in MiB")
	serveCmd.Flags().BoolVar(&srvQuiet, "quiet", false, "disable request logging")
}
