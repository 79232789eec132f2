package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leeforge/picture/config"
	"github.com/leeforge/picture/env_mode"
)

var (
	configDir string
	envMode   string
	appCtx    *app
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// run executes the command line args and closes the app afterwards, also
// when the command failed.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if appCtx != nil {
		if closeErr := appCtx.Close(); err == nil {
			err = closeErr
		}
		appCtx = nil
	}
	return err
}

func newRootCmd() *cobra.Command {
	configDir = config.DefaultOptions().BasePath
	envMode = ""
	appCtx = nil

	root := &cobra.Command{
		Use:          "picture",
		Short:        "Generate responsive <picture> markup from configured sizes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envMode != "" {
				env_mode.SetMode(env_mode.ParseEnv(envMode))
			}

			opts := config.DefaultOptions()
			opts.BasePath = configDir
			settings, err := config.Load(opts)
			if err != nil {
				return err
			}

			appCtx, err = newApp(cmd.Context(), settings)
			return err
		},
	}

	root.PersistentFlags().StringVar(&configDir, "config", configDir, "directory holding config.yaml and its overrides")
	root.PersistentFlags().StringVar(&envMode, "env", "", "environment mode selecting override files (development, production, test)")

	root.AddCommand(generateCmd(), listCmd(), serveCmd())
	return root
}
