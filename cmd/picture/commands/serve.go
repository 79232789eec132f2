package commands

import (
	"github.com/spf13/cobra"

	"github.com/leeforge/picture/http/server"
)

// serve: answer GET /pictures/{name}?src=... until interrupted.
func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated attributes over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := server.New(server.Options{
				RootDir:   appCtx.rootDir,
				Pictures:  appCtx.settings,
				Generator: appCtx.generator,
				Metrics:   appCtx.collector,
				Logger:    appCtx.logger,
			})
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
