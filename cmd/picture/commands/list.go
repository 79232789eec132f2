package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leeforge/picture/config"
)

// list: print every configured picture with its sizes.
func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the configured pictures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(appCtx.settings.Pictures))
			for name := range appCtx.settings.Pictures {
				names = append(names, name)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				spec := appCtx.settings.Pictures[name]
				fmt.Fprintf(out, "%s\n  default  %s\n", name, describe(spec.Size))
				for _, item := range spec.Items {
					fmt.Fprintf(out, "  source   %s\n", describe(item))
				}
			}
			return nil
		},
	}
}

func describe(s config.SizeSpec) string {
	parts := []string{fmt.Sprintf("%dx%d", s.Width, s.Height)}
	if s.Mode != "" {
		parts = append(parts, "mode="+s.Mode)
	}
	if s.Zoom > 0 {
		parts = append(parts, fmt.Sprintf("zoom=%d", s.Zoom))
	}
	if s.Densities != "" {
		parts = append(parts, "densities="+strings.ReplaceAll(s.Densities, " ", ""))
	}
	if s.Sizes != "" {
		parts = append(parts, fmt.Sprintf("sizes=%q", s.Sizes))
	}
	if s.Media != "" {
		parts = append(parts, fmt.Sprintf("media=%q", s.Media))
	}
	return strings.Join(parts, " ")
}
