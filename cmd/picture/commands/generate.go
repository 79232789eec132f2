package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leeforge/picture/json"
	"github.com/leeforge/picture/media/processor"
	"github.com/leeforge/picture/media/queue"
	"github.com/leeforge/picture/picture"
)

// generated is one line of the generate output.
type generated struct {
	Source  string               `json:"source"`
	Img     *picture.Attributes  `json:"img,omitempty"`
	Sources []picture.Attributes `json:"sources,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// generate <picture> <source>...: print the attributes of every source.
func generateCmd() *cobra.Command {
	var (
		workers     int
		quality     int
		bypassCache bool
	)

	cmd := &cobra.Command{
		Use:   "generate <picture> <source>...",
		Short: "Generate <img> and <source> attributes for image files",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.ToLower(args[0])
			cfg, err := appCtx.settings.Picture(name)
			if err != nil {
				return err
			}
			if quality < 0 || quality > 100 {
				return fmt.Errorf("quality must be between 0 and 100")
			}
			opts := picture.ResizeOptions{Quality: quality, BypassCache: bypassCache}

			out := make([]generated, len(args)-1)
			var jobs []queue.Job
			var jobIndex []int
			for i, src := range args[1:] {
				out[i].Source = src
				img, err := processor.OpenImage(src, "")
				if err != nil {
					out[i].Error = err.Error()
					continue
				}
				jobs = append(jobs, queue.Job{Name: name, Source: img, Config: cfg, Options: opts})
				jobIndex = append(jobIndex, i)
			}

			results := queue.Run(cmd.Context(), workers, appCtx.generator, jobs,
				queue.WithLogger(appCtx.logger),
				queue.WithMetrics(appCtx.collector),
			)
			for j, res := range results {
				i := jobIndex[j]
				if res.Err != nil {
					out[i].Error = res.Err.Error()
					continue
				}
				projection := res.Picture.Project(appCtx.rootDir)
				out[i].Img = &projection.Img
				out[i].Sources = projection.Sources
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}

			failed := 0
			for _, g := range out {
				if g.Error != "" {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d pictures failed", failed, len(out))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "number of images generated in parallel")
	cmd.Flags().IntVarP(&quality, "quality", "q", 0, "encoder quality, 0 for the configured one")
	cmd.Flags().BoolVar(&bypassCache, "bypass-cache", false, "render variants again even when cached")
	return cmd
}
