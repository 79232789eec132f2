package picture

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/leeforge/picture/errors"
)

// DefaultSizes is the sizes attribute used with width descriptors when none
// is configured.
const DefaultSizes = "100vw"

// Generator builds pictures from a source image and a PictureConfiguration.
// It is safe for concurrent use.
type Generator struct {
	resizer     Resizer
	calculator  *ResizeCalculator
	concurrency int
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithCalculator replaces the calculator used to derive requested widths.
func WithCalculator(c *ResizeCalculator) GeneratorOption {
	return func(g *Generator) { g.calculator = c }
}

// WithConcurrency lets up to n resizes of one size item run in parallel.
func WithConcurrency(n int) GeneratorOption {
	return func(g *Generator) { g.concurrency = n }
}

func NewGenerator(resizer Resizer, opts ...GeneratorOption) *Generator {
	g := &Generator{
		resizer:     resizer,
		calculator:  NewResizeCalculator(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// candidate is one requested variant of a size item.
type candidate struct {
	factor         float64
	config         ResizeConfiguration
	requestedWidth int
}

// sizePlan is a validated size item with its candidates, base first.
type sizePlan struct {
	item       SizeItem
	candidates []candidate
	widthUnit  bool
}

// Generate resizes img for the default size and every alternate of cfg and
// returns the resulting picture. Configuration errors are reported before
// the first resize; a resizer error aborts the whole call and is returned
// unchanged.
func (g *Generator) Generate(ctx context.Context, img Image, cfg PictureConfiguration, opts ResizeOptions) (*Picture, error) {
	items := append([]SizeItem{cfg.Size()}, cfg.Alternates()...)

	plans := make([]sizePlan, 0, len(items))
	for _, item := range items {
		plan, err := g.plan(item, img.Dimensions())
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	// Every candidate is a different file.
	opts.TargetPath = ""

	sources := make([]Source, 0, len(plans))
	for _, plan := range plans {
		source, err := g.render(ctx, img, plan, opts)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	return NewPicture(sources[0], sources[1:]), nil
}

func (g *Generator) plan(item SizeItem, dims ImageDimensions) (sizePlan, error) {
	if err := item.ResizeConfig.Validate(); err != nil {
		return sizePlan{}, err
	}
	descriptors, err := ParseDescriptors(item.Densities)
	if err != nil {
		return sizePlan{}, err
	}

	plan := sizePlan{item: item, widthUnit: item.Sizes != ""}
	factors := []float64{1}

	if !item.ResizeConfig.IsEmpty() {
		base, err := g.calculator.Compute(item.ResizeConfig, dims.AsRelative())
		if err != nil {
			return sizePlan{}, err
		}
		width1x := float64(base.CropSize.Width)

		for _, d := range descriptors {
			factor := d.Value
			if d.Kind == KindWidth {
				plan.widthUnit = true
				factor = d.Value / width1x
			}
			if !containsFactor(factors, factor) {
				factors = append(factors, factor)
			}
		}
	}

	for _, factor := range factors {
		if !item.ResizeConfig.fitsScale(factor) {
			return sizePlan{}, apperrors.NewInvalidConfiguration("densities", item.Densities,
				fmt.Sprintf("scaled size exceeds %d pixels", maxDimension))
		}
		scaled := item.ResizeConfig.Scale(factor)
		requested, err := g.calculator.Compute(scaled, dims.AsRelative())
		if err != nil {
			return sizePlan{}, err
		}
		plan.candidates = append(plan.candidates, candidate{
			factor:         factor,
			config:         scaled,
			requestedWidth: requested.CropSize.Width,
		})
	}

	return plan, nil
}

func containsFactor(factors []float64, f float64) bool {
	for _, existing := range factors {
		if existing == f {
			return true
		}
	}
	return false
}

func (g *Generator) render(ctx context.Context, img Image, plan sizePlan, opts ResizeOptions) (Source, error) {
	rendered, err := g.resizeAll(ctx, img, plan.candidates, opts)
	if err != nil {
		return Source{}, err
	}

	unit := KindDensity
	if plan.widthUnit || anyCapped(plan.candidates, rendered) {
		unit = KindWidth
	}

	srcset := buildSrcset(plan.candidates, rendered, unit)

	source := Source{
		Srcset: srcset,
		Src:    rendered[0],
		Sizes:  plan.item.Sizes,
		Media:  plan.item.Media,
	}
	if source.Sizes == "" && unit == KindWidth {
		source.Sizes = DefaultSizes
	}
	return source, nil
}

// resizeAll returns the rendered images in candidate order.
func (g *Generator) resizeAll(ctx context.Context, img Image, candidates []candidate, opts ResizeOptions) ([]Image, error) {
	rendered := make([]Image, len(candidates))

	if g.concurrency <= 1 || len(candidates) == 1 {
		for i, c := range candidates {
			resized, err := g.resizer.Resize(ctx, img, c.config, opts)
			if err != nil {
				return nil, err
			}
			rendered[i] = resized
		}
		return rendered, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.concurrency)
	for i, c := range candidates {
		group.Go(func() error {
			resized, err := g.resizer.Resize(groupCtx, img, c.config, opts)
			if err != nil {
				return err
			}
			rendered[i] = resized
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return rendered, nil
}

// anyCapped reports whether a rendered image is narrower than requested,
// i.e. the source was too small for the candidate.
func anyCapped(candidates []candidate, rendered []Image) bool {
	for i, c := range candidates {
		if rendered[i].Dimensions().Width < c.requestedWidth {
			return true
		}
	}
	return false
}

type srcsetValue struct {
	image Image
	value float64
}

// buildSrcset collapses candidates rendering to the same URL into the first
// occurrence, which keeps the smallest value seen. Entries whose formatted
// descriptor repeats an earlier one are dropped.
func buildSrcset(candidates []candidate, rendered []Image, unit DescriptorKind) []SrcsetEntry {
	values := make([]srcsetValue, 0, len(candidates))
	byURL := make(map[string]int, len(candidates))

	for i, c := range candidates {
		value := c.factor
		if unit == KindWidth {
			value = float64(rendered[i].Dimensions().Width)
		}

		url := rendered[i].URL()
		if j, ok := byURL[url]; ok {
			values[j].value = min(values[j].value, value)
			continue
		}
		byURL[url] = len(values)
		values = append(values, srcsetValue{image: rendered[i], value: value})
	}

	entries := make([]SrcsetEntry, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		descriptor := Descriptor{Kind: unit, Value: v.value}.String()
		if seen[descriptor] {
			continue
		}
		seen[descriptor] = true
		entries = append(entries, SrcsetEntry{Image: v.image, Descriptor: descriptor})
	}

	if len(entries) == 1 && unit == KindDensity && entries[0].Descriptor == "1x" {
		entries[0].Descriptor = ""
	}
	return entries
}
