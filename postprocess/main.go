// Command postprocess selects deuterons, protons and lambdas from a
// femto-dream AO2D file and writes their histograms to a ROOT file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/profile"

	"github.com/decibelcooper/femtoplot"
	"github.com/decibelcooper/femtoplot/analysis"
	"github.com/decibelcooper/femtoplot/config"
	"github.com/decibelcooper/femtoplot/dataset"
	"github.com/decibelcooper/femtoplot/hists"
	"github.com/decibelcooper/femtoplot/metrics"
	"github.com/decibelcooper/femtoplot/selection"
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <config> <input.root> <output.root>

options:
`,
	)
	flag.PrintDefaults()
}

type options struct {
	plots     string
	species   []string
	metrics   string
	daughters bool
	qa        bool
}

func main() {
	log.SetPrefix("postprocess: ")
	log.SetFlags(0)

	var (
		plots     = flag.String("plots", "", "directory to render every histogram to as PNG")
		metricsF  = flag.String("metrics", "", "file to write the cut-flow counters to, in Prometheus text format")
		daughters = flag.Bool("daughters", false, "fill the V0 daughter collections")
		qa        = flag.Bool("qa", false, "fill the QA collections of unselected records")
		cpuprof   = flag.Bool("cpuprofile", false, "enable CPU profiling")
		species   femtoplot.StringArrayFlags
	)
	flag.Var(&species, "plot-species", "collection to render (repeatable, default all)")
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() != 3 {
		printUsage()
		log.Fatal("Invalid arguments")
	}

	opts := options{
		plots:     *plots,
		species:   species.Array,
		metrics:   *metricsF,
		daughters: *daughters,
		qa:        *qa,
	}
	err := func() error {
		if *cpuprof {
			defer profile.Start().Stop()
		}
		return run(flag.Arg(0), flag.Arg(1), flag.Arg(2), opts)
	}()
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(cfg, input, output string, opts options) error {
	cuts, err := config.Load(cfg)
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}

	in, err := dataset.Open(input)
	if err != nil {
		return fmt.Errorf("could not open input: %w", err)
	}
	defer in.Close()

	var aggOpts []hists.Option
	if opts.daughters {
		aggOpts = append(aggOpts, hists.WithDaughters())
	}
	if opts.qa {
		aggOpts = append(aggOpts, hists.WithQA())
	}

	var (
		m   = metrics.New()
		agg = hists.New(cuts, aggOpts...)
		eng = selection.New(cuts, selection.WithObserver(m))
		rep = analysis.New(eng, agg, analysis.WithMetrics(m)).Process(in)
	)

	for _, d := range rep.Diagnostics {
		log.Printf("%v", d)
	}
	for _, r := range rep.Runs {
		log.Printf(
			"%s: %d records, %d collisions, %d skipped, %d/%d V0 linked",
			r.Dir, r.Records, r.Collisions, r.Skipped, r.Links.Linked, r.Links.Linked+r.Links.Broken,
		)
	}
	log.Printf("processed %d/%d directories, %d records", len(rep.Runs), rep.Dirs(), rep.Records())

	if err := hists.Write(output, agg.Collections()); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}

	if opts.metrics != "" {
		if err := m.WriteFile(opts.metrics); err != nil {
			return fmt.Errorf("could not write metrics: %w", err)
		}
	}

	if opts.plots != "" {
		pl := femtoplot.NewPlotter(opts.plots)
		pl.Only = opts.species
		files, err := pl.Render(agg.Collections())
		if err != nil {
			return fmt.Errorf("could not render plots: %w", err)
		}
		log.Printf("rendered %d plots in %s", len(files), opts.plots)
	}
	return nil
}
