// Command compare overlays one histogram taken from several postprocess
// output files.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/decibelcooper/femtoplot"
	"github.com/decibelcooper/femtoplot/hists"
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <output.root>...

options:
`,
	)
	flag.PrintDefaults()
}

var lineColors = []color.Color{
	color.RGBA{A: 255},
	color.RGBA{G: 255, A: 255},
	color.RGBA{B: 255, A: 255},
	color.RGBA{R: 255, B: 127, G: 127, A: 255},
}

func main() {
	log.SetPrefix("compare: ")
	log.SetFlags(0)

	var (
		key    = flag.String("hist", "LambdaList/invMassLambda", "histogram to overlay, as collection/name")
		title  = flag.String("title", "", "plot title")
		xlabel = flag.String("xlabel", "", "x axis label (default: histogram name)")
		logy   = flag.Bool("logy", false, "logarithmic y axis")
		output = flag.String("output", "out.png", "output file")
	)
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		log.Fatal("Invalid arguments")
	}

	p := plot.New()
	p.Title.Text = *title
	p.X.Label.Text = *xlabel
	if p.X.Label.Text == "" {
		p.X.Label.Text = (*key)[strings.LastIndex(*key, "/")+1:]
	}
	p.Y.Label.Text = "entries"
	p.X.Tick.Marker = femtoplot.PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = femtoplot.PreciseTicks{NSuggestedTicks: 5}
	if *logy {
		p.Y.Tick.Marker = plot.LogTicks{}
		p.Y.Scale = plot.LogScale{}
	}
	p.Legend.Top = true

	for i, fname := range flag.Args() {
		hist, err := hists.ReadH1D(fname, *key)
		if err != nil {
			log.Fatal(err)
		}

		h := hplot.NewH1D(hist, hplot.WithLogY(*logy))
		h.FillColor = nil
		h.LineStyle.Color = lineColors[i%len(lineColors)]
		h.Infos.Style = hplot.HInfoNone
		if flag.NArg() == 1 {
			h.Infos.Style = hplot.HInfoSummary
		}

		p.Add(h)
		p.Legend.Add(filepath.Base(fname), h)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, *output); err != nil {
		log.Fatalf("could not save %s: %+v", *output, err)
	}
}
