package femtoplot

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/vg"

	"github.com/decibelcooper/femtoplot/hists"
)

// Plotter writes one PNG per histogram, under a sub-directory named after
// the collection.
type Plotter struct {
	Dir    string
	Width  vg.Length
	Height vg.Length

	// Only, when not empty, selects collections by name. "Proton" and
	// "ProtonList" both select the ProtonList collection.
	Only []string

	pal palette.Palette
}

func NewPlotter(dir string) *Plotter {
	cmap := moreland.ExtendedBlackBody()
	cmap.SetMin(0)
	cmap.SetMax(1)
	return &Plotter{
		Dir:    dir,
		Width:  6 * vg.Inch,
		Height: 4 * vg.Inch,
		pal:    cmap.Palette(255),
	}
}

func (pl *Plotter) selected(name string) bool {
	if len(pl.Only) == 0 {
		return true
	}
	for _, o := range pl.Only {
		if o == name || o+"List" == name {
			return true
		}
	}
	return false
}

// Render draws the selected collections and returns the written paths.
func (pl *Plotter) Render(colls []*hists.Collection) ([]string, error) {
	var files []string
	for _, c := range colls {
		if !pl.selected(c.Name) {
			continue
		}
		dir := filepath.Join(pl.Dir, c.Name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return files, fmt.Errorf("could not create plot directory: %w", err)
		}
		for _, h := range c.Hists {
			p := pl.plot(h)
			if p == nil {
				continue
			}
			fname := filepath.Join(dir, h.Name+".png")
			if err := p.Save(pl.Width, pl.Height, fname); err != nil {
				return files, fmt.Errorf("could not save %s: %w", fname, err)
			}
			files = append(files, fname)
		}
	}
	return files, nil
}

func (pl *Plotter) plot(h *hists.Hist) *plot.Plot {
	p := plot.New()
	p.Title.Text = h.Name
	p.X.Label.Text = h.XLabel
	p.Y.Label.Text = h.YLabel
	p.X.Tick.Marker = PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = PreciseTicks{NSuggestedTicks: 5}

	switch {
	case h.H1 != nil:
		hh := hplot.NewH1D(h.H1)
		hh.LineStyle.Color = color.RGBA{A: 255}
		hh.Infos.Style = hplot.HInfoSummary
		p.Add(hh)
	case h.H2 != nil:
		// an empty 2D histogram has no colour scale
		if h.H2.Entries() == 0 {
			return nil
		}
		p.Add(hplot.NewH2D(h.H2, pl.pal))
	default:
		return nil
	}
	return p
}
