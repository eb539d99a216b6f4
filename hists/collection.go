// Package hists accumulates selected candidates into named hbook
// histogram collections and writes them to ROOT files.
package hists

import (
	"math"

	"go-hep.org/x/hep/hbook"
)

// Axis is a fixed-width linear binning over [Min, Max).
type Axis struct {
	Bins     int
	Min, Max float64
	Label    string
}

// Internal ranges; only the pt axis comes from the configuration.
var (
	AxisEta         = Axis{Bins: 1000, Min: -1, Max: 1, Label: "η"}
	AxisPhi         = Axis{Bins: 1000, Min: 0, Max: 2 * math.Pi, Label: "φ"}
	AxisDCAz        = Axis{Bins: 300, Min: -0.3, Max: 0.3, Label: "DCA_z (cm)"}
	AxisDCAxy       = Axis{Bins: 300, Min: -0.3, Max: 0.3, Label: "DCA_xy (cm)"}
	AxisDaughDCA    = Axis{Bins: 300, Min: -0.3, Max: 0.3, Label: "daughter DCA (cm)"}
	AxisTransRadius = Axis{Bins: 1000, Min: 0, Max: 150, Label: "transverse radius (cm)"}
	AxisNSigmaTPC   = Axis{Bins: 100, Min: -8, Max: 8, Label: "nσ TPC"}
	AxisNSigmaTOF   = Axis{Bins: 100, Min: -8, Max: 8, Label: "nσ TOF"}
	AxisTPCSignal   = Axis{Bins: 500, Min: 0, Max: 500, Label: "TPC signal"}
	AxisInvMass     = Axis{Bins: 100, Min: 0, Max: 2, Label: "M (GeV/c²)"}
	AxisPosZ        = Axis{Bins: 1000, Min: -20, Max: 20, Label: "z vertex (cm)"}
	AxisMult        = Axis{Bins: 10000, Min: 0, Max: 10000, Label: "multiplicity"}
)

// Hist is one named histogram of a collection. Exactly one of H1 and H2
// is set.
type Hist struct {
	Name   string
	H1     *hbook.H1D
	H2     *hbook.H2D
	XLabel string
	YLabel string
}

// Collection is an ordered, named group of histograms.
type Collection struct {
	Name  string
	Hists []*Hist

	index map[string]*Hist
}

func newCollection(name string) *Collection {
	return &Collection{Name: name, index: make(map[string]*Hist)}
}

// Get returns the named histogram, or nil.
func (c *Collection) Get(name string) *Hist {
	return c.index[name]
}

// Len is the number of histograms in the collection.
func (c *Collection) Len() int { return len(c.Hists) }

func (c *Collection) add(h *Hist) {
	c.Hists = append(c.Hists, h)
	c.index[h.Name] = h
}

func (c *Collection) h1(name string, x Axis) *hbook.H1D {
	h := hbook.NewH1D(x.Bins, x.Min, x.Max)
	h.Annotation()["name"] = name
	h.Annotation()["title"] = name
	c.add(&Hist{Name: name, H1: h, XLabel: x.Label, YLabel: "entries"})
	return h
}

func (c *Collection) h2(name string, x, y Axis) *hbook.H2D {
	h := hbook.NewH2D(x.Bins, x.Min, x.Max, y.Bins, y.Min, y.Max)
	h.Annotation()["name"] = name
	h.Annotation()["title"] = name
	c.add(&Hist{Name: name, H2: h, XLabel: x.Label, YLabel: y.Label})
	return h
}
