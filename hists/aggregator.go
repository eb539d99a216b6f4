package hists

import (
	"go-hep.org/x/hep/hbook"

	"github.com/decibelcooper/femtoplot/config"
	"github.com/decibelcooper/femtoplot/pidbin"
	"github.com/decibelcooper/femtoplot/selection"
)

// Collection names in the output file.
const (
	DeuteronList    = "DeuteronList"
	ProtonList      = "ProtonList"
	LambdaList      = "LambdaList"
	EventList       = "EventList"
	PosDaughterList = "PosDaughterList"
	NegDaughterList = "NegDaughterList"
)

// CollisionSet remembers which collisions of the current run directory
// already contributed to the event histograms.
type CollisionSet struct {
	seen map[int32]struct{}
}

func NewCollisionSet() *CollisionSet {
	return &CollisionSet{seen: make(map[int32]struct{})}
}

// Insert adds id and reports whether it was new.
func (s *CollisionSet) Insert(id int32) bool {
	if _, dup := s.seen[id]; dup {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

func (s *CollisionSet) Contains(id int32) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *CollisionSet) Len() int { return len(s.seen) }

type trackHists struct {
	pt, phi, eta, dcaz, dcaxy *hbook.H1D
	tpc, tof, tpcSignal       *hbook.H1D

	dcazPt, dcaxyPt           *hbook.H2D
	tpcPt, tofPt, tpcSignalPt *hbook.H2D
	tpcP, tofP, tpcSignalP    *hbook.H2D
}

func newTrackHists(c *Collection, species string, pt Axis) *trackHists {
	p := pt
	p.Label = "p (GeV/c)"
	return &trackHists{
		pt:          c.h1("pt"+species, pt),
		phi:         c.h1("phi"+species, AxisPhi),
		eta:         c.h1("eta"+species, AxisEta),
		dcaz:        c.h1("dcaz"+species, AxisDCAz),
		dcaxy:       c.h1("dcaxy"+species, AxisDCAxy),
		dcazPt:      c.h2("dcaz_pt_"+species, pt, AxisDCAz),
		dcaxyPt:     c.h2("dcaxy_pt_"+species, pt, AxisDCAxy),
		tpc:         c.h1("nsigmatpc"+species, AxisNSigmaTPC),
		tof:         c.h1("nsigmatof"+species, AxisNSigmaTOF),
		tpcSignal:   c.h1("tpcsignal"+species, AxisTPCSignal),
		tpcPt:       c.h2("nsigmatpc_pt_"+species, pt, AxisNSigmaTPC),
		tofPt:       c.h2("nsigmatof_pt_"+species, pt, AxisNSigmaTOF),
		tpcSignalPt: c.h2("tpcsignal_pt_"+species, pt, AxisTPCSignal),
		tpcP:        c.h2("nsigmatpc_p_"+species, p, AxisNSigmaTPC),
		tofP:        c.h2("nsigmatof_p_"+species, p, AxisNSigmaTOF),
		tpcSignalP:  c.h2("tpcsignal_p_"+species, p, AxisTPCSignal),
	}
}

func (h *trackHists) fill(c *selection.Candidate) {
	h.pt.Fill(c.Pt, 1)
	h.phi.Fill(c.Phi, 1)
	h.eta.Fill(c.Eta, 1)
	h.dcaz.Fill(c.DCAz, 1)
	h.dcaxy.Fill(c.DCAxy, 1)
	h.dcazPt.Fill(c.Pt, c.DCAz, 1)
	h.dcaxyPt.Fill(c.Pt, c.DCAxy, 1)
	h.tpc.Fill(c.NSigmaTPC, 1)
	h.tof.Fill(c.NSigmaTOF, 1)
	h.tpcSignal.Fill(c.TPCSignal, 1)
	h.tpcPt.Fill(c.Pt, c.NSigmaTPC, 1)
	h.tofPt.Fill(c.Pt, c.NSigmaTOF, 1)
	h.tpcSignalPt.Fill(c.Pt, c.TPCSignal, 1)
	h.tpcP.Fill(c.P, c.NSigmaTPC, 1)
	h.tofP.Fill(c.P, c.NSigmaTOF, 1)
	h.tpcSignalP.Fill(c.P, c.TPCSignal, 1)
}

type lambdaHists struct {
	invMass, pt, eta, phi, daughDCA, transRadius *hbook.H1D
}

type daughterHists struct {
	pt, phi, eta, tpc *hbook.H1D
}

func newDaughterHists(c *Collection, suffix string, pt Axis) *daughterHists {
	return &daughterHists{
		pt:  c.h1("pt"+suffix, pt),
		phi: c.h1("phi"+suffix, AxisPhi),
		eta: c.h1("eta"+suffix, AxisEta),
		tpc: c.h1("nsigmaTPC"+suffix, AxisNSigmaTPC),
	}
}

func (h *daughterHists) fill(pt, phi, eta, nsigma float64) {
	h.pt.Fill(pt, 1)
	h.phi.Fill(phi, 1)
	h.eta.Fill(eta, 1)
	h.tpc.Fill(nsigma, 1)
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithDaughters adds the PosDaughterList and NegDaughterList collections,
// filled with the daughters of accepted lambdas.
func WithDaughters() Option {
	return func(a *Aggregator) { a.daughters = true }
}

// Aggregator owns every output histogram. It is not safe for concurrent
// use.
type Aggregator struct {
	daughters bool
	qa        bool

	deuteron, proton *trackHists
	lambda           lambdaHists
	posZ, mult       *hbook.H1D
	pos, neg         *daughterHists

	raw []*qaHists

	seen  *CollisionSet
	colls []*Collection
}

// New creates the histograms. The pt axis, and the p axis of the
// momentum-dependent 2D histograms, use the configured pt binning.
func New(cuts *config.Cuts, opts ...Option) *Aggregator {
	a := &Aggregator{seen: NewCollisionSet()}
	for _, opt := range opts {
		opt(a)
	}

	pt := Axis{Bins: cuts.PtBins, Min: cuts.PtRangeMin, Max: cuts.PtRangeMax, Label: "p_T (GeV/c)"}

	deut := newCollection(DeuteronList)
	a.deuteron = newTrackHists(deut, "Deuteron", pt)

	prot := newCollection(ProtonList)
	a.proton = newTrackHists(prot, "Proton", pt)

	lam := newCollection(LambdaList)
	a.lambda = lambdaHists{
		invMass:     lam.h1("invMassLambda", AxisInvMass),
		pt:          lam.h1("ptLambda", pt),
		eta:         lam.h1("etaLambda", AxisEta),
		phi:         lam.h1("phiLambda", AxisPhi),
		daughDCA:    lam.h1("daughDCALambda", AxisDaughDCA),
		transRadius: lam.h1("transradiusLambda", AxisTransRadius),
	}

	evt := newCollection(EventList)
	a.posZ = evt.h1("posz", AxisPosZ)
	a.mult = evt.h1("mul", AxisMult)

	a.colls = []*Collection{deut, prot, lam, evt}

	if a.daughters {
		pos := newCollection(PosDaughterList)
		a.pos = newDaughterHists(pos, "PosDaugh", pt)
		neg := newCollection(NegDaughterList)
		a.neg = newDaughterHists(neg, "NegDaugh", pt)
		a.colls = append(a.colls, pos, neg)
	}
	if a.qa {
		a.newQA(pt)
	}
	return a
}

// BeginRun starts a new run directory. Collision ids are local to a
// directory, so the dedup set is replaced.
func (a *Aggregator) BeginRun() {
	a.seen = NewCollisionSet()
}

// FillEvent fills the event histograms the first time a collision is seen
// in the current run directory and reports whether it did.
func (a *Aggregator) FillEvent(id int32, posZ, mult float64) bool {
	if !a.seen.Insert(id) {
		return false
	}
	a.posZ.Fill(posZ, 1)
	a.mult.Fill(mult, 1)
	return true
}

// Fill adds a selected candidate to its species collection.
func (a *Aggregator) Fill(c selection.Candidate) {
	switch c.Species {
	case selection.Deuteron:
		a.deuteron.fill(&c)
	case selection.Proton:
		a.proton.fill(&c)
	case selection.Lambda:
		a.lambda.invMass.Fill(c.InvMass, 1)
		a.lambda.pt.Fill(c.Pt, 1)
		a.lambda.eta.Fill(c.Eta, 1)
		a.lambda.phi.Fill(c.Phi, 1)
		a.lambda.daughDCA.Fill(c.DaughDCA, 1)
		a.lambda.transRadius.Fill(c.TransRadius, 1)
		if a.daughters {
			a.pos.fill(float64(c.Pos.Pt), float64(c.Pos.Phi), float64(c.Pos.Eta), pidbin.Decode(c.Pos.NSigmaTPC))
			a.neg.fill(float64(c.Neg.Pt), float64(c.Neg.Phi), float64(c.Neg.Eta), pidbin.Decode(c.Neg.NSigmaTPC))
		}
	}
}

// Collections returns the collections in output order.
func (a *Aggregator) Collections() []*Collection {
	return a.colls
}

// Collection returns the named collection, or nil.
func (a *Aggregator) Collection(name string) *Collection {
	for _, c := range a.colls {
		if c.Name == name {
			return c
		}
	}
	return nil
}
