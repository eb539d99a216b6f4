package hists

import (
	"math"

	"go-hep.org/x/hep/hbook"

	"github.com/decibelcooper/femtoplot/dataset"
	"github.com/decibelcooper/femtoplot/pidbin"
)

// QA collection names.
const (
	RawTrackList       = "RawTrackList"
	RawLambdaList      = "RawLambdaList"
	RawPosDaughterList = "RawPosDaughterList"
	RawNegDaughterList = "RawNegDaughterList"
)

// Raw selects the QA collection of an unselected record.
type Raw int

const (
	RawTrack Raw = iota
	RawLambda
	RawPosDaughter
	RawNegDaughter
)

var (
	axisCharge      = Axis{Bins: 3, Min: -1.5, Max: 1.5, Label: "charge"}
	axisTPCClusters = Axis{Bins: 256, Min: 0, Max: 256, Label: "TPC clusters"}
	axisITSClusters = Axis{Bins: 8, Min: 0, Max: 8, Label: "ITS clusters"}
	axisRatio       = Axis{Bins: 350, Min: 0, Max: 3.5, Label: "crossed rows / findable"}
	axisDCAPV       = Axis{Bins: 300, Min: 0, Max: 0.6, Label: "DCA to primary vertex (cm)"}
	axisVertexDist  = Axis{Bins: 1000, Min: 0, Max: 150, Label: "decay vertex distance (cm)"}
)

// noFindableRatio is filled in place of the crossed rows ratio when a
// track has no findable cluster.
const noFindableRatio = 3

type qaHists struct {
	charge, pt, eta, phi               *hbook.H1D
	dcaxy, dcaz, dcaPV, daughDCA       *hbook.H1D
	tpcFound, tpcFindable, tpcCrossed  *hbook.H1D
	tpcRatio, tpcShared, its, itsIB    *hbook.H1D
	tpc, tof                           *hbook.H1D
	transRadius, vertexDist, mK0, mLam *hbook.H1D

	dcazPt, dcaxyPt, tpcP, tofP *hbook.H2D
}

func newQAHists(c *Collection, suffix string, pt Axis) *qaHists {
	p := pt
	p.Label = "p (GeV/c)"
	k0 := AxisInvMass
	k0.Label = "M_K0 (GeV/c²)"
	return &qaHists{
		charge:      c.h1("charge"+suffix, axisCharge),
		pt:          c.h1("pt"+suffix, pt),
		eta:         c.h1("eta"+suffix, AxisEta),
		phi:         c.h1("phi"+suffix, AxisPhi),
		dcaxy:       c.h1("dcaxy"+suffix, AxisDCAxy),
		dcaz:        c.h1("dcaz"+suffix, AxisDCAz),
		dcaPV:       c.h1("dcaPV"+suffix, axisDCAPV),
		daughDCA:    c.h1("daughDCA"+suffix, AxisDaughDCA),
		tpcFound:    c.h1("tpcClustersFound"+suffix, axisTPCClusters),
		tpcFindable: c.h1("tpcClustersFindable"+suffix, axisTPCClusters),
		tpcCrossed:  c.h1("tpcCrossedRows"+suffix, axisTPCClusters),
		tpcRatio:    c.h1("tpcCrossedRowsOverFindable"+suffix, axisRatio),
		tpcShared:   c.h1("tpcClustersShared"+suffix, axisTPCClusters),
		its:         c.h1("itsClusters"+suffix, axisITSClusters),
		itsIB:       c.h1("itsClustersIB"+suffix, axisITSClusters),
		tpc:         c.h1("nsigmatpc"+suffix, AxisNSigmaTPC),
		tof:         c.h1("nsigmatof"+suffix, AxisNSigmaTOF),
		transRadius: c.h1("transradius"+suffix, AxisTransRadius),
		vertexDist:  c.h1("decayVtxDist"+suffix, axisVertexDist),
		mK0:         c.h1("invMassK0"+suffix, k0),
		mLam:        c.h1("invMassLambda"+suffix, AxisInvMass),
		dcazPt:      c.h2("dcaz_pt_"+suffix, pt, AxisDCAz),
		dcaxyPt:     c.h2("dcaxy_pt_"+suffix, pt, AxisDCAxy),
		tpcP:        c.h2("nsigmatpc_p_"+suffix, p, AxisNSigmaTPC),
		tofP:        c.h2("nsigmatof_p_"+suffix, p, AxisNSigmaTOF),
	}
}

func (h *qaHists) fill(trk *dataset.Track, dbg *dataset.TrackDebug, posZ, tpc, tof float64) {
	var (
		pt    = float64(trk.Pt)
		p     = trk.P()
		dcaz  = float64(dbg.DCAz)
		dcaxy = float64(dbg.DCAxy)
		ratio = float64(noFindableRatio)
	)
	if dbg.TPCNClsFindable != 0 {
		ratio = float64(dbg.TPCNClsCrossedRows) / float64(dbg.TPCNClsFindable)
	}

	// the primary vertex is taken at (0, 0, posZ)
	dist := math.Sqrt(sq(float64(dbg.DecayVtxX)) + sq(float64(dbg.DecayVtxY)) + sq(float64(dbg.DecayVtxZ)-posZ))

	h.charge.Fill(float64(dbg.Sign), 1)
	h.pt.Fill(pt, 1)
	h.eta.Fill(float64(trk.Eta), 1)
	h.phi.Fill(float64(trk.Phi), 1)
	h.dcaxy.Fill(dcaxy, 1)
	h.dcaz.Fill(dcaz, 1)
	h.dcaPV.Fill(math.Hypot(dcaxy, dcaz), 1)
	h.daughDCA.Fill(float64(dbg.DaughDCA), 1)
	h.tpcFound.Fill(float64(dbg.TPCNClsFound), 1)
	h.tpcFindable.Fill(float64(dbg.TPCNClsFindable), 1)
	h.tpcCrossed.Fill(float64(dbg.TPCNClsCrossedRows), 1)
	h.tpcRatio.Fill(ratio, 1)
	h.tpcShared.Fill(float64(dbg.TPCNClsShared), 1)
	h.its.Fill(float64(dbg.ITSNCls), 1)
	h.itsIB.Fill(float64(dbg.ITSNClsInnerBarrel), 1)
	h.tpc.Fill(tpc, 1)
	h.tof.Fill(tof, 1)
	h.transRadius.Fill(float64(dbg.TransRadius), 1)
	h.vertexDist.Fill(dist, 1)
	h.mK0.Fill(float64(dbg.MKaon), 1)
	h.mLam.Fill(float64(trk.MLambda), 1)
	h.dcazPt.Fill(pt, dcaz, 1)
	h.dcaxyPt.Fill(pt, dcaxy, 1)
	h.tpcP.Fill(p, tpc, 1)
	h.tofP.Fill(p, tof, 1)
}

func sq(v float64) float64 { return v * v }

// WithQA adds the RawTrackList, RawLambdaList, RawPosDaughterList and
// RawNegDaughterList collections, filled by FillRaw with every record
// that passed the event gate, before any species cut.
func WithQA() Option {
	return func(a *Aggregator) { a.qa = true }
}

// QA reports whether the QA collections are enabled.
func (a *Aggregator) QA() bool { return a.qa }

// FillRaw adds an unselected record to the QA collection of kind. posZ is
// the z position of the record's collision. Positive daughters carry the
// proton significances, negative daughters the TPC pion one; plain tracks
// and V0 candidates fill zero. FillRaw is a no-op without WithQA.
func (a *Aggregator) FillRaw(kind Raw, trk *dataset.Track, dbg *dataset.TrackDebug, posZ float64) {
	if !a.qa {
		return
	}
	var tpc, tof float64
	switch kind {
	case RawPosDaughter:
		tpc, tof = pidbin.Decode(dbg.TPCNSigmaPr), pidbin.Decode(dbg.TOFNSigmaPr)
	case RawNegDaughter:
		tpc = pidbin.Decode(dbg.TPCNSigmaPi)
	}
	if int(kind) < 0 || int(kind) >= len(a.raw) {
		return
	}
	a.raw[kind].fill(trk, dbg, posZ, tpc, tof)
}

func (a *Aggregator) newQA(pt Axis) {
	for _, r := range []struct {
		coll, suffix string
	}{
		{RawTrackList, "RawTrack"},
		{RawLambdaList, "RawLambda"},
		{RawPosDaughterList, "RawPosDaugh"},
		{RawNegDaughterList, "RawNegDaugh"},
	} {
		c := newCollection(r.coll)
		a.raw = append(a.raw, newQAHists(c, r.suffix, pt))
		a.colls = append(a.colls, c)
	}
}
