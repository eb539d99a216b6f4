package selection

import (
	"math"

	"github.com/decibelcooper/femtoplot/config"
	"github.com/decibelcooper/femtoplot/dataset"
	"github.com/decibelcooper/femtoplot/pidbin"
)

// limits holds the thresholds rounded to float32, the precision of the
// stored records, so that boundary values compare exactly.
type limits struct {
	usePid bool

	posZMax, etaMax float64

	tpcClustersMin, crossedRowsMin, crossedRowsRatioMin float64
	itsClustersMin, itsClustersIBMin                    float64

	nsigmaDeuteronMax, nsigmaRejection     float64
	nsigmaProtonMax, nsigmaTPCTOFProtonMax float64
	pThresholdProton                       float64

	ptDeuteronMin, ptDeuteronMax float64
	ptProtonMin, ptProtonMax     float64
	ptLambdaMin, ptLambdaMax     float64

	daughDCAMax                    float64
	transRadiusMin, transRadiusMax float64
	daughTPCClustersMin            float64
}

func f32(v float64) float64 { return float64(float32(v)) }

func newLimits(c *config.Cuts) limits {
	return limits{
		usePid:                c.UsePid,
		posZMax:               f32(c.PosZMax),
		etaMax:                f32(c.EtaMax),
		tpcClustersMin:        c.TPCClustersMin,
		crossedRowsMin:        c.TPCCrossedRowsMin,
		crossedRowsRatioMin:   f32(c.TPCCrossedRowsOverClustersMin),
		itsClustersMin:        c.ITSClustersMin,
		itsClustersIBMin:      c.ITSClustersIBMin,
		nsigmaDeuteronMax:     c.NSigmaTPCDeuteronMax,
		nsigmaRejection:       c.NSigmaTPCRejection,
		nsigmaProtonMax:       c.NSigmaTPCProtonMax,
		nsigmaTPCTOFProtonMax: c.NSigmaTPCTOFProtonMax,
		pThresholdProton:      f32(c.PPIDThresholdProton),
		ptDeuteronMin:         f32(c.PtDeuteronMin),
		ptDeuteronMax:         f32(c.PtDeuteronMax),
		ptProtonMin:           f32(c.PtProtonMin),
		ptProtonMax:           f32(c.PtProtonMax),
		ptLambdaMin:           f32(c.PtLambdaMin),
		ptLambdaMax:           f32(c.PtLambdaMax),
		daughDCAMax:           f32(c.DaughDCAMax),
		transRadiusMin:        f32(c.TransRadiusMin),
		transRadiusMax:        f32(c.TransRadiusMax),
		daughTPCClustersMin:   c.DaughTPCClustersMin,
	}
}

// Lambda applies the V0 cascade. pos and neg are nil when the candidate has
// no daughter link.
func (e *Engine) Lambda(trk *dataset.Track, dbg *dataset.TrackDebug, pos, neg *dataset.Daughter) (Candidate, bool) {
	const stage = "Lambda"
	var (
		lim = &e.lim
		pt  = float64(trk.Pt)
		r   = float64(dbg.TransRadius)
	)
	switch {
	case dbg.Sign < 0:
		return Candidate{}, e.reject(stage, CutSign)
	case pt < lim.ptLambdaMin || pt > lim.ptLambdaMax:
		return Candidate{}, e.reject(stage, CutPt)
	case float64(dbg.DaughDCA) > lim.daughDCAMax:
		return Candidate{}, e.reject(stage, CutDaughDCA)
	case r < lim.transRadiusMin || r > lim.transRadiusMax:
		return Candidate{}, e.reject(stage, CutTransRadius)
	case abs32(trk.Eta) > lim.etaMax:
		return Candidate{}, e.reject(stage, CutEta)
	case pos == nil || neg == nil:
		return Candidate{}, e.reject(stage, CutDaughterLink)
	case pidbin.Abs(pos.NSigmaTPC) > daughterPIDMax || pidbin.Abs(neg.NSigmaTPC) > daughterPIDMax:
		return Candidate{}, e.reject(stage, CutDaughterPID)
	case float64(pos.TPCNCls) < lim.daughTPCClustersMin || float64(neg.TPCNCls) < lim.daughTPCClustersMin:
		return Candidate{}, e.reject(stage, CutDaughterTPCClusters)
	}

	e.obs.Accepted(stage)
	return Candidate{
		Species:     Lambda,
		Pt:          pt,
		Eta:         float64(trk.Eta),
		Phi:         float64(trk.Phi),
		P:           trk.P(),
		DaughDCA:    float64(dbg.DaughDCA),
		TransRadius: r,
		InvMass:     float64(trk.MLambda),
		Pos:         *pos,
		Neg:         *neg,
	}, true
}

// TrackQuality is the gate shared by the deuteron and proton checks.
// A track without findable TPC clusters fails it.
func (e *Engine) TrackQuality(trk *dataset.Track, dbg *dataset.TrackDebug) bool {
	lim := &e.lim
	switch {
	case float64(dbg.TPCNClsFound) < lim.tpcClustersMin:
		return e.reject(StageTrack, CutTPCClusters)
	case float64(dbg.TPCNClsCrossedRows) < lim.crossedRowsMin:
		return e.reject(StageTrack, CutCrossedRows)
	case dbg.TPCNClsShared > 0:
		return e.reject(StageTrack, CutSharedClusters)
	case abs32(trk.Eta) > lim.etaMax:
		return e.reject(StageTrack, CutEta)
	case dbg.TPCNClsFindable == 0:
		return e.reject(StageTrack, CutFindable)
	case float64(float32(dbg.TPCNClsCrossedRows)/float32(dbg.TPCNClsFindable)) < lim.crossedRowsRatioMin:
		return e.reject(StageTrack, CutCrossedRowsRatio)
	case dbg.Sign < 0:
		return e.reject(StageTrack, CutSign)
	}
	e.obs.Accepted(StageTrack)
	return true
}

// Deuteron applies the deuteron identification to a track that passed
// TrackQuality.
func (e *Engine) Deuteron(trk *dataset.Track, dbg *dataset.TrackDebug) (Candidate, bool) {
	const stage = "Deuteron"
	var (
		lim = &e.lim
		pt  = float64(trk.Pt)
	)
	switch {
	case !lim.usePid || pidbin.Abs(dbg.TPCNSigmaDe) >= lim.nsigmaDeuteronMax:
		return Candidate{}, e.reject(stage, CutPID)
	case pt <= lim.ptDeuteronMin || pt >= lim.ptDeuteronMax:
		return Candidate{}, e.reject(stage, CutPt)
	case float64(dbg.ITSNCls) <= lim.itsClustersMin:
		return Candidate{}, e.reject(stage, CutITSClusters)
	case float64(dbg.ITSNClsInnerBarrel) <= lim.itsClustersIBMin:
		return Candidate{}, e.reject(stage, CutITSClustersIB)
	}
	if rej := lim.nsigmaRejection; rej > 0 {
		if pidbin.Abs(dbg.TPCNSigmaEl) <= rej ||
			pidbin.Abs(dbg.TPCNSigmaPi) <= rej ||
			pidbin.Abs(dbg.TPCNSigmaPr) <= rej {
			return Candidate{}, e.reject(stage, CutRejection)
		}
	}

	e.obs.Accepted(stage)
	return track(Deuteron, trk, dbg, dbg.TPCNSigmaDe, dbg.TOFNSigmaDe), true
}

// Proton applies the proton identification to a track that passed
// TrackQuality. Below pPIDThresholdProton only the TPC significance is
// used, above it the TPC and TOF significances are added in quadrature.
func (e *Engine) Proton(trk *dataset.Track, dbg *dataset.TrackDebug) (Candidate, bool) {
	const stage = "Proton"
	var (
		lim = &e.lim
		pt  = float64(trk.Pt)
	)
	if pt <= lim.ptProtonMin || pt >= lim.ptProtonMax {
		return Candidate{}, e.reject(stage, CutPt)
	}
	if !lim.usePid {
		return Candidate{}, e.reject(stage, CutPID)
	}
	tpc := pidbin.Decode(dbg.TPCNSigmaPr)
	if trk.P() < lim.pThresholdProton {
		if math.Abs(tpc) >= lim.nsigmaProtonMax {
			return Candidate{}, e.reject(stage, CutPID)
		}
	} else {
		tof := pidbin.Decode(dbg.TOFNSigmaPr)
		if math.Hypot(tpc, tof) >= lim.nsigmaTPCTOFProtonMax {
			return Candidate{}, e.reject(stage, CutPID)
		}
	}

	e.obs.Accepted(stage)
	return track(Proton, trk, dbg, dbg.TPCNSigmaPr, dbg.TOFNSigmaPr), true
}

func track(s Species, trk *dataset.Track, dbg *dataset.TrackDebug, tpc, tof int8) Candidate {
	return Candidate{
		Species:   s,
		Pt:        float64(trk.Pt),
		Eta:       float64(trk.Eta),
		Phi:       float64(trk.Phi),
		P:         trk.P(),
		DCAz:      float64(dbg.DCAz),
		DCAxy:     float64(dbg.DCAxy),
		NSigmaTPC: pidbin.Decode(tpc),
		NSigmaTOF: pidbin.Decode(tof),
		TPCSignal: float64(dbg.TPCSignal),
	}
}
