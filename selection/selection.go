// Package selection implements the event, lambda, deuteron and proton cut
// cascades.
//
// Thresholds come from config.Cuts. Every check short-circuits on the first
// failing cut; an Observer, when set, is told which cut fired.
package selection

import (
	"math"

	"github.com/decibelcooper/femtoplot/config"
	"github.com/decibelcooper/femtoplot/dataset"
)

// Species is the classification of a selected record.
type Species int

const (
	None Species = iota
	Lambda
	Proton
	Deuteron
)

func (s Species) String() string {
	switch s {
	case Lambda:
		return "Lambda"
	case Proton:
		return "Proton"
	case Deuteron:
		return "Deuteron"
	default:
		return "None"
	}
}

// Stages reported to an Observer besides the species names.
const (
	StageEvent = "Event"
	StageTrack = "Track"
)

// Cut names reported to an Observer.
const (
	CutPosZ                = "posZ"
	CutSign                = "sign"
	CutPt                  = "pt"
	CutEta                 = "eta"
	CutDaughDCA            = "daughDCA"
	CutTransRadius         = "transRadius"
	CutDaughterLink        = "daughterLink"
	CutDaughterPID         = "daughterPID"
	CutDaughterTPCClusters = "daughterTPCClusters"
	CutTPCClusters         = "tpcClusters"
	CutCrossedRows         = "crossedRows"
	CutSharedClusters      = "sharedClusters"
	CutFindable            = "findable"
	CutCrossedRowsRatio    = "crossedRowsRatio"
	CutPID                 = "pid"
	CutITSClusters         = "itsClusters"
	CutITSClustersIB       = "itsClustersIB"
	CutRejection           = "rejection"
)

// daughterPIDMax bounds the decoded TPC significance of V0 daughters.
const daughterPIDMax = 6

// Observer receives the outcome of every stage of the cascade.
type Observer interface {
	Rejected(stage, cut string)
	Accepted(stage string)
}

type nopObserver struct{}

func (nopObserver) Rejected(string, string) {}
func (nopObserver) Accepted(string)         {}

// Candidate holds the quantities of a selected record that are histogrammed.
type Candidate struct {
	Species Species

	Pt, Eta, Phi float64
	P            float64

	DCAz, DCAxy          float64
	NSigmaTPC, NSigmaTOF float64
	TPCSignal            float64

	DaughDCA    float64
	TransRadius float64
	InvMass     float64

	Pos, Neg dataset.Daughter
}

// Input is one track record with its companions.
type Input struct {
	Track *dataset.Track
	Debug *dataset.TrackDebug

	// Pos and Neg are only set for linked V0 candidates.
	Pos, Neg *dataset.Daughter
}

// Engine applies the cut cascades. It keeps no per-record state.
type Engine struct {
	lim limits
	obs Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver reports every rejection and acceptance to obs.
func WithObserver(obs Observer) Option {
	return func(e *Engine) {
		if obs != nil {
			e.obs = obs
		}
	}
}

// New returns an engine for the given thresholds.
func New(cuts *config.Cuts, opts ...Option) *Engine {
	e := &Engine{
		lim: newLimits(cuts),
		obs: nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Event reports whether the collision passes the vertex cut.
func (e *Engine) Event(c dataset.Collision) bool {
	if abs32(c.PosZ) > e.lim.posZMax {
		e.obs.Rejected(StageEvent, CutPosZ)
		return false
	}
	e.obs.Accepted(StageEvent)
	return true
}

// Classify dispatches a record on its type. V0 candidates are only ever
// evaluated as lambdas; plain tracks may be both deuteron and proton.
// Daughters and unknown types yield nothing.
func (e *Engine) Classify(in Input) []Candidate {
	switch in.Track.Type {
	case dataset.TypeV0:
		if c, ok := e.Lambda(in.Track, in.Debug, in.Pos, in.Neg); ok {
			return []Candidate{c}
		}
	case dataset.TypeTrack:
		if !e.TrackQuality(in.Track, in.Debug) {
			return nil
		}
		var out []Candidate
		if c, ok := e.Deuteron(in.Track, in.Debug); ok {
			out = append(out, c)
		}
		if c, ok := e.Proton(in.Track, in.Debug); ok {
			out = append(out, c)
		}
		return out
	}
	return nil
}

func (e *Engine) reject(stage, cut string) bool {
	e.obs.Rejected(stage, cut)
	return false
}

func abs32(v float32) float64 {
	return math.Abs(float64(v))
}
