// Package dataset holds the femto-dream record types and loads run
// directories from ROOT files into memory.
package dataset

import "math"

// Track types stored in fPartType.
const (
	TypeTrack    uint8 = 0
	TypeV0       uint8 = 1
	TypeDaughter uint8 = 2
)

type Collision struct {
	PosZ float32
	Mult float32
}

type Track struct {
	Pt, Eta, Phi float32
	CollisionID  int32
	Type         uint8
	MLambda      float32
	MAntiLambda  float32
}

// P is the total momentum pt*cosh(eta), evaluated in float32 like the
// stored kinematics.
func (t *Track) P() float64 {
	return float64(t.Pt * float32(math.Cosh(float64(t.Eta))))
}

// TrackDebug is the debug/PID row co-indexed with a Track.
type TrackDebug struct {
	Sign        int8
	DCAz, DCAxy float32
	DaughDCA    float32

	DecayVtxX, DecayVtxY, DecayVtxZ float32

	TransRadius float32
	MKaon       float32

	ITSNCls            uint8
	ITSNClsInnerBarrel uint8
	TPCNClsFound       uint8
	TPCNClsFindable    uint8
	TPCNClsShared      uint8
	TPCNClsCrossedRows uint8

	TPCNSigmaEl int8
	TPCNSigmaPi int8
	TPCNSigmaKa int8
	TPCNSigmaPr int8
	TPCNSigmaDe int8
	TOFNSigmaPr int8
	TOFNSigmaDe int8

	TPCSignal float32
}

// Daughter is the view of a V0 daughter used by the lambda selection.
type Daughter struct {
	Pt, Phi, Eta float32
	TPCNCls      uint8
	NSigmaTPC    int8
}
