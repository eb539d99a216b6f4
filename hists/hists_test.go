package hists

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/hbook"

	"github.com/decibelcooper/femtoplot/config"
	"github.com/decibelcooper/femtoplot/dataset"
	"github.com/decibelcooper/femtoplot/selection"
)

func testCuts() *config.Cuts {
	return &config.Cuts{PtBins: 50, PtRangeMin: 0, PtRangeMax: 5}
}

func inRange(h *hbook.H1D) int64 {
	var n int64
	for _, b := range h.Binning.Bins {
		n += b.Entries()
	}
	return n
}

func inRange2D(h *hbook.H2D) int64 {
	var n int64
	for _, b := range h.Binning.Bins {
		n += b.Entries()
	}
	return n
}

func TestCollectionShapes(t *testing.T) {
	a := New(testCuts())

	var names []string
	for _, c := range a.Collections() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{DeuteronList, ProtonList, LambdaList, EventList}, names)

	assert.Equal(t, 16, a.Collection(DeuteronList).Len())
	assert.Equal(t, 16, a.Collection(ProtonList).Len())
	assert.Equal(t, 6, a.Collection(LambdaList).Len())
	assert.Equal(t, 2, a.Collection(EventList).Len())
	assert.Nil(t, a.Collection(PosDaughterList))

	for _, sp := range []string{"Deuteron", "Proton"} {
		c := a.Collection(sp + "List")
		var n1, n2 int
		for _, h := range c.Hists {
			switch {
			case h.H1 != nil:
				n1++
				assert.Equal(t, h.Name, h.H1.Name())
			case h.H2 != nil:
				n2++
				assert.Equal(t, h.Name, h.H2.Name())
			}
		}
		assert.Equal(t, 8, n1, sp)
		assert.Equal(t, 8, n2, sp)
		assert.NotNil(t, c.Get("nsigmatpc_p_"+sp))
		assert.NotNil(t, c.Get("tpcsignal_pt_"+sp))
	}

	lam := a.Collection(LambdaList)
	for _, name := range []string{"invMassLambda", "ptLambda", "etaLambda", "phiLambda", "daughDCALambda", "transradiusLambda"} {
		require.NotNil(t, lam.Get(name), name)
	}

	pt := a.Collection(ProtonList).Get("ptProton").H1
	assert.Equal(t, 50, pt.Len())
	assert.Equal(t, 0.0, pt.XMin())
	assert.Equal(t, 5.0, pt.XMax())

	posz := a.Collection(EventList).Get("posz").H1
	assert.Equal(t, 1000, posz.Len())
	assert.Equal(t, -20.0, posz.XMin())
	assert.Equal(t, 20.0, posz.XMax())
	assert.Equal(t, 10000, a.Collection(EventList).Get("mul").H1.Len())
}

func TestWithDaughters(t *testing.T) {
	a := New(testCuts(), WithDaughters())
	require.Len(t, a.Collections(), 6)

	pos := a.Collection(PosDaughterList)
	require.NotNil(t, pos)
	assert.Equal(t, 4, pos.Len())

	a.Fill(selection.Candidate{
		Species: selection.Lambda,
		Pt:      2,
		Pos:     dataset.Daughter{Pt: 1.5, Phi: 1, Eta: 0.1, NSigmaTPC: 10},
		Neg:     dataset.Daughter{Pt: 0.5, Phi: 2, Eta: -0.1, NSigmaTPC: -10},
	})
	assert.Equal(t, int64(1), pos.Get("ptPosDaugh").H1.Entries())
	assert.Equal(t, int64(1), a.Collection(NegDaughterList).Get("nsigmaTPCNegDaugh").H1.Entries())
}

func TestCollisionSet(t *testing.T) {
	s := NewCollisionSet()
	assert.True(t, s.Insert(3))
	assert.False(t, s.Insert(3))
	assert.True(t, s.Insert(4))
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(5))
	assert.Equal(t, 2, s.Len())
}

func TestFillEventDedup(t *testing.T) {
	a := New(testCuts())
	posz := a.Collection(EventList).Get("posz").H1
	mul := a.Collection(EventList).Get("mul").H1

	for i := 0; i < 5; i++ {
		filled := a.FillEvent(7, 1.5, 30)
		assert.Equal(t, i == 0, filled)
	}
	assert.True(t, a.FillEvent(8, -2, 12))
	assert.Equal(t, int64(2), posz.Entries())
	assert.Equal(t, int64(2), mul.Entries())

	// collision ids are local to a run directory
	a.BeginRun()
	assert.True(t, a.FillEvent(7, 1.5, 30))
	assert.Equal(t, int64(3), posz.Entries())
}

func TestFillSpecies(t *testing.T) {
	a := New(testCuts())
	c := selection.Candidate{
		Species: selection.Deuteron,
		Pt:      1.2, Eta: 0.5, Phi: 1, P: 1.353,
		DCAz: 0.01, DCAxy: -0.02,
		NSigmaTPC: 0.025, NSigmaTOF: 0.225,
		TPCSignal: 120,
	}
	a.Fill(c)
	a.Fill(c)

	deut := a.Collection(DeuteronList)
	for _, h := range deut.Hists {
		switch {
		case h.H1 != nil:
			assert.Equal(t, int64(2), inRange(h.H1), h.Name)
		case h.H2 != nil:
			assert.Equal(t, int64(2), inRange2D(h.H2), h.Name)
		}
	}
	for _, h := range a.Collection(ProtonList).Hists {
		if h.H1 != nil {
			assert.Zero(t, h.H1.Entries(), h.Name)
		}
	}

	a.Fill(selection.Candidate{Species: selection.Lambda, Pt: 2, InvMass: 1.115, TransRadius: 10, DaughDCA: 0.1})
	lam := a.Collection(LambdaList)
	assert.Equal(t, int64(1), lam.Get("invMassLambda").H1.Entries())
	assert.Equal(t, int64(1), lam.Get("transradiusLambda").H1.Entries())

	// None is ignored
	a.Fill(selection.Candidate{Pt: 1})
	assert.Equal(t, int64(2), deut.Get("ptDeuteron").H1.Entries())
}

// Out of range samples are kept in the underflow and overflow
// distributions, never in the edge bins and never dropped.
func TestOutflows(t *testing.T) {
	a := New(testCuts())
	a.Fill(selection.Candidate{Species: selection.Proton, Pt: 7.5, P: 9, Eta: -1.5, TPCSignal: 600})
	a.Fill(selection.Candidate{Species: selection.Proton, Pt: -0.1, P: 0.5})

	pt := a.Collection(ProtonList).Get("ptProton").H1
	assert.Equal(t, int64(2), pt.Entries())
	assert.Equal(t, int64(0), inRange(pt))
	assert.Equal(t, int64(1), pt.Binning.Overflow().Entries())
	assert.Equal(t, int64(1), pt.Binning.Underflow().Entries())
	assert.Zero(t, pt.Binning.Bins[len(pt.Binning.Bins)-1].Entries())
	assert.Zero(t, pt.Binning.Bins[0].Entries())

	eta := a.Collection(ProtonList).Get("etaProton").H1
	assert.Equal(t, int64(1), eta.Binning.Underflow().Entries())

	// x = 0.5 in range, y = 0 in range; x = 9 overflows
	sigP := a.Collection(ProtonList).Get("tpcsignal_p_Proton").H2
	assert.Equal(t, int64(2), sigP.Entries())
	assert.Equal(t, int64(1), inRange2D(sigP))
}

func TestWrite(t *testing.T) {
	a := New(testCuts())
	a.FillEvent(1, 2.5, 40)
	a.Fill(selection.Candidate{Species: selection.Proton, Pt: 1.2, P: 1.35, NSigmaTPC: 0.5})
	a.Fill(selection.Candidate{Species: selection.Proton, Pt: 2.2, P: 2.5, NSigmaTPC: -0.5})

	fname := filepath.Join(t.TempDir(), "out.root")
	require.NoError(t, Write(fname, a.Collections()))

	f, err := groot.Open(fname)
	require.NoError(t, err)
	defer f.Close()

	var keys []string
	for _, k := range f.Keys() {
		keys = append(keys, k.Name())
	}
	assert.Equal(t, []string{DeuteronList, ProtonList, LambdaList, EventList}, keys)

	obj, err := riofs.Dir(f).Get("ProtonList/ptProton")
	require.NoError(t, err)
	h1, ok := obj.(rhist.H1)
	require.True(t, ok, "got %T", obj)
	assert.Equal(t, 2.0, h1.Entries())

	obj, err = riofs.Dir(f).Get("ProtonList/nsigmatpc_p_Proton")
	require.NoError(t, err)
	h2, ok := obj.(rhist.H2)
	require.True(t, ok, "got %T", obj)
	assert.Equal(t, 2.0, h2.Entries())

	obj, err = riofs.Dir(f).Get("EventList/posz")
	require.NoError(t, err)
	assert.Equal(t, 1.0, obj.(rhist.H1).Entries())

	dir, err := riofs.Dir(f).Get("DeuteronList")
	require.NoError(t, err)
	assert.Len(t, dir.(riofs.Directory).Keys(), 16)
}

func TestReadH1D(t *testing.T) {
	a := New(testCuts())
	a.Fill(selection.Candidate{Species: selection.Lambda, Pt: 2, InvMass: 1.115, TransRadius: 10})
	a.Fill(selection.Candidate{Species: selection.Lambda, Pt: 3, InvMass: 1.118, TransRadius: 12})

	fname := filepath.Join(t.TempDir(), "out.root")
	require.NoError(t, Write(fname, a.Collections()))

	h, err := ReadH1D(fname, "LambdaList/invMassLambda")
	require.NoError(t, err)
	assert.Equal(t, 100, h.Len())
	assert.InDelta(t, 2.0, h.SumW(), 1e-9)

	_, err = ReadH1D(fname, "LambdaList/nope")
	assert.Error(t, err)
	_, err = ReadH1D(fname, "LambdaList")
	assert.Error(t, err)
	_, err = ReadH1D(filepath.Join(t.TempDir(), "nope.root"), "LambdaList/invMassLambda")
	assert.Error(t, err)
}

func TestWithQA(t *testing.T) {
	a := New(testCuts(), WithDaughters(), WithQA())
	require.Len(t, a.Collections(), 10)
	for _, name := range []string{RawTrackList, RawLambdaList, RawPosDaughterList, RawNegDaughterList} {
		c := a.Collection(name)
		require.NotNil(t, c, name)
		assert.Equal(t, 25, c.Len(), name)
	}

	trk := dataset.Track{Pt: 1.2, Eta: 0.5, Phi: 1, MLambda: 1.1}
	dbg := dataset.TrackDebug{
		Sign:               1,
		DCAxy:              0.03,
		DCAz:               0.04,
		DecayVtxX:          3,
		DecayVtxY:          4,
		DecayVtxZ:          2,
		TPCNClsCrossedRows: 90,
		TPCNSigmaPr:        10,
		TPCNSigmaPi:        -10,
		TOFNSigmaPr:        20,
	}
	a.FillRaw(RawPosDaughter, &trk, &dbg, 2)

	pos := a.Collection(RawPosDaughterList)
	mean := func(name string) float64 {
		h := pos.Get(name).H1
		require.Equal(t, int64(1), h.Entries(), name)
		return h.XMean()
	}
	assert.InDelta(t, 0.05, mean("dcaPVRawPosDaugh"), 1e-6)
	assert.InDelta(t, 5.0, mean("decayVtxDistRawPosDaugh"), 1e-6)
	// no findable cluster
	assert.InDelta(t, 3.0, mean("tpcCrossedRowsOverFindableRawPosDaugh"), 1e-9)
	assert.InDelta(t, 0.475, mean("nsigmatpcRawPosDaugh"), 1e-9)
	assert.InDelta(t, 0.975, mean("nsigmatofRawPosDaugh"), 1e-9)
	assert.Equal(t, int64(1), pos.Get("nsigmatpc_p_RawPosDaugh").H2.Entries())

	dbg.TPCNClsFindable = 120
	a.FillRaw(RawTrack, &trk, &dbg, 2)
	raw := a.Collection(RawTrackList)
	assert.InDelta(t, 0.75, raw.Get("tpcCrossedRowsOverFindableRawTrack").H1.XMean(), 1e-9)
	assert.InDelta(t, 0.0, raw.Get("nsigmatpcRawTrack").H1.XMean(), 1e-9)
	assert.Zero(t, a.Collection(RawLambdaList).Get("ptRawLambda").H1.Entries())
}

func TestFillRawDisabled(t *testing.T) {
	a := New(testCuts())
	assert.False(t, a.QA())
	assert.Nil(t, a.Collection(RawTrackList))
	assert.NotPanics(t, func() {
		a.FillRaw(RawTrack, &dataset.Track{Pt: 1}, &dataset.TrackDebug{}, 0)
	})
}
