package analysis

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rbase"

	"github.com/decibelcooper/femtoplot/config"
	"github.com/decibelcooper/femtoplot/dataset"
	"github.com/decibelcooper/femtoplot/hists"
	"github.com/decibelcooper/femtoplot/metrics"
	"github.com/decibelcooper/femtoplot/selection"
)

func testCuts() *config.Cuts {
	return &config.Cuts{
		PtRangeMin: 0, PtRangeMax: 5, PtBins: 100,
		UsePid:  true,
		PosZMax: 10, EtaMax: 0.8, DCAzMax: 0.1, DCAxyMax: 0.1,

		TPCClustersMin:                80,
		TPCCrossedRowsMin:             70,
		TPCCrossedRowsOverClustersMin: 0.83,
		ITSClustersMin:                4,
		ITSClustersIBMin:              1,

		NSigmaTPCDeuteronMax:  3,
		NSigmaTPCProtonMax:    3,
		NSigmaTPCTOFProtonMax: 3,
		PPIDThresholdProton:   0.75,

		PtDeuteronMin: 0.5, PtDeuteronMax: 1.4,
		PtProtonMin: 0.5, PtProtonMax: 4.05,
		PtLambdaMin: 0.3, PtLambdaMax: 6,

		DaughDCAMax:         1.5,
		TransRadiusMin:      0.2,
		TransRadiusMax:      100,
		DaughTPCClustersMin: 70,
	}
}

func goodDebug() dataset.TrackDebug {
	return dataset.TrackDebug{
		Sign:               1,
		DaughDCA:           0.1,
		TransRadius:        10,
		ITSNCls:            6,
		ITSNClsInnerBarrel: 3,
		TPCNClsFound:       100,
		TPCNClsFindable:    120,
		TPCNClsCrossedRows: 110,
		TPCNSigmaPr:        10,
		TPCNSigmaPi:        -10,
		TPCSignal:          80,
	}
}

// testRun holds, for collision 0: a track identified as both deuteron
// and proton, a lambda with its two daughters and a track failing the
// quality gate. Collision 1 fails the vertex cut and one track points to
// an unknown collision.
func testRun(name string) *dataset.Run {
	cols := []dataset.Collision{{PosZ: 1.5, Mult: 42}, {PosZ: -12, Mult: 7}}
	tracks := []dataset.Track{
		{Pt: 1.2, Eta: 0.5, Phi: 1, CollisionID: 0, Type: dataset.TypeTrack},
		{Pt: 2.0, Eta: 0.1, Phi: 2, CollisionID: 0, Type: dataset.TypeV0, MLambda: 1.115},
		{Pt: 1.5, Eta: 0.2, Phi: 2.1, CollisionID: 0, Type: dataset.TypeDaughter},
		{Pt: 0.4, Eta: -0.2, Phi: 1.9, CollisionID: 0, Type: dataset.TypeDaughter},
		{Pt: 1.2, Eta: 0.5, Phi: 1, CollisionID: 0, Type: dataset.TypeTrack},
		{Pt: 1.2, Eta: 0.5, Phi: 1, CollisionID: 1, Type: dataset.TypeTrack},
		{Pt: 1.2, Eta: 0.5, Phi: 1, CollisionID: 9, Type: dataset.TypeTrack},
	}
	debug := make([]dataset.TrackDebug, len(tracks))
	for i := range debug {
		debug[i] = goodDebug()
	}
	debug[0].TPCNSigmaPr = 0
	debug[4].TPCNClsShared = 1
	return dataset.NewRun(name, cols, tracks, debug)
}

type memSource struct {
	names []string
	runs  map[string]*dataset.Run
}

func (s memSource) Dirs() []string { return s.names }

func (s memSource) Load(name string) (*dataset.Run, error) {
	if r, ok := s.runs[name]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s", dataset.ErrMissingTable, dataset.TreeDebugParts)
}

func entries(a *hists.Aggregator, coll, name string) int64 {
	return a.Collection(coll).Get(name).H1.Entries()
}

func TestProcessRun(t *testing.T) {
	agg := hists.New(testCuts(), hists.WithDaughters())
	p := New(selection.New(testCuts()), agg)

	sum := p.ProcessRun(testRun("DF_1"))
	assert.Equal(t, RunSummary{
		Dir:        "DF_1",
		Records:    7,
		Skipped:    1,
		Collisions: 1,
		Links:      dataset.LinkStats{Linked: 1},
	}, sum)

	assert.Equal(t, int64(1), entries(agg, hists.EventList, "posz"))
	assert.Equal(t, int64(1), entries(agg, hists.EventList, "mul"))
	assert.Equal(t, int64(1), entries(agg, hists.DeuteronList, "ptDeuteron"))
	assert.Equal(t, int64(1), entries(agg, hists.ProtonList, "ptProton"))
	assert.Equal(t, int64(1), entries(agg, hists.LambdaList, "invMassLambda"))
	assert.Equal(t, int64(1), entries(agg, hists.PosDaughterList, "ptPosDaugh"))
	assert.Equal(t, int64(1), entries(agg, hists.NegDaughterList, "ptNegDaugh"))
}

// Each accepted collision fills the event histograms once per directory,
// however many tracks point to it.
func TestEventDedup(t *testing.T) {
	cols := []dataset.Collision{{PosZ: 3, Mult: 10}, {PosZ: -4, Mult: 20}}
	var tracks []dataset.Track
	for i := 0; i < 50; i++ {
		tracks = append(tracks, dataset.Track{Pt: 0.1, CollisionID: int32(i % 2), Type: dataset.TypeTrack})
	}
	debug := make([]dataset.TrackDebug, len(tracks))

	agg := hists.New(testCuts())
	p := New(selection.New(testCuts()), agg)

	src := memSource{
		names: []string{"DF_1", "DF_2"},
		runs: map[string]*dataset.Run{
			"DF_1": dataset.NewRun("DF_1", cols, tracks, debug),
			"DF_2": dataset.NewRun("DF_2", cols, tracks, debug),
		},
	}
	rep := p.Process(src)
	require.Len(t, rep.Runs, 2)
	assert.Equal(t, 2, rep.Runs[0].Collisions)
	assert.Equal(t, 2, rep.Runs[1].Collisions)
	assert.Equal(t, 100, rep.Records())

	assert.Equal(t, int64(4), entries(agg, hists.EventList, "posz"))
	assert.Zero(t, entries(agg, hists.ProtonList, "ptProton"))
}

func TestMissingDebugRows(t *testing.T) {
	run := testRun("DF_1")
	run.Debug = run.Debug[:1]

	agg := hists.New(testCuts())
	sum := New(selection.New(testCuts()), agg).ProcessRun(run)
	assert.Equal(t, 6, sum.Skipped)
	assert.Equal(t, int64(1), entries(agg, hists.ProtonList, "ptProton"))
	assert.Zero(t, entries(agg, hists.LambdaList, "ptLambda"))
}

func TestSkipDirectory(t *testing.T) {
	m := metrics.New()
	agg := hists.New(testCuts())
	p := New(selection.New(testCuts(), selection.WithObserver(m)), agg, WithMetrics(m))

	src := memSource{
		names: []string{"DF_empty", "DF_1"},
		runs:  map[string]*dataset.Run{"DF_1": testRun("DF_1")},
	}
	rep := p.Process(src)

	assert.Equal(t, 2, rep.Dirs())
	require.Len(t, rep.Diagnostics, 1)
	assert.Equal(t, "DF_empty", rep.Diagnostics[0].Dir)
	assert.ErrorIs(t, rep.Diagnostics[0], dataset.ErrMissingTable)
	require.Len(t, rep.Runs, 1)
	assert.Equal(t, dataset.LinkStats{Linked: 1}, rep.Links())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Directories.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Directories.WithLabelValues("processed")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.Records))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Collisions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Daughters.WithLabelValues("linked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejects.WithLabelValues(selection.StageEvent, selection.CutPosZ)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejects.WithLabelValues(selection.StageTrack, selection.CutSharedClusters)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Accepts.WithLabelValues("Lambda")))
}

func TestEmptySource(t *testing.T) {
	agg := hists.New(testCuts())
	rep := New(selection.New(testCuts()), agg).Process(memSource{})
	assert.Zero(t, rep.Dirs())
	assert.Zero(t, entries(agg, hists.EventList, "posz"))
}

func TestProcessFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "ao2d.root")

	f, err := groot.Create(fname)
	require.NoError(t, err)
	require.NoError(t, dataset.WriteRun(f, testRun("DF_1")))
	require.NoError(t, f.Put("parentFiles", rbase.NewObjString("AO2D_parent.root")))
	require.NoError(t, dataset.WriteRun(f, testRun("DF_2")))
	require.NoError(t, f.Close())

	in, err := dataset.Open(fname)
	require.NoError(t, err)
	defer in.Close()

	agg := hists.New(testCuts())
	rep := New(selection.New(testCuts()), agg).Process(in)

	assert.Equal(t, 3, rep.Dirs())
	require.Len(t, rep.Diagnostics, 1)
	assert.Equal(t, "parentFiles", rep.Diagnostics[0].Dir)
	assert.True(t, errors.Is(rep.Diagnostics[0], dataset.ErrNotDirectory))

	assert.Equal(t, int64(2), entries(agg, hists.EventList, "posz"))
	assert.Equal(t, int64(2), entries(agg, hists.ProtonList, "ptProton"))
	assert.Equal(t, int64(2), entries(agg, hists.LambdaList, "ptLambda"))

	out := filepath.Join(t.TempDir(), "out.root")
	require.NoError(t, hists.Write(out, agg.Collections()))
}

// QA collections see every record behind the event gate, before any
// species cut.
func TestProcessRunQA(t *testing.T) {
	agg := hists.New(testCuts(), hists.WithQA())
	New(selection.New(testCuts()), agg).ProcessRun(testRun("DF_1"))

	assert.Equal(t, int64(2), entries(agg, hists.RawTrackList, "ptRawTrack"))
	assert.Equal(t, int64(1), entries(agg, hists.RawLambdaList, "ptRawLambda"))
	assert.Equal(t, int64(1), entries(agg, hists.RawPosDaughterList, "ptRawPosDaugh"))
	assert.Equal(t, int64(1), entries(agg, hists.RawNegDaughterList, "ptRawNegDaugh"))
	assert.Equal(t, int64(1), entries(agg, hists.RawTrackList, "tpcClustersSharedRawTrack"))
	assert.Equal(t, int64(1), entries(agg, hists.ProtonList, "ptProton"))
}
