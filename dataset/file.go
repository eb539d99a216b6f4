package dataset

import (
	"errors"
	"fmt"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
)

// Tree names written by the femto-dream producer.
const (
	TreeCollisions = "O2femtodreamcols"
	TreeParts      = "O2femtodreamparts"
	TreeDebugParts = "O2femtodebugparts"
)

var (
	ErrNotDirectory = errors.New("not a directory")
	ErrMissingTable = errors.New("missing table")
)

// File is a femto-dream AO2D ROOT file.
type File struct {
	f *riofs.File
}

// Open opens the ROOT file at path.
func Open(path string) (*File, error) {
	f, err := groot.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", path, err)
	}
	return &File{f: f}, nil
}

func (f *File) Close() error {
	return f.f.Close()
}

// Dirs returns the names of the top-level keys, in file order. Keys stored
// with several cycles are listed once.
func (f *File) Dirs() []string {
	var (
		names []string
		seen  = make(map[string]bool)
	)
	for _, k := range f.f.Keys() {
		if seen[k.Name()] {
			continue
		}
		seen[k.Name()] = true
		names = append(names, k.Name())
	}
	return names
}

// Load reads the collision, track and debug tables of the named run
// directory.
func (f *File) Load(name string) (*Run, error) {
	obj, err := f.f.Get(name)
	if err != nil {
		return nil, fmt.Errorf("could not get %q: %w", name, err)
	}
	dir, ok := obj.(riofs.Directory)
	if !ok {
		return nil, fmt.Errorf("%w: %q is a %s", ErrNotDirectory, name, obj.Class())
	}

	tcols, err := tree(dir, TreeCollisions)
	if err != nil {
		return nil, err
	}
	tparts, err := tree(dir, TreeParts)
	if err != nil {
		return nil, err
	}
	tdebug, err := tree(dir, TreeDebugParts)
	if err != nil {
		return nil, err
	}

	cols, err := readCollisions(tcols)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", TreeCollisions, err)
	}
	tracks, err := readTracks(tparts)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", TreeParts, err)
	}
	debug, err := readDebug(tdebug)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", TreeDebugParts, err)
	}

	return NewRun(name, cols, tracks, debug), nil
}

func tree(dir riofs.Directory, name string) (rtree.Tree, error) {
	obj, err := dir.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingTable, name, err)
	}
	t, ok := obj.(rtree.Tree)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s", ErrMissingTable, name, obj.Class())
	}
	return t, nil
}

// scan calls fn once per entry, after rvars have been filled.
func scan(t rtree.Tree, rvars []rtree.ReadVar, fn func()) error {
	r, err := rtree.NewReader(t, rvars)
	if err != nil {
		return err
	}
	defer r.Close()

	return r.Read(func(rtree.RCtx) error {
		fn()
		return nil
	})
}

func collisionVars(c *Collision) []rtree.ReadVar {
	return []rtree.ReadVar{
		{Name: "fPosZ", Value: &c.PosZ},
		{Name: "fMultV0M", Value: &c.Mult},
	}
}

func trackVars(t *Track) []rtree.ReadVar {
	return []rtree.ReadVar{
		{Name: "fPt", Value: &t.Pt},
		{Name: "fEta", Value: &t.Eta},
		{Name: "fPhi", Value: &t.Phi},
		{Name: "fIndexFemtoDreamCollisions", Value: &t.CollisionID},
		{Name: "fPartType", Value: &t.Type},
		{Name: "fMLambda", Value: &t.MLambda},
		{Name: "fMAntiLambda", Value: &t.MAntiLambda},
	}
}

func debugVars(d *TrackDebug) []rtree.ReadVar {
	return []rtree.ReadVar{
		{Name: "fSign", Value: &d.Sign},
		{Name: "fDcaZ", Value: &d.DCAz},
		{Name: "fDcaXY", Value: &d.DCAxy},
		{Name: "fDaughDCA", Value: &d.DaughDCA},
		{Name: "fDecayVtxX", Value: &d.DecayVtxX},
		{Name: "fDecayVtxY", Value: &d.DecayVtxY},
		{Name: "fDecayVtxZ", Value: &d.DecayVtxZ},
		{Name: "fTransRadius", Value: &d.TransRadius},
		{Name: "fMKaon", Value: &d.MKaon},
		{Name: "fITSNCls", Value: &d.ITSNCls},
		{Name: "fITSNClsInnerBarrel", Value: &d.ITSNClsInnerBarrel},
		{Name: "fTPCNClsFound", Value: &d.TPCNClsFound},
		{Name: "fTPCNClsFindable", Value: &d.TPCNClsFindable},
		{Name: "fTPCNClsShared", Value: &d.TPCNClsShared},
		{Name: "fTPCNClsCrossedRows", Value: &d.TPCNClsCrossedRows},
		{Name: "fTPCNSigmaStoreEl", Value: &d.TPCNSigmaEl},
		{Name: "fTPCNSigmaStorePi", Value: &d.TPCNSigmaPi},
		{Name: "fTPCNSigmaStoreKa", Value: &d.TPCNSigmaKa},
		{Name: "fTPCNSigmaStorePr", Value: &d.TPCNSigmaPr},
		{Name: "fTPCNSigmaStoreDe", Value: &d.TPCNSigmaDe},
		{Name: "fTOFNSigmaStorePr", Value: &d.TOFNSigmaPr},
		{Name: "fTOFNSigmaStoreDe", Value: &d.TOFNSigmaDe},
		{Name: "fTPCSignal", Value: &d.TPCSignal},
	}
}

func readCollisions(t rtree.Tree) ([]Collision, error) {
	var c Collision
	cols := make([]Collision, 0, t.Entries())
	err := scan(t, collisionVars(&c), func() { cols = append(cols, c) })
	return cols, err
}

func readTracks(t rtree.Tree) ([]Track, error) {
	var trk Track
	tracks := make([]Track, 0, t.Entries())
	err := scan(t, trackVars(&trk), func() { tracks = append(tracks, trk) })
	return tracks, err
}

func readDebug(t rtree.Tree) ([]TrackDebug, error) {
	var d TrackDebug
	debug := make([]TrackDebug, 0, t.Entries())
	err := scan(t, debugVars(&d), func() { debug = append(debug, d) })
	return debug, err
}
