package dataset

import (
	"fmt"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
)

// Create writes runs into a new ROOT file at path, one directory per run,
// using the same tree layout Load expects.
func Create(path string, runs ...*Run) error {
	f, err := groot.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", path, err)
	}
	defer f.Close()

	for _, run := range runs {
		if err := WriteRun(f, run); err != nil {
			return err
		}
	}
	return f.Close()
}

// WriteRun writes the tables of run into a new sub-directory of dir.
func WriteRun(dir riofs.Directory, run *Run) error {
	sub, err := riofs.Dir(dir).Mkdir(run.Name)
	if err != nil {
		return fmt.Errorf("could not create directory %q: %w", run.Name, err)
	}

	var c Collision
	err = writeTree(sub, TreeCollisions, collisionVars(&c), len(run.Collisions), func(i int) {
		c = run.Collisions[i]
	})
	if err != nil {
		return err
	}

	var t Track
	err = writeTree(sub, TreeParts, trackVars(&t), len(run.Tracks), func(i int) {
		t = run.Tracks[i]
	})
	if err != nil {
		return err
	}

	var d TrackDebug
	return writeTree(sub, TreeDebugParts, debugVars(&d), len(run.Debug), func(i int) {
		d = run.Debug[i]
	})
}

func writeTree(dir riofs.Directory, name string, rvars []rtree.ReadVar, n int, load func(i int)) error {
	wvars := make([]rtree.WriteVar, len(rvars))
	for i, rv := range rvars {
		wvars[i] = rtree.WriteVar{Name: rv.Name, Value: rv.Value}
	}

	w, err := rtree.NewWriter(dir, name, wvars)
	if err != nil {
		return fmt.Errorf("could not create tree %s: %w", name, err)
	}
	for i := 0; i < n; i++ {
		load(i)
		if _, err := w.Write(); err != nil {
			_ = w.Close()
			return fmt.Errorf("could not write entry %d of %s: %w", i, name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("could not close tree %s: %w", name, err)
	}
	return nil
}
