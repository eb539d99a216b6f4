package hists

import (
	"fmt"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/root"
)

// Write stores colls in a new ROOT file, one directory per collection.
// 1D histograms become TH1F, 2D histograms TH2F.
func Write(path string, colls []*Collection) error {
	f, err := groot.Create(path)
	if err != nil {
		return fmt.Errorf("could not create output file %q: %w", path, err)
	}
	defer f.Close()

	for _, c := range colls {
		dir, err := riofs.Dir(f).Mkdir(c.Name)
		if err != nil {
			return fmt.Errorf("could not create directory %q: %w", c.Name, err)
		}
		for _, h := range c.Hists {
			var obj root.Object
			switch {
			case h.H1 != nil:
				obj = rhist.NewH1FFrom(h.H1)
			case h.H2 != nil:
				obj = rhist.NewH2FFrom(h.H2)
			default:
				continue
			}
			if err := dir.Put(h.Name, obj); err != nil {
				return fmt.Errorf("could not write %s/%s: %w", c.Name, h.Name, err)
			}
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close output file %q: %w", path, err)
	}
	return nil
}
