package hists

import (
	"fmt"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hbook/rootcnv"
)

// ReadH1D loads the 1D histogram stored under key ("ProtonList/ptProton")
// in a file written by Write.
func ReadH1D(path, key string) (*hbook.H1D, error) {
	f, err := groot.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", path, err)
	}
	defer f.Close()

	obj, err := riofs.Dir(f).Get(key)
	if err != nil {
		return nil, fmt.Errorf("could not get %q from %q: %w", key, path, err)
	}
	h, ok := obj.(rhist.H1)
	if !ok {
		return nil, fmt.Errorf("%q in %q is a %s, not a 1D histogram", key, path, obj.Class())
	}
	return rootcnv.H1D(h), nil
}
