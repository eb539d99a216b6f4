// Package analysis drives the post-processing pass: it walks the run
// directories of a dataset, classifies every track record and fills the
// histogram aggregator.
package analysis

import (
	"fmt"

	"github.com/decibelcooper/femtoplot/dataset"
	"github.com/decibelcooper/femtoplot/hists"
	"github.com/decibelcooper/femtoplot/metrics"
	"github.com/decibelcooper/femtoplot/selection"
)

// Source lists and loads run directories. *dataset.File implements it.
type Source interface {
	Dirs() []string
	Load(name string) (*dataset.Run, error)
}

// Diagnostic records a run directory that was skipped.
type Diagnostic struct {
	Dir string
	Err error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("skipped %q: %v", d.Dir, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// RunSummary is what one processed directory contributed.
type RunSummary struct {
	Dir        string
	Records    int
	Skipped    int // records without a debug row or a known collision
	Collisions int
	Links      dataset.LinkStats
}

// Report summarizes a pass over a Source.
type Report struct {
	Runs        []RunSummary
	Diagnostics []Diagnostic
}

// Dirs is the number of directories seen, processed or not.
func (r *Report) Dirs() int { return len(r.Runs) + len(r.Diagnostics) }

// Records is the number of track records read over all directories.
func (r *Report) Records() int {
	n := 0
	for _, s := range r.Runs {
		n += s.Records
	}
	return n
}

// Links sums the daughter link outcomes over all directories.
func (r *Report) Links() dataset.LinkStats {
	var l dataset.LinkStats
	for _, s := range r.Runs {
		l.Linked += s.Links.Linked
		l.Broken += s.Links.Broken
	}
	return l
}

// Processor wires a selection engine to a histogram aggregator.
type Processor struct {
	eng *selection.Engine
	agg *hists.Aggregator
	m   *metrics.CutFlow
}

// Option configures a Processor.
type Option func(*Processor)

// WithMetrics counts records, collisions, directories and daughter links
// on m. The engine reports its cut flow separately, through
// selection.WithObserver.
func WithMetrics(m *metrics.CutFlow) Option {
	return func(p *Processor) { p.m = m }
}

func New(eng *selection.Engine, agg *hists.Aggregator, opts ...Option) *Processor {
	p := &Processor{eng: eng, agg: agg}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs over every directory of src in order. A directory that
// cannot be loaded is skipped with a diagnostic; Process never fails.
func (p *Processor) Process(src Source) Report {
	var rep Report
	for _, name := range src.Dirs() {
		run, err := src.Load(name)
		if err != nil {
			rep.Diagnostics = append(rep.Diagnostics, Diagnostic{Dir: name, Err: err})
			p.dir("skipped")
			continue
		}
		rep.Runs = append(rep.Runs, p.ProcessRun(run))
		p.dir("processed")
	}
	return rep
}

// ProcessRun classifies the tracks of one directory in source order.
func (p *Processor) ProcessRun(run *dataset.Run) RunSummary {
	sum := RunSummary{
		Dir:     run.Name,
		Records: len(run.Tracks),
		Links:   run.LinkStats(),
	}
	p.agg.BeginRun()

	for i := range run.Tracks {
		trk := &run.Tracks[i]
		if i >= len(run.Debug) {
			sum.Skipped++
			continue
		}
		col, ok := run.Collision(trk.CollisionID)
		if !ok {
			sum.Skipped++
			continue
		}
		if !p.eng.Event(col) {
			continue
		}
		if p.agg.FillEvent(trk.CollisionID, float64(col.PosZ), float64(col.Mult)) {
			sum.Collisions++
		}

		in := selection.Input{Track: trk, Debug: &run.Debug[i]}
		posZ := float64(col.PosZ)
		switch trk.Type {
		case dataset.TypeTrack:
			p.agg.FillRaw(hists.RawTrack, trk, in.Debug, posZ)
		case dataset.TypeV0:
			p.agg.FillRaw(hists.RawLambda, trk, in.Debug, posZ)
			if l, ok := run.Link(i); ok && p.agg.QA() && l.Neg < len(run.Debug) {
				p.agg.FillRaw(hists.RawPosDaughter, &run.Tracks[l.Pos], &run.Debug[l.Pos], posZ)
				p.agg.FillRaw(hists.RawNegDaughter, &run.Tracks[l.Neg], &run.Debug[l.Neg], posZ)
			}
			if pos, neg, ok := run.Daughters(i); ok {
				in.Pos, in.Neg = &pos, &neg
			}
		}
		for _, c := range p.eng.Classify(in) {
			p.agg.Fill(c)
		}
	}

	if p.m != nil {
		p.m.Records.Add(float64(sum.Records))
		p.m.Collisions.Add(float64(sum.Collisions))
		p.m.Daughters.WithLabelValues("linked").Add(float64(sum.Links.Linked))
		p.m.Daughters.WithLabelValues("broken").Add(float64(sum.Links.Broken))
	}
	return sum
}

func (p *Processor) dir(outcome string) {
	if p.m != nil {
		p.m.Directories.WithLabelValues(outcome).Inc()
	}
}
