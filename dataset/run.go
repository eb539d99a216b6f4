package dataset

// DaughterLink names the rows of the positive and negative daughters of a
// V0 candidate.
type DaughterLink struct {
	Pos, Neg int
}

// LinkStats counts how many V0 candidates of a run got a daughter link.
type LinkStats struct {
	Linked int
	Broken int
}

// Run is one run directory loaded in memory.
type Run struct {
	Name       string
	Collisions []Collision
	Tracks     []Track
	Debug      []TrackDebug

	links map[int]DaughterLink
	stats LinkStats
}

// NewRun assembles a run from its tables and builds the daughter relation.
func NewRun(name string, cols []Collision, tracks []Track, debug []TrackDebug) *Run {
	r := &Run{
		Name:       name,
		Collisions: cols,
		Tracks:     tracks,
		Debug:      debug,
	}
	r.links, r.stats = LinkDaughters(tracks)
	return r
}

// Collision returns the collision referenced by a track.
func (r *Run) Collision(id int32) (Collision, bool) {
	if id < 0 || int(id) >= len(r.Collisions) {
		return Collision{}, false
	}
	return r.Collisions[id], true
}

// Link returns the daughter rows of the candidate at row i.
func (r *Run) Link(i int) (DaughterLink, bool) {
	l, ok := r.links[i]
	return l, ok
}

// LinkStats reports the outcome of daughter linking.
func (r *Run) LinkStats() LinkStats { return r.stats }

// Daughters returns the positive and negative daughters of the candidate at
// row i. The positive daughter carries the TPC proton significance and the
// negative one the TPC pion significance.
func (r *Run) Daughters(i int) (pos, neg Daughter, ok bool) {
	l, ok := r.links[i]
	if !ok || l.Pos >= len(r.Debug) || l.Neg >= len(r.Debug) {
		return pos, neg, false
	}
	pt, pd := &r.Tracks[l.Pos], &r.Debug[l.Pos]
	nt, nd := &r.Tracks[l.Neg], &r.Debug[l.Neg]
	pos = Daughter{Pt: pt.Pt, Phi: pt.Phi, Eta: pt.Eta, TPCNCls: pd.TPCNClsFound, NSigmaTPC: pd.TPCNSigmaPr}
	neg = Daughter{Pt: nt.Pt, Phi: nt.Phi, Eta: nt.Eta, TPCNCls: nd.TPCNClsFound, NSigmaTPC: nd.TPCNSigmaPi}
	return pos, neg, true
}

// LinkDaughters builds the candidate to daughters relation. The producer
// writes a candidate's daughters right after it (positive at +1, negative
// at +2); the pair is only accepted when both rows exist, are daughters and
// belong to the candidate's collision.
func LinkDaughters(tracks []Track) (map[int]DaughterLink, LinkStats) {
	var (
		links = make(map[int]DaughterLink)
		stats LinkStats
	)
	for i := range tracks {
		if tracks[i].Type != TypeV0 {
			continue
		}
		pos, neg := i+1, i+2
		if neg >= len(tracks) ||
			tracks[pos].Type != TypeDaughter || tracks[neg].Type != TypeDaughter ||
			tracks[pos].CollisionID != tracks[i].CollisionID ||
			tracks[neg].CollisionID != tracks[i].CollisionID {
			stats.Broken++
			continue
		}
		links[i] = DaughterLink{Pos: pos, Neg: neg}
		stats.Linked++
	}
	return links, stats
}
