package occlusion

import "sort"

// TrackedSegment is a candidate real-world occlusion observed across frames.
// Created on the first unmatched candidate, updated in place on each match,
// and evicted once it has gone unmatched for a full history window.
type TrackedSegment struct {
	// Identity: stable key into the store, never reused within a run.
	ID int64

	// Current is the latest matched segment, so the tracked window follows
	// slow drift around the ring.
	Current Segment

	// Lifecycle counters
	MatchCount  int   // frames in the active window with a matching candidate, capped at HistorySize
	AgeInWindow int   // frames since first observed, capped at HistorySize
	FirstSeen   int64 // timestep of first observation
	LastSeen    int64 // timestep of most recent match
}

// TrackedSegmentStore holds the tracked segment collection for one engine
// instance, keyed by stable ID. It is private mutable state of a single
// FrameProcessor; no concurrent mutation is permitted. The collection is
// self-pruning: eviction keeps it proportional to the number of distinct
// occlusion-like regions actually seen.
type TrackedSegmentStore struct {
	segments    map[int64]*TrackedSegment
	nextID      int64
	framesSeen  int // frames incorporated, capped at historySize (warm-up bookkeeping)
	historySize int
}

// NewTrackedSegmentStore creates an empty store for the given window length.
func NewTrackedSegmentStore(historySize int) *TrackedSegmentStore {
	return &TrackedSegmentStore{
		segments:    make(map[int64]*TrackedSegment),
		nextID:      1,
		historySize: historySize,
	}
}

// Reset reinitializes the store for a new input source.
func (s *TrackedSegmentStore) Reset() {
	s.segments = make(map[int64]*TrackedSegment)
	s.nextID = 1
	s.framesSeen = 0
}

// Len returns the number of tracked segments currently alive.
func (s *TrackedSegmentStore) Len() int {
	return len(s.segments)
}

// WindowFill returns how much of the history window has been seen so far,
// capped at the window length.
func (s *TrackedSegmentStore) WindowFill() int {
	return s.framesSeen
}

// Get returns a tracked segment by ID, or nil if it is not (or no longer)
// in the store.
func (s *TrackedSegmentStore) Get(id int64) *TrackedSegment {
	return s.segments[id]
}

// Active returns the live tracked segments ordered by ID. The copy keeps
// callers from depending on map iteration order.
func (s *TrackedSegmentStore) Active() []*TrackedSegment {
	out := make([]*TrackedSegment, 0, len(s.segments))
	for _, id := range s.orderedIDs() {
		out = append(out, s.segments[id])
	}
	return out
}

func (s *TrackedSegmentStore) orderedIDs() []int64 {
	ids := make([]int64, 0, len(s.segments))
	for id := range s.segments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *TrackedSegmentStore) insert(seg Segment, timestep int64) *TrackedSegment {
	ts := &TrackedSegment{
		ID:         s.nextID,
		Current:    seg,
		MatchCount: 1,
		FirstSeen:  timestep,
		LastSeen:   timestep,
	}
	s.nextID++
	s.segments[ts.ID] = ts
	return ts
}

// TemporalMatcher matches each frame's candidate segments against the store,
// updates persistence bookkeeping, and ages out stale entries.
type TemporalMatcher struct {
	store          *TrackedSegmentStore
	driftTolerance int
	historySize    int
}

// NewTemporalMatcher creates a matcher over the given store.
func NewTemporalMatcher(store *TrackedSegmentStore, driftToleranceBeams int) *TemporalMatcher {
	return &TemporalMatcher{
		store:          store,
		driftTolerance: driftToleranceBeams,
		historySize:    store.historySize,
	}
}

// candidatePair is one admissible candidate/tracked pairing considered by the
// greedy assignment.
type candidatePair struct {
	dist       int
	matchCount int
	trackedID  int64
	candIdx    int
}

// Match incorporates one frame's candidates into the store and returns, per
// candidate (in input order), the tracked segment it now belongs to.
//
// A candidate matches a tracked segment when the circular distance between
// their center beams is within the drift tolerance. Assignment is greedy
// nearest-first; equally near tracked segments are broken in favour of the
// higher existing match count, preferring stability continuity over recency.
// Each side matches at most once per frame. Unmatched candidates open new
// tracked segments; tracked segments unmatched for a full history window are
// evicted.
func (m *TemporalMatcher) Match(candidates []Segment, timestep int64) []*TrackedSegment {
	s := m.store
	if s.framesSeen < s.historySize {
		s.framesSeen++
	}

	var pairs []candidatePair
	trackedIDs := s.orderedIDs()
	for ci, cand := range candidates {
		for _, id := range trackedIDs {
			tr := s.segments[id]
			d := CircularDistance(cand.CenterBeam, tr.Current.CenterBeam)
			if d <= m.driftTolerance {
				pairs = append(pairs, candidatePair{dist: d, matchCount: tr.MatchCount, trackedID: id, candIdx: ci})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		if a.matchCount != b.matchCount {
			return a.matchCount > b.matchCount
		}
		if a.trackedID != b.trackedID {
			return a.trackedID < b.trackedID
		}
		return a.candIdx < b.candIdx
	})

	assigned := make([]*TrackedSegment, len(candidates))
	trackedUsed := make(map[int64]bool, len(trackedIDs))
	for _, p := range pairs {
		if assigned[p.candIdx] != nil || trackedUsed[p.trackedID] {
			continue
		}
		tr := s.segments[p.trackedID]
		tr.Current = candidates[p.candIdx]
		if tr.MatchCount < m.historySize {
			tr.MatchCount++
		}
		tr.LastSeen = timestep
		assigned[p.candIdx] = tr
		trackedUsed[p.trackedID] = true
	}

	for ci := range candidates {
		if assigned[ci] == nil {
			assigned[ci] = s.insert(candidates[ci], timestep)
		}
	}

	// Age every survivor, then drop lineages unseen for a full window.
	for id, tr := range s.segments {
		if tr.AgeInWindow < m.historySize {
			tr.AgeInWindow++
		}
		if timestep-tr.LastSeen >= int64(m.historySize) {
			delete(s.segments, id)
		}
	}

	return assigned
}
