package occlusion

import "sort"

// Segment is a contiguous circular run of blocked beams within one frame,
// after gap merging. StartBeam and EndBeam are inclusive; a segment whose
// EndBeam is numerically below its StartBeam crosses the 359 -> 0 boundary.
type Segment struct {
	StartBeam  int
	EndBeam    int
	WidthBeams int
	CenterBeam int
	Wraps      bool
}

// beamRun is a blocked run in rotated coordinates during extraction. End may
// exceed BeamCount-1 when the run spans the rotation origin after a wrap
// merge; widths stay correct because offsets are contiguous.
type beamRun struct {
	start, end int
}

// ExtractSegments turns one frame's blocked/clear flags into the frame's
// candidate segments. The 360 beams are walked circularly exactly once:
// maximal blocked runs are collected, runs separated by a clear gap of at
// most gapMergeBeams are merged (transitively, and across the 0/359
// boundary), and anything narrower than minSegmentBeams is discarded.
// The result is ordered by ascending StartBeam. Pure function of its inputs.
func ExtractSegments(frame *ScanFrame, minSegmentBeams, gapMergeBeams int) []Segment {
	blocked := 0
	for i := 0; i < BeamCount; i++ {
		if frame.Blocked(i) {
			blocked++
		}
	}
	if blocked == 0 {
		return nil
	}
	if blocked == BeamCount {
		// Fully blocked frame: exactly one maximal segment.
		seg := Segment{StartBeam: 0, EndBeam: BeamCount - 1, WidthBeams: BeamCount}
		seg.CenterBeam = circularMidpoint(seg.StartBeam, seg.WidthBeams)
		if seg.WidthBeams >= minSegmentBeams {
			return []Segment{seg}
		}
		return nil
	}

	// Rotate so the walk starts on a clear beam; runs then never straddle
	// the scan buffer ends and wraparound reduces to one extra merge check.
	origin := 0
	for i := 0; i < BeamCount; i++ {
		if !frame.Blocked(i) {
			origin = i
			break
		}
	}

	var runs []beamRun
	for off := 0; off < BeamCount; off++ {
		if !frame.Blocked((origin + off) % BeamCount) {
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].end == off-1 {
			runs[n-1].end = off
		} else {
			runs = append(runs, beamRun{start: off, end: off})
		}
	}

	// Transitive gap merge between neighbouring runs.
	merged := []beamRun{runs[0]}
	for _, r := range runs[1:] {
		last := &merged[len(merged)-1]
		if r.start-last.end-1 <= gapMergeBeams {
			last.end = r.end
		} else {
			merged = append(merged, r)
		}
	}

	// The remaining gap runs through the rotation origin; it can itself wrap.
	if len(merged) > 1 {
		first, last := merged[0], merged[len(merged)-1]
		if (BeamCount-1-last.end)+first.start <= gapMergeBeams {
			merged[len(merged)-1] = beamRun{start: last.start, end: first.end + BeamCount}
			merged = merged[1:]
		}
	}

	var segs []Segment
	for _, r := range merged {
		width := r.end - r.start + 1
		if width < minSegmentBeams {
			continue
		}
		start := (origin + r.start) % BeamCount
		end := (origin + r.end) % BeamCount
		segs = append(segs, Segment{
			StartBeam:  start,
			EndBeam:    end,
			WidthBeams: width,
			CenterBeam: circularMidpoint(start, width),
			Wraps:      Wraps(start, end),
		})
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].StartBeam < segs[j].StartBeam })
	return segs
}
