package occlusion

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func beams(start, end int) []int {
	var out []int
	for b := start; ; b = (b + 1) % BeamCount {
		out = append(out, b)
		if b == end {
			return out
		}
	}
}

func TestExtractSegmentsEmpty(t *testing.T) {
	frame := testFrame(t, 1)
	if segs := ExtractSegments(frame, 1, 0); len(segs) != 0 {
		t.Errorf("expected no segments for a clear frame, got %v", segs)
	}
}

func TestExtractSegmentsFullyBlocked(t *testing.T) {
	frame := testFrame(t, 1, beams(0, 359)...)
	segs := ExtractSegments(frame, 5, 2)
	want := []Segment{{StartBeam: 0, EndBeam: 359, WidthBeams: 360, CenterBeam: 179, Wraps: false}}
	if diff := cmp.Diff(want, segs); diff != "" {
		t.Errorf("fully blocked frame mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractSegmentsSimpleRun(t *testing.T) {
	frame := testFrame(t, 1, beams(40, 52)...)
	segs := ExtractSegments(frame, 5, 2)
	want := []Segment{{StartBeam: 40, EndBeam: 52, WidthBeams: 13, CenterBeam: 46, Wraps: false}}
	if diff := cmp.Diff(want, segs); diff != "" {
		t.Errorf("single run mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractSegmentsWrapAround(t *testing.T) {
	// Beams 358,359,0,1 blocked: one wrapping segment, not two.
	frame := testFrame(t, 1, 358, 359, 0, 1)
	segs := ExtractSegments(frame, 2, 0)
	want := []Segment{{StartBeam: 358, EndBeam: 1, WidthBeams: 4, CenterBeam: 359, Wraps: true}}
	if diff := cmp.Diff(want, segs); diff != "" {
		t.Errorf("wrap segment mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractSegmentsGapMerge(t *testing.T) {
	// Two runs separated by exactly 2 clear beams merge with gap_merge=2.
	blocked := append(beams(10, 14), beams(17, 21)...)
	frame := testFrame(t, 1, blocked...)
	segs := ExtractSegments(frame, 5, 2)
	want := []Segment{{StartBeam: 10, EndBeam: 21, WidthBeams: 12, CenterBeam: 15, Wraps: false}}
	if diff := cmp.Diff(want, segs); diff != "" {
		t.Errorf("gap merge mismatch (-want +got):\n%s", diff)
	}

	// Separated by 3 clear beams they stay distinct.
	blocked = append(beams(10, 14), beams(18, 22)...)
	frame = testFrame(t, 2, blocked...)
	segs = ExtractSegments(frame, 5, 2)
	want = []Segment{
		{StartBeam: 10, EndBeam: 14, WidthBeams: 5, CenterBeam: 12, Wraps: false},
		{StartBeam: 18, EndBeam: 22, WidthBeams: 5, CenterBeam: 20, Wraps: false},
	}
	if diff := cmp.Diff(want, segs); diff != "" {
		t.Errorf("distinct runs mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractSegmentsTransitiveMerge(t *testing.T) {
	// A chain of qualifying gaps collapses into one segment.
	blocked := append(beams(10, 12), beams(15, 17)...)
	blocked = append(blocked, beams(20, 22)...)
	frame := testFrame(t, 1, blocked...)
	segs := ExtractSegments(frame, 5, 2)
	want := []Segment{{StartBeam: 10, EndBeam: 22, WidthBeams: 13, CenterBeam: 16, Wraps: false}}
	if diff := cmp.Diff(want, segs); diff != "" {
		t.Errorf("transitive merge mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractSegmentsWrappingGapMerge(t *testing.T) {
	// The clear gap 358..359 itself crosses the boundary; the runs on either
	// side merge into one wrapping segment.
	blocked := append(beams(350, 357), beams(0, 5)...)
	frame := testFrame(t, 1, blocked...)
	segs := ExtractSegments(frame, 5, 2)
	want := []Segment{{StartBeam: 350, EndBeam: 5, WidthBeams: 16, CenterBeam: 357, Wraps: true}}
	if diff := cmp.Diff(want, segs); diff != "" {
		t.Errorf("wrapping gap merge mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractSegmentsMinWidthFilter(t *testing.T) {
	// A run of 4 blocked beams yields nothing with min_segment_beams=5.
	frame := testFrame(t, 1, beams(100, 103)...)
	if segs := ExtractSegments(frame, 5, 2); len(segs) != 0 {
		t.Errorf("expected run below minimum width to be discarded, got %v", segs)
	}
}

func TestExtractSegmentsOrderedByStart(t *testing.T) {
	blocked := append(beams(200, 210), beams(30, 40)...)
	blocked = append(blocked, beams(100, 110)...)
	frame := testFrame(t, 1, blocked...)
	segs := ExtractSegments(frame, 5, 2)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	for i := 1; i < len(segs); i++ {
		if segs[i-1].StartBeam >= segs[i].StartBeam {
			t.Errorf("segments out of order: %v", segs)
		}
	}
}

func TestExtractSegmentsNoGapMerging(t *testing.T) {
	// gap_merge=0 only joins immediately adjacent runs, which are already
	// maximal, so a 1-beam gap keeps runs apart.
	blocked := append(beams(10, 14), beams(16, 20)...)
	frame := testFrame(t, 1, blocked...)
	segs := ExtractSegments(frame, 1, 0)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments with zero gap merging, got %v", segs)
	}
}
