package occlusion

// FrameProcessor runs the full per-frame pipeline: segment extraction,
// temporal matching against the tracked history, and stability
// classification. It owns the TrackedSegmentStore for one input stream;
// independent streams need independent processors. The processor is a purely
// sequential state machine and performs no I/O.
type FrameProcessor struct {
	cfg        DetectorConfig
	store      *TrackedSegmentStore
	matcher    *TemporalMatcher
	classifier *StabilityClassifier

	lastTimestep int64
	haveLast     bool
	processed    int
}

// NewFrameProcessor validates the configuration and builds a processor.
func NewFrameProcessor(cfg DetectorConfig) (*FrameProcessor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store := NewTrackedSegmentStore(cfg.HistorySize)
	return &FrameProcessor{
		cfg:        cfg,
		store:      store,
		matcher:    NewTemporalMatcher(store, cfg.DriftToleranceBeams),
		classifier: NewStabilityClassifier(cfg),
	}, nil
}

// Config returns the processor's configuration.
func (p *FrameProcessor) Config() DetectorConfig {
	return p.cfg
}

// FramesProcessed returns how many frames this processor has incorporated
// since construction or the last Reset.
func (p *FrameProcessor) FramesProcessed() int {
	return p.processed
}

// Store exposes the tracked history for inspection. Callers must not mutate
// it; all mutation happens through Process.
func (p *FrameProcessor) Store() *TrackedSegmentStore {
	return p.store
}

// Process incorporates one frame and returns its annotated result. Frames
// must arrive in strictly increasing timestep order; a violation returns an
// *OutOfOrderFrameError and leaves all history state untouched, so the
// caller decides whether to abort or skip.
func (p *FrameProcessor) Process(frame *ScanFrame) (*FrameResult, error) {
	if p.haveLast && frame.Timestep <= p.lastTimestep {
		return nil, &OutOfOrderFrameError{Timestep: frame.Timestep, LastTimestep: p.lastTimestep}
	}

	candidates := ExtractSegments(frame, p.cfg.MinSegmentBeams, p.cfg.GapMergeBeams)
	tracked := p.matcher.Match(candidates, frame.Timestep)
	res := p.classifier.Classify(frame.Timestep, candidates, tracked)

	p.lastTimestep = frame.Timestep
	p.haveLast = true
	p.processed++
	return res, nil
}

// Reset reinitializes the processor for a new input source, discarding all
// tracked history and ordering state.
func (p *FrameProcessor) Reset() {
	p.store.Reset()
	p.lastTimestep = 0
	p.haveLast = false
	p.processed = 0
}
