package renderer

// pipelineSlot owns the one current pipeline. Replace installs a new pipeline
// only after the whole build succeeds; on failure the current pipeline and
// its GL program are left untouched, so a bad edit never blanks the window.
type pipelineSlot struct {
	current *Pipeline
	compile func(userSource string) (*Pipeline, error)
	destroy func(*Pipeline)
}

func newPipelineSlot() *pipelineSlot {
	return &pipelineSlot{
		compile: compilePipeline,
		destroy: destroyPipeline,
	}
}

func (s *pipelineSlot) Replace(userSource string) error {
	p, err := s.compile(userSource)
	if err != nil {
		return err
	}
	if s.current != nil {
		s.destroy(s.current)
	}
	s.current = p
	return nil
}
