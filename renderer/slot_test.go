package renderer

import (
	"errors"
	"testing"
)

// fakeSlot builds a pipelineSlot whose compile succeeds unless the source is
// "bad", and records which pipelines were destroyed.
func fakeSlot(t *testing.T) (*pipelineSlot, *[]*Pipeline) {
	t.Helper()
	destroyed := &[]*Pipeline{}
	s := &pipelineSlot{
		compile: func(src string) (*Pipeline, error) {
			if src == "bad" {
				return nil, errors.New("compile failed")
			}
			return &Pipeline{program: uint32(len(src))}, nil
		},
		destroy: func(p *Pipeline) {
			*destroyed = append(*destroyed, p)
		},
	}
	return s, destroyed
}

func TestReplaceInstallsFirstPipeline(t *testing.T) {
	s, destroyed := fakeSlot(t)

	if err := s.Replace("v1"); err != nil {
		t.Fatal(err)
	}
	if s.current == nil {
		t.Fatal("no pipeline installed")
	}
	if len(*destroyed) != 0 {
		t.Errorf("destroyed %d pipelines, want 0", len(*destroyed))
	}
}

func TestReplaceSwapsAndDestroysOld(t *testing.T) {
	s, destroyed := fakeSlot(t)

	if err := s.Replace("v1"); err != nil {
		t.Fatal(err)
	}
	old := s.current

	if err := s.Replace("v2-longer"); err != nil {
		t.Fatal(err)
	}
	if s.current == old {
		t.Error("current pipeline was not replaced")
	}
	if len(*destroyed) != 1 || (*destroyed)[0] != old {
		t.Errorf("old pipeline not destroyed exactly once: %v", *destroyed)
	}
}

func TestReplaceKeepsCurrentOnFailure(t *testing.T) {
	s, destroyed := fakeSlot(t)

	if err := s.Replace("v1"); err != nil {
		t.Fatal(err)
	}
	old := s.current

	if err := s.Replace("bad"); err == nil {
		t.Fatal("expected compile error")
	}
	if s.current != old {
		t.Error("current pipeline changed after a failed build")
	}
	if len(*destroyed) != 0 {
		t.Errorf("destroyed %d pipelines after a failed build, want 0", len(*destroyed))
	}
}

func TestFailedFirstBuildLeavesSlotEmpty(t *testing.T) {
	s, destroyed := fakeSlot(t)

	if err := s.Replace("bad"); err == nil {
		t.Fatal("expected compile error")
	}
	if s.current != nil {
		t.Error("slot holds a pipeline after a failed first build")
	}
	if len(*destroyed) != 0 {
		t.Errorf("destroyed %d pipelines, want 0", len(*destroyed))
	}
}
