//go:build !pprof

package profile

import "testing"

func TestSettings_StartDisabled(t *testing.T) {
	for _, s := range []Settings{
		{},
		{Mode: "cpu", Dir: t.TempDir(), Quiet: true},
		{Mode: "bogus"},
	} {
		stopper := s.Start()
		if _, ok := stopper.(ignore); !ok {
			t.Errorf("expected no-op profiler for %+v, got %T", s, stopper)
		}

		stopper.Stop()
	}
}

func TestModes_Disabled(t *testing.T) {
	if modes := Modes(); len(modes) != 0 {
		t.Errorf("expected no modes without the %s tag, got %v", Tag, modes)
	}

	if Supported("cpu") {
		t.Error("expected cpu to be unsupported")
	}
}
