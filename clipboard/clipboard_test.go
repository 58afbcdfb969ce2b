package clipboard

import (
	"errors"
	"testing"
)

func TestFake(t *testing.T) {
	var f Fake
	if err := f.SetText("Hello\nWorld"); err != nil {
		t.Fatal(err)
	}
	got, _ := f.Read()
	if got != "Hello\nWorld" || f.Writes() != 1 {
		t.Errorf("Read = %q, writes = %d", got, f.Writes())
	}

	f.FailWith(errors.New("locked"))
	if err := f.SetText("x"); err == nil {
		t.Error("expected injected failure")
	}
	if got, _ := f.Read(); got != "Hello\nWorld" {
		t.Errorf("failed write changed text to %q", got)
	}
}

func TestSystemRoundTrip(t *testing.T) {
	var s System
	if err := s.SetText("snaptext clipboard test"); err != nil {
		if errors.Is(err, ErrUnsupported) {
			t.Skip("no clipboard utility")
		}
		t.Skipf("clipboard not usable here: %v", err)
	}
	got, err := s.Read()
	if err != nil {
		t.Fatal(err)
	}
	if got != "snaptext clipboard test" {
		t.Errorf("Read = %q", got)
	}
}
