package gpio

import (
	"errors"
	"testing"
)

func TestFakeIndicatorSet(t *testing.T) {
	f := NewFakeIndicator()

	if f.Lit() {
		t.Error("should not be lit initially")
	}

	for _, v := range []bool{true, false, true} {
		if err := f.Set(v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(f.Values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(f.Values))
	}
	if !f.Lit() {
		t.Error("expected lit after last Set(true)")
	}
}

func TestFakeIndicatorError(t *testing.T) {
	f := NewFakeIndicator()
	f.SetError = errors.New("simulated error")

	err := f.Set(true)
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
	if len(f.Values) != 0 {
		t.Errorf("failed Set should not be recorded, got %v", f.Values)
	}
}

func TestFakeIndicatorClose(t *testing.T) {
	f := NewFakeIndicator()

	if f.Closed {
		t.Error("should not be closed initially")
	}
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeIndicatorReset(t *testing.T) {
	f := NewFakeIndicator()
	f.Set(true)
	f.Close()

	f.Reset()

	if len(f.Values) != 0 || f.Closed {
		t.Errorf("after reset: got values=%v closed=%v", f.Values, f.Closed)
	}
}

func TestNop(t *testing.T) {
	var ind Indicator = Nop{}
	if err := ind.Set(true); err != nil {
		t.Errorf("Set: %v", err)
	}
	if err := ind.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
