package logic

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeMakeBreak(t *testing.T) {
	tests := []struct {
		key       Key
		wantMake  []byte
		wantBreak []byte
	}{
		{KeyUp, []byte{0xe0, 0x75}, []byte{0xe0, 0xf0, 0x75}},
		{KeyDown, []byte{0xe0, 0x72}, []byte{0xe0, 0xf0, 0x72}},
		{KeyLeft, []byte{0xe0, 0x6b}, []byte{0xe0, 0xf0, 0x6b}},
		{KeyRight, []byte{0xe0, 0x74}, []byte{0xe0, 0xf0, 0x74}},
		{KeyCtrl, []byte{0x14}, []byte{0xf0, 0x14}},
		{KeySpace, []byte{0x29}, []byte{0xf0, 0x29}},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			got := Encode(Edge{Key: tt.key, Old: false, New: true})
			if diff := cmp.Diff(tt.wantMake, got); diff != "" {
				t.Errorf("make (-want +got):\n%s", diff)
			}
			got = Encode(Edge{Key: tt.key, Old: true, New: false})
			if diff := cmp.Diff(tt.wantBreak, got); diff != "" {
				t.Errorf("break (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeNoChange(t *testing.T) {
	for _, k := range Keys {
		if got := Encode(Edge{Key: k, Old: true, New: true}); got != nil {
			t.Errorf("%s held: expected nil, got % x", k, got)
		}
		if got := Encode(Edge{Key: k, Old: false, New: false}); got != nil {
			t.Errorf("%s released: expected nil, got % x", k, got)
		}
	}
}

func TestScancodeExtendedFlags(t *testing.T) {
	extended := map[Key]bool{
		KeyUp: true, KeyDown: true, KeyLeft: true, KeyRight: true,
		KeyCtrl: false, KeySpace: false,
	}
	for k, want := range extended {
		if got := ScancodeFor(k).Extended; got != want {
			t.Errorf("%s: Extended got %v, want %v", k, got, want)
		}
	}
}

func TestEventTypeOf(t *testing.T) {
	if got := EventTypeOf(Edge{Key: KeyCtrl, Old: false, New: true}); got != EventMake {
		t.Errorf("press: got %s, want MAKE", got)
	}
	if got := EventTypeOf(Edge{Key: KeyCtrl, Old: true, New: false}); got != EventBreak {
		t.Errorf("release: got %s, want BREAK", got)
	}
}

func TestKeyString(t *testing.T) {
	want := []string{"UP", "DOWN", "LEFT", "RIGHT", "CTRL", "SPACE"}
	for i, k := range Keys {
		if k.String() != want[i] {
			t.Errorf("key %d: got %q, want %q", i, k.String(), want[i])
		}
	}
	if Key(42).String() != "UNKNOWN" {
		t.Errorf("out of range key: got %q", Key(42).String())
	}
}
