package logic

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// pack builds a raw report from field values using the wire layout.
func pack(r SensorReport) [ReportSize]byte {
	var buf [ReportSize]byte
	buf[0] = r.JoyX
	buf[1] = r.JoyY
	buf[2] = byte(r.AccX >> 2)
	buf[3] = byte(r.AccY >> 2)
	buf[4] = byte(r.AccZ >> 2)
	var b5 byte
	if !r.ButtonZ {
		b5 |= 0b1
	}
	if !r.ButtonC {
		b5 |= 0b10
	}
	b5 |= byte(r.AccX&0b11) << 2
	b5 |= byte(r.AccY&0b11) << 4
	b5 |= byte(r.AccZ&0b11) << 6
	buf[5] = b5
	return buf
}

func TestDecodeKnownFields(t *testing.T) {
	tests := []struct {
		name string
		want SensorReport
	}{
		{"centered idle", SensorReport{JoyX: 127, JoyY: 127, AccX: 512, AccY: 512, AccZ: 700}},
		{"both pressed", SensorReport{JoyX: 0, JoyY: 255, AccX: 1023, AccY: 0, AccZ: 1, ButtonC: true, ButtonZ: true}},
		{"c only", SensorReport{JoyX: 200, JoyY: 30, AccX: 3, AccY: 514, AccZ: 1022, ButtonC: true}},
		{"z only", SensorReport{JoyX: 77, JoyY: 177, AccX: 257, AccY: 770, AccZ: 2, ButtonZ: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(pack(tt.want))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeWireExample(t *testing.T) {
	// byte5 = 0b10_01_11_00: accZ low=2, accY low=1, accX low=3, C and Z pressed.
	buf := [ReportSize]byte{0x80, 0x7f, 0x01, 0x02, 0x03, 0b10011100}
	got := Decode(buf)

	want := SensorReport{
		JoyX:    0x80,
		JoyY:    0x7f,
		AccX:    0x01<<2 | 3,
		AccY:    0x02<<2 | 1,
		AccZ:    0x03<<2 | 2,
		ButtonC: true,
		ButtonZ: true,
	}
	if got != want {
		t.Errorf("Decode: got %+v, want %+v", got, want)
	}
}

func TestDecodeButtonsActiveLow(t *testing.T) {
	tests := []struct {
		b5    byte
		wantC bool
		wantZ bool
	}{
		{0b11, false, false},
		{0b10, false, true},
		{0b01, true, false},
		{0b00, true, true},
	}
	for _, tt := range tests {
		r := Decode([ReportSize]byte{0, 0, 0, 0, 0, tt.b5})
		if r.ButtonC != tt.wantC {
			t.Errorf("b5=%02b: ButtonC got %v, want %v", tt.b5, r.ButtonC, tt.wantC)
		}
		if r.ButtonZ != tt.wantZ {
			t.Errorf("b5=%02b: ButtonZ got %v, want %v", tt.b5, r.ButtonZ, tt.wantZ)
		}
	}
}

func TestDecodeDeterministic(t *testing.T) {
	buf := [ReportSize]byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc}
	first := Decode(buf)
	for i := 0; i < 10; i++ {
		if got := Decode(buf); got != first {
			t.Fatalf("iteration %d: got %+v, want %+v", i, got, first)
		}
	}
}

func TestDecodeAccelRange(t *testing.T) {
	r := Decode([ReportSize]byte{0, 0, 0xff, 0xff, 0xff, 0xff})
	if r.AccX != 1023 || r.AccY != 1023 || r.AccZ != 1023 {
		t.Errorf("expected all accel axes 1023, got %d %d %d", r.AccX, r.AccY, r.AccZ)
	}
}
