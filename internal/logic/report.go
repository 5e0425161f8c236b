package logic

// ReportSize is the length of a raw controller report.
const ReportSize = 6

// SensorReport is one decoded controller report.
type SensorReport struct {
	JoyX uint8
	JoyY uint8

	// Accelerometer axes, 10 bits each. Decoded but not used for key state.
	AccX uint16
	AccY uint16
	AccZ uint16

	// Buttons are active-low on the wire; true = pressed here.
	ButtonC bool
	ButtonZ bool
}

// Decode unpacks a raw report. Byte 5 carries the button bits and the two
// low bits of each accelerometer axis.
func Decode(buf [ReportSize]byte) SensorReport {
	b5 := buf[5]
	return SensorReport{
		JoyX:    buf[0],
		JoyY:    buf[1],
		AccX:    uint16(buf[2])<<2 | uint16((b5>>2)&0b11),
		AccY:    uint16(buf[3])<<2 | uint16((b5>>4)&0b11),
		AccZ:    uint16(buf[4])<<2 | uint16((b5>>6)&0b11),
		ButtonZ: b5&0b1 == 0,
		ButtonC: (b5>>1)&0b1 == 0,
	}
}
