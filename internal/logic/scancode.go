package logic

// Scan code set 2 framing bytes.
const (
	EscapePrefix byte = 0xe0
	BreakPrefix  byte = 0xf0
)

// Scancode is the output code of a key and whether it needs the escape prefix.
type Scancode struct {
	Code     byte
	Extended bool
}

var scancodes = [NumKeys]Scancode{
	KeyUp:    {Code: 0x75, Extended: true},
	KeyDown:  {Code: 0x72, Extended: true},
	KeyLeft:  {Code: 0x6b, Extended: true},
	KeyRight: {Code: 0x74, Extended: true},
	KeyCtrl:  {Code: 0x14},
	KeySpace: {Code: 0x29},
}

// ScancodeFor returns the output code of k.
func ScancodeFor(k Key) Scancode {
	return scancodes[k]
}

// Encode returns the ordered bytes for one edge: optional escape, optional
// break prefix, then the code. An edge that does not change state encodes to nil.
func Encode(e Edge) []byte {
	if e.Old == e.New {
		return nil
	}
	sc := scancodes[e.Key]
	out := make([]byte, 0, 3)
	if sc.Extended {
		out = append(out, EscapePrefix)
	}
	if !e.New {
		out = append(out, BreakPrefix)
	}
	return append(out, sc.Code)
}

// EventTypeOf returns MAKE for a press and BREAK for a release.
func EventTypeOf(e Edge) EventType {
	if e.New {
		return EventMake
	}
	return EventBreak
}
