package bus

import (
	"errors"
	"sync"
)

// Write records one write issued to a FakeBus.
type Write struct {
	Register bool // true for WriteRegister, false for WriteByte
	Reg      byte
	Value    byte
}

// FakeBus is a test double that returns scripted reports and records writes.
// It is safe for concurrent use so tests can inspect it while a poller runs.
type FakeBus struct {
	mu sync.Mutex

	// Reports contains scripted raw reports. Each ReadBytes call consumes the next one.
	// If reports are exhausted, the last one is returned repeatedly.
	Reports [][]byte

	// ReadErrors maps a read call index (0-based) to the error it returns.
	ReadErrors map[int]error

	// WriteErrors maps a write call index (0-based, over all writes) to the error it returns.
	WriteErrors map[int]error

	index  int
	reads  int
	writes []Write
	closed bool
}

// NewFakeBus creates a FakeBus with the given reports.
func NewFakeBus(reports ...[]byte) *FakeBus {
	return &FakeBus{
		Reports:     reports,
		ReadErrors:  map[int]error{},
		WriteErrors: map[int]error{},
	}
}

// ReadBytes returns the next scripted report, truncated or padded to n bytes.
func (f *FakeBus) ReadBytes(n int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := f.reads
	f.reads++
	if err := f.ReadErrors[call]; err != nil {
		return nil, err
	}
	if len(f.Reports) == 0 {
		return nil, errors.New("no reports configured")
	}

	report := f.Reports[f.index]
	if f.index < len(f.Reports)-1 {
		f.index++
	}

	out := make([]byte, n)
	copy(out, report)
	if len(report) < n {
		return out[:len(report)], nil
	}
	return out, nil
}

// WriteByte records a single-byte write.
func (f *FakeBus) WriteByte(b byte) error {
	return f.record(Write{Value: b})
}

// WriteRegister records a register write.
func (f *FakeBus) WriteRegister(reg, value byte) error {
	return f.record(Write{Register: true, Reg: reg, Value: value})
}

func (f *FakeBus) record(w Write) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := len(f.writes)
	f.writes = append(f.writes, w)
	if err := f.WriteErrors[call]; err != nil {
		return err
	}
	return nil
}

// Close marks the bus as closed.
func (f *FakeBus) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Reads returns the number of ReadBytes calls so far.
func (f *FakeBus) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Writes returns a copy of every write so far.
func (f *FakeBus) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Write(nil), f.writes...)
}

// Closed reports whether Close was called.
func (f *FakeBus) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// FailRead makes read call index call return err.
func (f *FakeBus) FailRead(call int, err error) {
	f.mu.Lock()
	f.ReadErrors[call] = err
	f.mu.Unlock()
}

// FailWrite makes write call index call return err.
func (f *FakeBus) FailWrite(call int, err error) {
	f.mu.Lock()
	f.WriteErrors[call] = err
	f.mu.Unlock()
}
