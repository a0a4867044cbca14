// internal/status/writer.go
package status

import (
	"errors"
	"fmt"
	"strings"
)

// RegisterClient is the exact contract the status writer uses.
type RegisterClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// Plan locates the status block in the target's holding registers.
type Plan struct {
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// Writer delivers snapshots into status memory.
// The first write (and the first after any failure) re-asserts the full
// block including the device name; later writes touch changed slots only.
type Writer struct {
	plan Plan
	cli  RegisterClient

	needFull bool
	last     Snapshot
	nameRegs []uint16
}

func NewWriter(plan Plan, cli RegisterClient) *Writer {
	return &Writer{
		plan:     plan,
		cli:      cli,
		needFull: true,
		last:     Snapshot{Health: HealthUnknown},
		nameRegs: encodeDeviceNameRegs(plan.DeviceName),
	}
}

// WriteStatus delivers one snapshot.
// On any write failure, the next successful call re-asserts the full block.
func (w *Writer) WriteStatus(s Snapshot) error {
	if w == nil || w.cli == nil {
		return errors.New("status writer: disabled")
	}

	base := w.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if w.needFull {
		if err := w.cli.WriteRegisters(w.plan.UnitID, base, w.fullBlockRegs(s)); err != nil {
			w.needFull = true
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		w.needFull = false
		w.last = s
		return nil
	}

	var errs []string

	slots := []struct {
		name string
		slot uint16
		prev *uint16
		next uint16
	}{
		{"health", SlotHealthCode, &w.last.Health, s.Health},
		{"last_error", SlotLastErrorCode, &w.last.LastErrorCode, s.LastErrorCode},
		{"seconds_in_error", SlotSecondsInError, &w.last.SecondsInError, s.SecondsInError},
		{"restarts", SlotRestarts, &w.last.Restarts, s.Restarts},
	}

	for _, sl := range slots {
		if *sl.prev == sl.next {
			continue
		}
		if err := w.cli.WriteRegisters(w.plan.UnitID, base+sl.slot, []uint16{sl.next}); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", sl.slot, sl.name, err))
			continue
		}
		*sl.prev = sl.next
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next success.
		w.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}
	return nil
}

func (w *Writer) baseAddr() uint16 {
	// Each bridge owns a fixed SlotsPerDevice block.
	return w.plan.BaseSlot * SlotsPerDevice
}

func (w *Writer) fullBlockRegs(s Snapshot) []uint16 {
	regs := Encode(s)

	// Device name always lives at the end of the block.
	copy(regs[SlotDeviceNameStart:SlotDeviceNameEnd+1], w.nameRegs)
	return regs
}

// encodeDeviceNameRegs packs up to 16 ASCII characters into 8 registers.
// Each register stores two ASCII bytes in big-endian order.
func encodeDeviceNameRegs(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
