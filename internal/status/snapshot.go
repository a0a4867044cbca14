// internal/status/snapshot.go
package status

import "errors"

// Snapshot represents exactly what the status writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16
	Restarts       uint16
}

// Encode converts a Snapshot into the live slots of a status block.
// Layout is protocol-locked. Name slots are left zero.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError
	regs[SlotRestarts] = s.Restarts

	return regs
}

// ErrorCode extracts a best-effort uint16 code from an error without
// assuming concrete types. If the error does not expose a code, returns 1.
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coder interface{ Code() uint16 }

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return 1
}
