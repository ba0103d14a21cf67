// internal/status/encode.go
package status

// Encode converts a Snapshot into a full status block.
// Layout is protocol-locked; the heartbeat slot is left to the writer.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerBlock)

	regs[SlotUIState] = s.UI
	regs[SlotResolved] = s.Resolved
	regs[SlotAvailable] = s.Available
	regs[SlotSource] = s.Source
	regs[SlotDemoted] = s.Demoted
	regs[SlotSecondsPending] = s.SecondsPending
	regs[SlotProbeAttempts] = s.ProbeAttempts

	return regs
}
