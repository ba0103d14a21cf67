// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/contact-availability/internal/status"
)

// StatusWriter is the delivery-only contract for the availability status block.
// It receives a snapshot and writes it verbatim.
// No logic, no state, no interpretation.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// blockStatusWriter is the concrete implementation used by the daemon.
type blockStatusWriter struct {
	plan *StatusPlan
	cli  endpointClient

	needFull  bool
	last      status.Snapshot
	heartbeat uint16
}

// NewStatusWriter builds a status writer if the status block is enabled.
// If plan.Status is nil, status is disabled.
func NewStatusWriter(plan PanelPlan, cli endpointClient) (StatusWriter, bool) {
	if plan.Status == nil {
		return nil, false
	}

	return &blockStatusWriter{
		plan:     plan.Status,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
	}, true
}

// slotField pairs a slot with its snapshot accessor for incremental writes.
type slotField struct {
	slot int
	name string
	get  func(status.Snapshot) uint16
}

var incrementalSlots = []slotField{
	{status.SlotUIState, "ui_state", func(s status.Snapshot) uint16 { return s.UI }},
	{status.SlotResolved, "resolved", func(s status.Snapshot) uint16 { return s.Resolved }},
	{status.SlotAvailable, "available", func(s status.Snapshot) uint16 { return s.Available }},
	{status.SlotSource, "source", func(s status.Snapshot) uint16 { return s.Source }},
	{status.SlotDemoted, "demoted", func(s status.Snapshot) uint16 { return s.Demoted }},
	{status.SlotSecondsPending, "seconds_pending", func(s status.Snapshot) uint16 { return s.SecondsPending }},
	{status.SlotProbeAttempts, "probe_attempts", func(s status.Snapshot) uint16 { return s.ProbeAttempts }},
}

// WriteStatus delivers a snapshot into the status block.
// On any write failure, the next call re-asserts the full block.
func (sw *blockStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil || sw.plan == nil {
		return errors.New("status writer: disabled")
	}
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", sw.plan.Endpoint)
	}

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		regs := status.Encode(s)

		// heartbeat counts full writes only
		if sw.heartbeat < status.MaxCounter {
			sw.heartbeat++
		} else {
			sw.heartbeat = 1
		}
		regs[status.SlotHeartbeat] = sw.heartbeat

		if err := sw.cli.WriteRegisters(sw.plan.UnitID, sw.plan.Address, regs); err != nil {
			sw.needFull = true
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		sw.last = s
		return nil
	}

	var errs []string

	for _, f := range incrementalSlots {
		v := f.get(s)
		if f.get(sw.last) == v {
			continue
		}
		if err := sw.cli.WriteRegisters(
			sw.plan.UnitID,
			sw.plan.Address+uint16(f.slot),
			[]uint16{v},
		); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", f.slot, f.name, err))
		}
	}

	if len(errs) > 0 {
		// Any partial failure: re-assert on next call.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	sw.last = s
	return nil
}
