// internal/writer/types.go
package writer

// PanelPlan is the fully-built delivery plan for one indicator panel.
type PanelPlan struct {
	Endpoint    string
	UnitID      uint8
	ChatCoil    uint16
	OfflineCoil uint16

	// Status is nil when the status block is disabled.
	Status *StatusPlan
}

// StatusPlan locates the status block in holding registers.
type StatusPlan struct {
	Endpoint string
	UnitID   uint8
	Address  uint16
}

// endpointClient is the exact contract the writers use.
// IMPORTANT: There must be NO other version of this interface anywhere.
type endpointClient interface {
	WriteCoil(unitID uint8, addr uint16, on bool) error
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}
