// internal/writer/builder.go
package writer

import (
	"errors"
	"time"

	cfg "github.com/tamzrod/contact-availability/internal/config"
	wmodbus "github.com/tamzrod/contact-availability/internal/writer/modbus"
)

// BuildPlan converts the panel config into a PanelPlan.
// Assumes config has already passed validation.
func BuildPlan(pc cfg.PanelConfig) (PanelPlan, error) {
	if pc.Endpoint == "" {
		return PanelPlan{}, errors.New("writer: panel.endpoint required")
	}

	plan := PanelPlan{
		Endpoint:    pc.Endpoint,
		UnitID:      pc.UnitID,
		ChatCoil:    pc.ChatCoil,
		OfflineCoil: pc.OfflineCoil,
	}

	if pc.StatusAddress != nil {
		plan.Status = &StatusPlan{
			Endpoint: pc.Endpoint,
			UnitID:   pc.UnitID,
			Address:  *pc.StatusAddress,
		}
	}

	return plan, nil
}

// BuildPanel connects to the panel and returns its renderer, its optional
// status writer, and a closer.
func BuildPanel(pc cfg.PanelConfig) (*Panel, StatusWriter, func() error, error) {
	plan, err := BuildPlan(pc)
	if err != nil {
		return nil, nil, nil, err
	}

	cli, err := wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: pc.Endpoint,
		Timeout:  time.Duration(pc.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	panel, err := NewPanel(plan, cli)
	if err != nil {
		_ = cli.Close()
		return nil, nil, nil, err
	}

	sw, _ := NewStatusWriter(plan, cli)

	return panel, sw, cli.Close, nil
}
