// internal/writer/panel.go
package writer

import (
	"errors"
	"fmt"
)

// Panel renders the two affordances as indicator coils.
// It implements ui.Renderer. Delivery only: ordering and retries belong
// to the reconciler.
type Panel struct {
	plan PanelPlan
	cli  endpointClient
}

// NewPanel binds a plan to a client.
func NewPanel(plan PanelPlan, cli endpointClient) (*Panel, error) {
	if cli == nil {
		return nil, errors.New("panel: client required")
	}
	if plan.ChatCoil == plan.OfflineCoil {
		return nil, fmt.Errorf("panel: chat and offline coil must differ (%d)", plan.ChatCoil)
	}
	return &Panel{plan: plan, cli: cli}, nil
}

func (p *Panel) ShowChat() error    { return p.coil("chat", p.plan.ChatCoil, true) }
func (p *Panel) HideChat() error    { return p.coil("chat", p.plan.ChatCoil, false) }
func (p *Panel) ShowOffline() error { return p.coil("offline", p.plan.OfflineCoil, true) }
func (p *Panel) HideOffline() error { return p.coil("offline", p.plan.OfflineCoil, false) }

func (p *Panel) coil(name string, addr uint16, on bool) error {
	if err := p.cli.WriteCoil(p.plan.UnitID, addr, on); err != nil {
		return fmt.Errorf("panel: ep=%s unit=%d %s coil=%d on=%v: %w",
			p.plan.Endpoint, p.plan.UnitID, name, addr, on, err)
	}
	return nil
}
