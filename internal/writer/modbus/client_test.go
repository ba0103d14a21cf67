package modbus

import "testing"

func TestPackRegistersBigEndian(t *testing.T) {
	got := packRegisters([]uint16{0x0102, 0xA0B0})
	want := []byte{0x01, 0x02, 0xA0, 0xB0}

	if len(got) != len(want) {
		t.Fatalf("len=%d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = 0x%02x want 0x%02x", i, got[i], want[i])
		}
	}
}

func TestNewEndpointClientRequiresEndpoint(t *testing.T) {
	if _, err := NewEndpointClient(Config{}); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
}
