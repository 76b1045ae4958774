package gateway

import (
	"context"
	"fmt"

	"concierge/internal/domain"
)

// WiFi simulates the WiFi gateway: network diagnostics and remote router
// management. A production deployment would call the network monitoring and
// IoT platforms here.
type WiFi struct{}

func NewWiFi() *WiFi { return &WiFi{} }

func (w *WiFi) Name() string { return "wifi" }

func (w *WiFi) Operations() []domain.CapabilityDefinition {
	return []domain.CapabilityDefinition{
		{
			Name:        "wifi_diagnostic",
			Description: "Run diagnostics on a WiFi network.",
			Arguments: []domain.ArgumentField{
				{Name: "network_name", Type: "string", Required: true, Description: "The WiFi network name (SSID) to diagnose"},
			},
			Effect: domain.EffectPure,
		},
		{
			Name:        "restart_router",
			Description: "Restart the customer's router. Requires user approval before it runs.",
			Arguments: []domain.ArgumentField{
				{Name: "router_id", Type: "string", Required: false, Description: "Router identifier; defaults to primary"},
			},
			Effect: domain.EffectApprovalRequired,
		},
	}
}

func (w *WiFi) Call(ctx context.Context, op string, args map[string]any) (string, error) {
	switch op {
	case "wifi_diagnostic":
		network, _ := args["network_name"].(string)
		if network == "" {
			network = "your network"
		}
		return fmt.Sprintf(`WiFi Diagnostic Results for %q:
- Signal Strength: -45 dBm (Excellent)
- Channel: 36 (5 GHz)
- Connected Devices: 23 (high usage may cause slowdowns)
- Internet Speed: 250 Mbps down / 35 Mbps up
Recommendation: consider restarting the router if speeds are slow.`, network), nil
	case "restart_router":
		routerID, _ := args["router_id"].(string)
		if routerID == "" {
			routerID = "primary"
		}
		return fmt.Sprintf("Router restart initiated for %s. It will be offline for about 2 minutes and come back online automatically; devices reconnect on their own.", routerID), nil
	}
	return "", fmt.Errorf("wifi gateway: unknown operation %q", op)
}
