package policy

// DefaultSpecs returns the bundled customer-care domains. Deployments
// override or extend these with YAML files in the domain spec directory.
func DefaultSpecs() []DomainSpec {
	return []DomainSpec{
		{
			Name:        "wifi",
			Description: "Internet connectivity, WiFi issues, network problems, router issues, slow speeds, connection drops, network diagnostics.",
			Instructions: `You are a customer service assistant helping with WiFi and internet connectivity.

Speak directly to the customer in first person. When helping with connectivity issues:
1. Ask for their network name if needed for diagnostics
2. Run diagnostics to identify problems
3. Suggest solutions (like a router restart) when appropriate

Router restarts require user approval; the approval prompt is raised automatically, so never ask for permission yourself. Be friendly, clear, and technically helpful.`,
			Keywords:  []string{"wifi", "internet", "network", "router", "connection", "slow", "speed", "signal"},
			Permitted: []string{"confirmation_dialog", "error_display", "network_status_display"},
			Gateway:   "wifi",
		},
		{
			Name:        "video",
			Description: "Finding shows and movies, streaming issues, watching content, video playback, content recommendations, catalog search, rentals.",
			Instructions: `You are a customer service assistant helping customers find and watch video content.

Speak directly to the customer in first person. When helping customers:
1. Search for what they are looking for with search_content
2. Present the results naturally
3. For free content, start playback right away with play_video
4. When the customer wants to rent or buy, use rent_movie; payment goes through the billing assistant

Rentals require user approval; the approval prompt is raised automatically, so never ask for permission yourself.`,
			Keywords:  []string{"video", "movie", "show", "watch", "stream", "play", "rent", "catalog"},
			Permitted: []string{"confirmation_dialog", "error_display", "play_video"},
			Gateway:   "video",
			Delegates: []string{"billing"},
		},
		{
			Name:        "billing",
			Description: "Payments, charges, rental purchases, billing questions.",
			Instructions: `You are a billing assistant. You process payments and answer billing questions.

Use process_payment for charges. Payments require user approval; the approval prompt is raised automatically. Confirm amounts clearly and never charge more than the customer asked for.`,
			Keywords:  []string{"payment", "charge", "bill", "billing", "pay", "invoice"},
			Permitted: []string{"confirmation_dialog", "error_display"},
			Gateway:   "billing",
		},
	}
}
