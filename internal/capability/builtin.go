package capability

import (
	"context"
	"fmt"

	"concierge/internal/domain"
)

// Builtins returns the client capabilities every deployment registers at
// startup. Each one maps to a component the caller's UI knows how to render;
// callers still have to advertise a name before a domain may use it.
func Builtins() []domain.Capability {
	return []domain.Capability{
		confirmationDialog(),
		errorDisplay(),
		networkStatusDisplay(),
		playVideo(),
	}
}

// RegisterBuiltins registers all builtin client capabilities.
func RegisterBuiltins(r *Registry) error {
	for _, c := range Builtins() {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// confirmationDialog asks the user to pick an option. It is flagged
// approval-required: selecting it suspends the request until the answer
// comes back as a Decision.
func confirmationDialog() domain.Capability {
	return &Func{
		Def: domain.CapabilityDefinition{
			Name:        "confirmation_dialog",
			Description: "Display a confirmation dialog and wait for the user to choose an option.",
			Arguments: []domain.ArgumentField{
				{Name: "message", Type: "string", Required: true, Description: "Message to display in the confirmation dialog"},
				{Name: "options", Type: "array", Required: true, Description: "Options for the user to choose from"},
			},
			Effect: domain.EffectApprovalRequired,
			Render: domain.RenderRelay,
		},
		// Never reached before a decision arrives; the decision payload is
		// bound as the result instead. Kept for direct invocations in tests
		// and degraded (approval-disabled) deployments.
		Fn: func(ctx context.Context, args map[string]any) (*domain.Result, error) {
			return &domain.Result{
				Content: fmt.Sprintf("Awaiting user confirmation: %s", ArgString(args, "message")),
			}, nil
		},
	}
}

func errorDisplay() domain.Capability {
	return &Func{
		Def: domain.CapabilityDefinition{
			Name:        "error_display",
			Description: "Display an error message in the caller's UI.",
			Arguments: []domain.ArgumentField{
				{Name: "error_message", Type: "string", Required: true, Description: "Error message to display"},
			},
			Effect: domain.EffectRendersUI,
			Render: domain.RenderRelay,
		},
		Fn: func(ctx context.Context, args map[string]any) (*domain.Result, error) {
			msg := ArgString(args, "error_message")
			return &domain.Result{
				Content:  fmt.Sprintf("Error shown to user: %s", msg),
				UIEvents: []domain.UIEvent{{Name: "error_display", Properties: args}},
			}, nil
		},
	}
}

func networkStatusDisplay() domain.Capability {
	return &Func{
		Def: domain.CapabilityDefinition{
			Name:        "network_status_display",
			Description: "Display a network status card in the caller's UI.",
			Arguments: []domain.ArgumentField{
				{Name: "status_data", Type: "object", Required: true, Description: "Network status data to display"},
			},
			Effect: domain.EffectRendersUI,
			Render: domain.RenderRelay,
		},
		Fn: func(ctx context.Context, args map[string]any) (*domain.Result, error) {
			return &domain.Result{
				Content:  "Network status card displayed.",
				UIEvents: []domain.UIEvent{{Name: "network_status_display", Properties: args}},
			}, nil
		},
	}
}

// playVideo renders inline: its result ends the worker turn directly, so the
// player starts without another reasoning round trip.
func playVideo() domain.Capability {
	return &Func{
		Def: domain.CapabilityDefinition{
			Name:        "play_video",
			Description: "Start playing a video in the caller's player.",
			Arguments: []domain.ArgumentField{
				{Name: "video_id", Type: "string", Required: true, Description: "Video ID or search term"},
				{Name: "title", Type: "string", Required: true, Description: "Title of the video"},
			},
			Effect: domain.EffectRendersUI,
			Render: domain.RenderInline,
		},
		Fn: func(ctx context.Context, args map[string]any) (*domain.Result, error) {
			title := ArgString(args, "title")
			return &domain.Result{
				Content:  fmt.Sprintf("Now playing: %s", title),
				UIEvents: []domain.UIEvent{{Name: "play_video", Properties: args}},
			}, nil
		},
	}
}
