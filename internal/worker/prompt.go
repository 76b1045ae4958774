package worker

import (
	"encoding/json"
	"fmt"

	"concierge/internal/capability"
	"concierge/internal/domain"
)

// approvalPrompt builds the human-facing approval question for a suspended
// capability. Capabilities that already carry a user-facing message (like a
// confirmation dialog) supply it verbatim; everything else gets a generic
// prompt naming the action and its arguments.
func approvalPrompt(def domain.CapabilityDefinition, args map[string]any) string {
	if msg, ok := args["message"].(string); ok && msg != "" {
		return msg
	}
	if len(args) == 0 {
		return fmt.Sprintf("Action requires approval: %s", def.Name)
	}
	summary, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("Action requires approval: %s", def.Name)
	}
	return fmt.Sprintf("Action requires approval: %s %s", def.Name, summary)
}

// approvalOptions extracts caller-proposed options from the suspended call's
// arguments, falling back to a plain approve/deny pair.
func approvalOptions(args map[string]any) []string {
	if opts := capability.ArgStrings(args, "options"); len(opts) > 0 {
		return opts
	}
	return []string{"approve", "deny"}
}
