package critic

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Provider-side roles used in [Turn]. These follow the Gemini wire format,
// which is also what the snapshot file stores.
const (
	TurnRoleUser  = "user"
	TurnRoleModel = "model"
)
