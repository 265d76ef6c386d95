package genai

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Part struct {
	Text string `json:"text"`
}

type Turn struct {
	Parts []*Part `json:"parts"`
	Role  string  `json:"role"`
}

type generateRequest struct {
	Contents []*Turn `json:"contents"`
}

type candidate struct {
	Content *Turn `json:"content"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type generateResponse struct {
	Candidates     []*candidate    `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback"`
}

// HistoryMessage is one stored conversation message, provider-agnostic.
// Role uses the storage vocabulary ("user" / "assistant").
type HistoryMessage struct {
	Role    string
	Content string
}

// BuildTurns maps the stored conversation into provider wire turns, oldest
// first. The assistant role is renamed to "model"; content passes through
// untouched so the provider sees exactly what was persisted.
func BuildTurns(history []HistoryMessage) []*Turn {
	turns := make([]*Turn, 0, len(history))
	for _, msg := range history {
		role := RoleUser
		if msg.Role == "assistant" {
			role = RoleModel
		}
		turns = append(turns, &Turn{
			Parts: []*Part{{Text: msg.Content}},
			Role:  role,
		})
	}
	return turns
}
