package models

// Message is one role-tagged entry of the forwarded conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the inbound payload for POST /api/chat.
type ChatRequest struct {
	Messages     []Message `json:"messages"`
	SystemPrompt string    `json:"systemPrompt,omitempty"`
	Temperature  *float64  `json:"temperature,omitempty"`
}
