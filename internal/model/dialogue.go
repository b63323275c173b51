package model

import "time"

type Phase string

const (
	PhaseIntro     Phase = "INTRO"
	PhaseAsking    Phase = "ASKING"
	PhaseReview    Phase = "REVIEW"
	PhaseSubmitted Phase = "SUBMITTED"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one message in the transcript.
type ConversationTurn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskAnnotation is the behavioral score attached to the record. It is
// telemetry only; nothing in the dialogue flow reads it back.
type RiskAnnotation struct {
	InputLength    int       `json:"inputLength"`
	SuspicionScore int       `json:"suspicionScore"`
	RiskLevel      RiskLevel `json:"riskLevel"`
}

// DialogueState is the full per-session state. One instance per session,
// owned by the caller; sessions never share mutable state.
type DialogueState struct {
	ID          string             `json:"id"`
	Mode        Mode               `json:"mode"`
	Phase       Phase              `json:"phase"`
	CurrentSlot *SlotID            `json:"currentSlot,omitempty"`
	Record      Record             `json:"record"`
	Transcript  []ConversationTurn `json:"transcript"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	SubmittedAt *time.Time         `json:"submittedAt,omitempty"`
}

// AppendTurn adds a message to the transcript.
func (s *DialogueState) AppendTurn(role Role, text string) {
	s.Transcript = append(s.Transcript, ConversationTurn{Role: role, Text: text})
}
