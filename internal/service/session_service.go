package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"roadreport/internal/cache"
	"roadreport/internal/engine"
	"roadreport/internal/model"
	"roadreport/internal/repository"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionSubmitted = errors.New("session already submitted")
	ErrNotInReview      = errors.New("session is not in review")
)

const (
	submitOKText   = "Your report has been submitted successfully. Thank you for the detailed information."
	submitFailText = "There was an error submitting your report. Please try again in a moment."
)

// CreateSessionResponse is returned when a reporter starts a session.
type CreateSessionResponse struct {
	SessionID string      `json:"sessionId"`
	Token     string      `json:"token"`
	Mode      model.Mode  `json:"mode"`
	Phase     model.Phase `json:"phase"`
	Greeting  string      `json:"greeting"`
}

// TurnReply is the outcome of one user turn.
type TurnReply struct {
	Reply       string          `json:"reply"`
	Kind        engine.TurnKind `json:"kind"`
	Phase       model.Phase     `json:"phase"`
	CurrentSlot *model.SlotID   `json:"currentSlot,omitempty"`
	Recorded    []model.SlotID  `json:"recorded,omitempty"`
	Submitted   bool            `json:"submitted"`
	SubmitError string          `json:"submitError,omitempty"`
	Fallback    bool            `json:"-"`
}

// SessionService orchestrates dialogue sessions: turn handling, review,
// submission, reset. Each session's state lives in the cache and is
// processed strictly turn-by-turn; sessions share nothing mutable.
type SessionService struct {
	sessions    cache.SessionCache
	reportRepo  repository.ReportRepo
	phrasing    *PhrasingService
	sheets      *SheetClient
	auth        *AuthService
	broadcaster Broadcaster
}

// NewSessionService creates a new session service.
func NewSessionService(
	sessions cache.SessionCache,
	reportRepo repository.ReportRepo,
	phrasing *PhrasingService,
	sheets *SheetClient,
	auth *AuthService,
) *SessionService {
	return &SessionService{
		sessions:   sessions,
		reportRepo: reportRepo,
		phrasing:   phrasing,
		sheets:     sheets,
		auth:       auth,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events.
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateSession starts a new dialogue session for a report mode.
func (s *SessionService) CreateSession(ctx context.Context, mode model.Mode) (*CreateSessionResponse, error) {
	if mode != model.ModeComplaint && mode != model.ModeFeedback {
		return nil, fmt.Errorf("unknown report mode %q", mode)
	}

	now := time.Now()
	id := uuid.New().String()
	machine := engine.NewMachine(mode)
	state := engine.NewState(id, mode, now)
	greeting := machine.Begin(state, now)
	state.AppendTurn(model.RoleAssistant, greeting)

	if err := s.sessions.Set(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	token, err := s.auth.GenerateSessionToken(id, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to mint session token: %w", err)
	}

	return &CreateSessionResponse{
		SessionID: id,
		Token:     token,
		Mode:      mode,
		Phase:     state.Phase,
		Greeting:  greeting,
	}, nil
}

// GetSession returns the full dialogue state for a session.
func (s *SessionService) GetSession(ctx context.Context, id string) (*model.DialogueState, error) {
	state, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if state == nil {
		return nil, ErrSessionNotFound
	}
	return state, nil
}

// HandleTurn resolves one user utterance end to end: extraction or
// classification, state transition, phrasing, persistence at the terminal
// transition, and cache write-back.
func (s *SessionService) HandleTurn(ctx context.Context, id, text string) (*TurnReply, error) {
	state, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.Phase == model.PhaseSubmitted {
		return nil, ErrSessionSubmitted
	}

	machine := engine.NewMachine(state.Mode)
	now := time.Now()
	state.AppendTurn(model.RoleUser, text)

	// A complete record with a pending submission means the previous sheet
	// append failed; this turn is a retry, not new data.
	if state.Phase == model.PhaseAsking && machine.Schema().NextUnfilled(state.Record) == nil {
		return s.finishTurn(ctx, machine, state, text, engine.TurnResult{Kind: engine.TurnCompleted}, now)
	}

	result := machine.Advance(state, text, now)

	if result.Kind == engine.TurnCompleted {
		return s.finishTurn(ctx, machine, state, text, result, now)
	}

	phrased := s.phrasing.Rephrase(ctx, PhrasingRequest{
		UserInput:  text,
		BaseText:   result.BaseText,
		PriorTurns: state.Transcript,
		TargetSlot: result.NextSlot,
		Hint:       result.Hint,
	})
	state.AppendTurn(model.RoleAssistant, phrased.Text)

	if err := s.sessions.Set(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	reply := &TurnReply{
		Reply:       phrased.Text,
		Kind:        result.Kind,
		Phase:       state.Phase,
		CurrentSlot: state.CurrentSlot,
		Recorded:    recordedSlots(machine, result.Updates),
		Fallback:    phrased.Fallback,
	}
	s.pushAssistantTurn(state, reply)
	return reply, nil
}

// finishTurn handles the terminal transition of the no-review variant:
// stamp auto fields, append to the sheet, archive, mark submitted. A failed
// append keeps the session pre-terminal so the user may retry.
func (s *SessionService) finishTurn(ctx context.Context, machine *engine.Machine, state *model.DialogueState, text string, result engine.TurnResult, now time.Time) (*TurnReply, error) {
	submitErr := s.persist(ctx, machine, state, now)

	base := submitOKText
	if submitErr != nil {
		log.Printf("[Session %s] submission failed: %v", state.ID, submitErr)
		base = submitFailText
	}

	phrased := s.phrasing.Rephrase(ctx, PhrasingRequest{
		UserInput:  text,
		BaseText:   base,
		PriorTurns: state.Transcript,
	})
	state.AppendTurn(model.RoleAssistant, phrased.Text)

	if err := s.sessions.Set(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	reply := &TurnReply{
		Reply:     phrased.Text,
		Kind:      result.Kind,
		Phase:     state.Phase,
		Recorded:  recordedSlots(machine, result.Updates),
		Submitted: submitErr == nil,
		Fallback:  phrased.Fallback,
	}
	if submitErr != nil {
		reply.SubmitError = "submission failed, please retry"
	}
	s.pushAssistantTurn(state, reply)
	if submitErr == nil {
		s.pushSubmitted(state)
	}
	return reply, nil
}

// Review returns the editable field/value table for a session awaiting
// confirmation.
func (s *SessionService) Review(ctx context.Context, id string) ([]engine.ReviewEntry, error) {
	state, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.Phase != model.PhaseReview {
		return nil, ErrNotInReview
	}
	machine := engine.NewMachine(state.Mode)
	return machine.ReviewEntries(state), nil
}

// ConfirmReview applies the review-table edits verbatim and submits.
func (s *SessionService) ConfirmReview(ctx context.Context, id string, edits map[model.SlotID]string) (*TurnReply, error) {
	state, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.Phase != model.PhaseReview {
		return nil, ErrNotInReview
	}

	machine := engine.NewMachine(state.Mode)
	now := time.Now()
	machine.ApplyEdits(state, edits)

	submitErr := s.persist(ctx, machine, state, now)

	base := submitOKText
	if submitErr != nil {
		log.Printf("[Session %s] submission failed: %v", state.ID, submitErr)
		base = submitFailText
	}
	state.AppendTurn(model.RoleAssistant, base)

	if err := s.sessions.Set(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	reply := &TurnReply{
		Reply:     base,
		Kind:      engine.TurnCompleted,
		Phase:     state.Phase,
		Submitted: submitErr == nil,
	}
	if submitErr != nil {
		reply.SubmitError = "submission failed, please retry"
	}
	s.pushAssistantTurn(state, reply)
	if submitErr == nil {
		s.pushSubmitted(state)
	}
	return reply, nil
}

// Reset clears a session back to a fresh INTRO state under the same ID.
func (s *SessionService) Reset(ctx context.Context, id string) (*CreateSessionResponse, error) {
	state, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	machine := engine.NewMachine(state.Mode)
	greeting := machine.Reset(state, time.Now())
	state.AppendTurn(model.RoleAssistant, greeting)

	if err := s.sessions.Set(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &CreateSessionResponse{
		SessionID: state.ID,
		Mode:      state.Mode,
		Phase:     state.Phase,
		Greeting:  greeting,
	}, nil
}

// persist stamps the auto fields, appends the ordered row to the sheet, and
// archives the record. The archive is best-effort once the append
// succeeded; the append is the system of record.
func (s *SessionService) persist(ctx context.Context, machine *engine.Machine, state *model.DialogueState, now time.Time) error {
	machine.Stamp(state, now)

	row := machine.Schema().Row(state.Record)
	if err := s.sheets.AppendRow(ctx, row); err != nil {
		return err
	}

	if s.reportRepo != nil {
		report := &model.SubmittedReport{
			ID:          uuid.New().String(),
			SessionID:   state.ID,
			Mode:        state.Mode,
			Fields:      fieldMap(state.Record),
			RiskLevel:   model.RiskLevel(state.Record[model.SlotUserRiskLevel]),
			SubmittedAt: now,
		}
		if err := s.reportRepo.Create(ctx, report); err != nil {
			log.Printf("[Session %s] archive failed: %v", state.ID, err)
		}
	}

	machine.MarkSubmitted(state, now)
	return nil
}

func (s *SessionService) pushAssistantTurn(state *model.DialogueState, reply *TurnReply) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToSession(state.ID, "assistant_turn", reply)
}

func (s *SessionService) pushSubmitted(state *model.DialogueState) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToOperators("session_submitted", map[string]interface{}{
		"sessionId": state.ID,
		"mode":      state.Mode,
		"riskLevel": state.Record[model.SlotUserRiskLevel],
	})
}

func recordedSlots(machine *engine.Machine, updates engine.Updates) []model.SlotID {
	if len(updates) == 0 {
		return nil
	}
	var out []model.SlotID
	for _, slot := range machine.Schema().Slots {
		if _, ok := updates[slot.ID]; ok {
			out = append(out, slot.ID)
		}
	}
	return out
}

func fieldMap(r model.Record) map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[string(k)] = v
	}
	return out
}
