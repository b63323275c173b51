package engine

import (
	"strconv"
	"strings"
	"time"

	"roadreport/internal/model"
	"roadreport/internal/schema"
)

// TurnKind tells the caller what happened this turn.
type TurnKind string

const (
	TurnGreeting    TurnKind = "greeting"     // canned reinterpretation of the current prompt
	TurnRecorded    TurnKind = "recorded"     // updates applied, next prompt emitted
	TurnClarify     TurnKind = "clarify"      // no rule matched, re-prompt same slot
	TurnSmallTalk   TurnKind = "small_talk"   // classifier rejected input, re-prompt
	TurnReviewReady TurnKind = "review_ready" // all slots filled, awaiting review confirm
	TurnCompleted   TurnKind = "completed"    // all slots filled, ready to persist
	TurnIgnored     TurnKind = "ignored"      // session already terminal
)

// StatusHint is passed to the phrasing collaborator.
type StatusHint string

const (
	HintMissing   StatusHint = "MISSING"
	HintSmallTalk StatusHint = "SMALL_TALK"
)

// TurnResult is what one user utterance produced.
type TurnResult struct {
	Kind     TurnKind
	Updates  Updates
	NextSlot *model.SlotID
	BaseText string
	Hint     StatusHint
	Risk     *model.RiskAnnotation
}

// ReviewEntry is one row of the review table.
type ReviewEntry struct {
	Field model.SlotID `json:"field"`
	Value string       `json:"value"`
}

const timestampLayout = "2006-01-02 15:04:05"

// Machine drives one report mode's dialogue. It owns no session state of
// its own; callers pass the DialogueState they own. Safe for concurrent use
// across sessions.
type Machine struct {
	sch *schema.Schema
}

func NewMachine(mode model.Mode) *Machine {
	return &Machine{sch: schema.ForMode(mode)}
}

func (m *Machine) Schema() *schema.Schema { return m.sch }

// NewState creates an empty INTRO state for a session.
func NewState(id string, mode model.Mode, now time.Time) *model.DialogueState {
	return &model.DialogueState{
		ID:        id,
		Mode:      mode,
		Phase:     model.PhaseIntro,
		Record:    make(model.Record),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Begin moves INTRO → ASKING, points at the first askable slot, and returns
// the welcome text the phrasing layer should deliver.
func (m *Machine) Begin(st *model.DialogueState, now time.Time) string {
	st.CurrentSlot = m.sch.NextUnfilled(st.Record)
	st.Phase = model.PhaseAsking
	st.UpdatedAt = now
	if st.Mode == model.ModeFeedback {
		return "Welcome! Tell us about your vehicle and we'll walk through a few quick questions."
	}
	return "Welcome to the Vehicle Safety Reporting System. Please describe the incident or issue you experienced."
}

// Advance resolves one user utterance: extraction or classification, record
// merge, slot advance, and the terminal transition when the schema is
// exhausted. The utterance is fully resolved before the next one is
// accepted; there is no concurrent processing of turns within a session.
func (m *Machine) Advance(st *model.DialogueState, text string, now time.Time) TurnResult {
	if st.Phase == model.PhaseReview {
		return TurnResult{Kind: TurnIgnored, BaseText: "Your answers are awaiting review. Confirm or edit them to submit."}
	}
	if st.Phase != model.PhaseAsking {
		return TurnResult{Kind: TurnIgnored, BaseText: "This report is already submitted. Start a new session to file another."}
	}
	st.UpdatedAt = now

	if st.Mode == model.ModeFeedback {
		return m.advanceClassified(st, text)
	}
	return m.advanceExtracted(st, text)
}

// advanceExtracted is the opportunistic multi-field variant (COMPLAINT).
func (m *Machine) advanceExtracted(st *model.DialogueState, text string) TurnResult {
	if IsGreeting(text) {
		return TurnResult{
			Kind:     TurnGreeting,
			NextSlot: st.CurrentSlot,
			BaseText: "Hello! Please describe the vehicle incident or safety concern in your own words.",
			Hint:     HintSmallTalk,
		}
	}

	risk := m.annotateRisk(st, text)

	updates := Extract(text, st.Record, st.CurrentSlot, m.sch)
	if len(updates) == 0 {
		return TurnResult{
			Kind:     TurnClarify,
			NextSlot: st.CurrentSlot,
			BaseText: "I didn't catch that. " + m.currentPrompt(st),
			Hint:     HintMissing,
			Risk:     risk,
		}
	}

	m.merge(st, updates)
	next := m.sch.NextUnfilled(st.Record)
	st.CurrentSlot = next

	if next == nil {
		return TurnResult{Kind: TurnCompleted, Updates: updates, Risk: risk}
	}

	return TurnResult{
		Kind:     TurnRecorded,
		Updates:  updates,
		NextSlot: next,
		BaseText: "Recorded: " + m.recordedList(updates) + ".\n\n" + m.promptFor(*next),
		Hint:     HintMissing,
		Risk:     risk,
	}
}

// advanceClassified is the strict one-question-at-a-time variant (FEEDBACK).
func (m *Machine) advanceClassified(st *model.DialogueState, text string) TurnResult {
	slot := m.sch.SlotByID(*st.CurrentSlot)

	clean := strings.TrimSpace(text)
	if fillers[strings.ToLower(clean)] {
		return TurnResult{
			Kind:     TurnSmallTalk,
			NextSlot: st.CurrentSlot,
			BaseText: "No rush! Whenever you're ready: " + slot.Prompt,
			Hint:     HintSmallTalk,
		}
	}

	risk := m.annotateRisk(st, text)

	isData, val := Classify(slot, text)
	if !isData {
		return TurnResult{
			Kind:     TurnSmallTalk,
			NextSlot: st.CurrentSlot,
			BaseText: "Let's keep going. " + slot.Prompt,
			Hint:     HintSmallTalk,
			Risk:     risk,
		}
	}

	updates := Updates{slot.ID: val}
	m.merge(st, updates)
	next := m.sch.NextUnfilled(st.Record)
	st.CurrentSlot = next

	if next == nil {
		st.Phase = model.PhaseReview
		return TurnResult{
			Kind:     TurnReviewReady,
			Updates:  updates,
			BaseText: "That's everything I needed. Please review your answers and confirm.",
			Risk:     risk,
		}
	}

	return TurnResult{
		Kind:     TurnRecorded,
		Updates:  updates,
		NextSlot: next,
		BaseText: "Recorded: " + string(slot.ID) + ".\n\n" + m.promptFor(*next),
		Hint:     HintMissing,
		Risk:     risk,
	}
}

// merge applies updates without silently overwriting existing values. Only
// the slot that was this turn's target may replace a non-null value.
func (m *Machine) merge(st *model.DialogueState, updates Updates) {
	for id, v := range updates {
		if st.Record.Has(id) && (st.CurrentSlot == nil || id != *st.CurrentSlot) {
			continue
		}
		st.Record[id] = v
	}
}

// annotateRisk scores the utterance and stores the annotation on the
// record's auto fields. It never influences what happens next.
func (m *Machine) annotateRisk(st *model.DialogueState, text string) *model.RiskAnnotation {
	risk := ScoreRisk(text)
	st.Record[model.SlotInputLength] = strconv.Itoa(risk.InputLength)
	st.Record[model.SlotSuspicionScore] = strconv.Itoa(risk.SuspicionScore)
	st.Record[model.SlotUserRiskLevel] = string(risk.RiskLevel)
	return &risk
}

// ReviewEntries lists the non-null, non-derived fields in schema order.
func (m *Machine) ReviewEntries(st *model.DialogueState) []ReviewEntry {
	var out []ReviewEntry
	for _, slot := range m.sch.Askable() {
		if st.Record.Has(slot.ID) {
			out = append(out, ReviewEntry{Field: slot.ID, Value: st.Record[slot.ID]})
		}
	}
	return out
}

// ApplyEdits applies review-table edits verbatim. Last writer wins, no
// re-validation. Auto fields and unknown slots are ignored.
func (m *Machine) ApplyEdits(st *model.DialogueState, edits map[model.SlotID]string) {
	for id, v := range edits {
		slot := m.sch.SlotByID(id)
		if slot == nil || slot.Auto {
			continue
		}
		st.Record[id] = v
	}
}

// Stamp fills the timestamp auto field just before persistence.
func (m *Machine) Stamp(st *model.DialogueState, now time.Time) {
	st.Record[model.SlotTimestamp] = now.Format(timestampLayout)
}

// MarkSubmitted is called only after the persistence call succeeded; a
// failed append leaves the session pre-terminal so the user can retry.
func (m *Machine) MarkSubmitted(st *model.DialogueState, now time.Time) {
	st.Phase = model.PhaseSubmitted
	st.CurrentSlot = nil
	st.SubmittedAt = &now
	st.UpdatedAt = now
}

// Reset clears all session state and returns to INTRO, then immediately
// begins a fresh ask cycle. Returns the welcome-back text.
func (m *Machine) Reset(st *model.DialogueState, now time.Time) string {
	st.Record = make(model.Record)
	st.Transcript = nil
	st.SubmittedAt = nil
	st.Phase = model.PhaseIntro
	m.Begin(st, now)
	if st.Mode == model.ModeFeedback {
		return "Welcome back. Let's start over with your vehicle feedback."
	}
	return "Welcome back. Please describe the new incident."
}

func (m *Machine) currentPrompt(st *model.DialogueState) string {
	if st.CurrentSlot == nil {
		return "Could you clarify?"
	}
	return m.promptFor(*st.CurrentSlot)
}

func (m *Machine) promptFor(id model.SlotID) string {
	if slot := m.sch.SlotByID(id); slot != nil {
		return slot.Prompt
	}
	return "Could you clarify?"
}

// recordedList joins updated slot names in schema order so replies are
// deterministic.
func (m *Machine) recordedList(updates Updates) string {
	var names []string
	for _, slot := range m.sch.Slots {
		if _, ok := updates[slot.ID]; ok {
			names = append(names, string(slot.ID))
		}
	}
	return strings.Join(names, ", ")
}
