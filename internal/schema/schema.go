package schema

import "roadreport/internal/model"

// Kind drives per-slot validation in the relevance classifier and the
// direct-mapping exceptions in the extractor.
type Kind string

const (
	KindText  Kind = "text"
	KindYear  Kind = "year"
	KindYesNo Kind = "yesno"
	KindCount Kind = "count"
	KindState Kind = "state"
	KindVIN   Kind = "vin"
)

// Slot is one field of a report form.
type Slot struct {
	ID     model.SlotID
	Prompt string
	Kind   Kind
	Auto   bool // filled by the system, never prompted
}

// Schema is the ordered field list for one report mode. Order is exactly
// declaration order; the sheet row layout and the ask traversal both follow
// it.
type Schema struct {
	Mode  model.Mode
	Slots []Slot
}

var complaintSchema = &Schema{
	Mode: model.ModeComplaint,
	Slots: []Slot{
		{ID: model.SlotTimestamp, Auto: true},
		{ID: model.SlotMake, Prompt: "What is the vehicle brand? (e.g., Ford, Toyota)", Kind: KindText},
		{ID: model.SlotModel, Prompt: "Which model is it? (e.g., Camry, Civic)", Kind: KindText},
		{ID: model.SlotModelYear, Prompt: "What is the model year? (e.g., 2022)", Kind: KindYear},
		{ID: model.SlotVIN, Prompt: "Do you have the VIN? (17 characters, or type 'skip')", Kind: KindVIN},
		{ID: model.SlotCity, Prompt: "Which city did this happen in?", Kind: KindText},
		{ID: model.SlotState, Prompt: "Which state? (2 letter code like CA, NY)", Kind: KindState},
		{ID: model.SlotSpeed, Prompt: "How fast was the vehicle going? (e.g., 65 mph)", Kind: KindText},
		{ID: model.SlotCrash, Prompt: "Was there a crash? (Yes/No)", Kind: KindYesNo},
		{ID: model.SlotFire, Prompt: "Was there a fire? (Yes/No)", Kind: KindYesNo},
		{ID: model.SlotInjured, Prompt: "Were there any injuries? (Enter number)", Kind: KindCount},
		{ID: model.SlotDeaths, Prompt: "Were there any fatalities? (Enter number)", Kind: KindCount},
		{ID: model.SlotDescription, Prompt: "Please describe exactly what happened.", Kind: KindText},
		{ID: model.SlotComponent, Prompt: "Which component failed? (brakes, engine, transmission, etc.)", Kind: KindText},
		{ID: model.SlotMileage, Prompt: "What was the mileage at the time?", Kind: KindText},
		{ID: model.SlotTechnicianNotes, Prompt: "Any notes from a technician or mechanic?", Kind: KindText},
		{ID: model.SlotBrakeCondition, Prompt: "How were the brakes? (Good / Worn / Failed)", Kind: KindText},
		{ID: model.SlotEngineTemp, Prompt: "Engine temperature (if known)?", Kind: KindText},
		{ID: model.SlotDateComplaint, Prompt: "When did this issue occur? (YYYY-MM-DD)", Kind: KindText},
		{ID: model.SlotInputLength, Auto: true},
		{ID: model.SlotSuspicionScore, Auto: true},
		{ID: model.SlotUserRiskLevel, Auto: true},
	},
}

var feedbackSchema = &Schema{
	Mode: model.ModeFeedback,
	Slots: []Slot{
		{ID: model.SlotTimestamp, Auto: true},
		{ID: model.SlotMake, Prompt: "What is the vehicle brand? (e.g., Ford, Toyota)", Kind: KindText},
		{ID: model.SlotModel, Prompt: "Which model is it? (e.g., Camry, Civic)", Kind: KindText},
		{ID: model.SlotModelYear, Prompt: "What is the model year? (e.g., 2022)", Kind: KindYear},
		{ID: model.SlotMileage, Prompt: "Roughly how many miles are on it?", Kind: KindText},
		{ID: model.SlotUsageType, Prompt: "What do you mainly use the vehicle for? (commuting, family, work...)", Kind: KindText},
		{ID: model.SlotSatisfaction, Prompt: "How satisfied are you overall, 1 to 5?", Kind: KindCount},
		{ID: model.SlotLikedMost, Prompt: "What do you like most about it?", Kind: KindText},
		{ID: model.SlotDislikedMost, Prompt: "What do you like least?", Kind: KindText},
		{ID: model.SlotWouldRecommend, Prompt: "Would you recommend this vehicle? (Yes/No)", Kind: KindYesNo},
		{ID: model.SlotComments, Prompt: "Anything else you'd like us to know?", Kind: KindText},
		{ID: model.SlotInputLength, Auto: true},
		{ID: model.SlotSuspicionScore, Auto: true},
		{ID: model.SlotUserRiskLevel, Auto: true},
	},
}

// ForMode returns the schema for a report mode. Schemas are fixed at build
// time and shared read-only across sessions.
func ForMode(m model.Mode) *Schema {
	if m == model.ModeFeedback {
		return feedbackSchema
	}
	return complaintSchema
}

// NextUnfilled scans the ordered field list, skipping auto slots, and
// returns the first slot with no value. nil means every askable slot is
// filled; that is the terminal signal, not an error.
func (s *Schema) NextUnfilled(r model.Record) *model.SlotID {
	for i := range s.Slots {
		if s.Slots[i].Auto {
			continue
		}
		if !r.Has(s.Slots[i].ID) {
			id := s.Slots[i].ID
			return &id
		}
	}
	return nil
}

// SlotByID looks up a slot definition. Returns nil for unknown IDs.
func (s *Schema) SlotByID(id model.SlotID) *Slot {
	for i := range s.Slots {
		if s.Slots[i].ID == id {
			return &s.Slots[i]
		}
	}
	return nil
}

// Askable returns the non-auto slots in schema order.
func (s *Schema) Askable() []Slot {
	out := make([]Slot, 0, len(s.Slots))
	for _, sl := range s.Slots {
		if !sl.Auto {
			out = append(out, sl)
		}
	}
	return out
}

// Row coerces the record into the ordered string row the sheet expects.
// Missing values become empty strings.
func (s *Schema) Row(r model.Record) []string {
	row := make([]string, len(s.Slots))
	for i := range s.Slots {
		row[i] = r[s.Slots[i].ID]
	}
	return row
}

// Header returns the column names in row order.
func (s *Schema) Header() []string {
	h := make([]string, len(s.Slots))
	for i := range s.Slots {
		h[i] = string(s.Slots[i].ID)
	}
	return h
}
