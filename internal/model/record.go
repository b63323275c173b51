package model

// Mode selects which report form a session is collecting
type Mode string

const (
	ModeComplaint Mode = "COMPLAINT"
	ModeFeedback  Mode = "FEEDBACK"
)

// SlotID identifies a single field of the structured record. The string
// values double as the spreadsheet column names, so they must stay in sync
// with the sheet header row.
type SlotID string

// Complaint slots (incident intake)
const (
	SlotMake            SlotID = "Make"
	SlotModel           SlotID = "Model"
	SlotModelYear       SlotID = "Model_Year"
	SlotVIN             SlotID = "VIN"
	SlotCity            SlotID = "City"
	SlotState           SlotID = "State"
	SlotSpeed           SlotID = "Speed"
	SlotCrash           SlotID = "Crash"
	SlotFire            SlotID = "Fire"
	SlotInjured         SlotID = "Injured"
	SlotDeaths          SlotID = "Deaths"
	SlotDescription     SlotID = "Description"
	SlotComponent       SlotID = "Component"
	SlotMileage         SlotID = "Mileage"
	SlotTechnicianNotes SlotID = "Technician_Notes"
	SlotBrakeCondition  SlotID = "Brake_Condition"
	SlotEngineTemp      SlotID = "Engine_Temperature"
	SlotDateComplaint   SlotID = "Date_Complaint"
)

// Feedback slots (ownership feedback intake)
const (
	SlotUsageType      SlotID = "Usage_Type"
	SlotSatisfaction   SlotID = "Satisfaction"
	SlotLikedMost      SlotID = "Liked_Most"
	SlotDislikedMost   SlotID = "Disliked_Most"
	SlotWouldRecommend SlotID = "Would_Recommend"
	SlotComments       SlotID = "Comments"
)

// Auto-filled slots, never prompted for
const (
	SlotTimestamp      SlotID = "Timestamp"
	SlotInputLength    SlotID = "Input_Length"
	SlotSuspicionScore SlotID = "Suspicion_Score"
	SlotUserRiskLevel  SlotID = "User_Risk_Level"
)

// Record maps slots to collected values. A missing key means the slot is
// still unanswered; an empty string is a real (empty) answer.
type Record map[SlotID]string

// Has reports whether the slot holds a value.
func (r Record) Has(id SlotID) bool {
	_, ok := r[id]
	return ok
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
