package model

import "time"

// SubmittedReport is the archived copy of a completed record. The sheet
// append remains the system of record; this archive exists so operators can
// query submissions without spreadsheet access.
type SubmittedReport struct {
	ID          string            `json:"id" bson:"_id,omitempty"`
	SessionID   string            `json:"sessionId" bson:"sessionId"`
	Mode        Mode              `json:"mode" bson:"mode"`
	Fields      map[string]string `json:"fields" bson:"fields"`
	RiskLevel   RiskLevel         `json:"riskLevel" bson:"riskLevel"`
	SubmittedAt time.Time         `json:"submittedAt" bson:"submittedAt"`
}
