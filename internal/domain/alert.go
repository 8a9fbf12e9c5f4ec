package domain

import "time"

// StudentAlert is an escalation record raised when a completed AI response
// carries an ORANGE or RED risk level. Immutable once created; the store
// keeps only the most recent records.
type StudentAlert struct {
	ID          string    `json:"id"`
	StudentName string    `json:"studentName"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	LastMessage string    `json:"lastMessage"`
	Timestamp   time.Time `json:"timestamp"`
	PersonaUsed PersonaID `json:"personaUsed"`
}
