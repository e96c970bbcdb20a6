package models

import "time"

// CounterCaseNumber names the sequence behind Case.CaseNumber
const CounterCaseNumber = "case_number"

// Counter is a named monotonic sequence
type Counter struct {
	Name      string    `gorm:"primarykey;size:64" json:"name"`
	Value     int64     `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Counter model
func (Counter) TableName() string {
	return "counters"
}
