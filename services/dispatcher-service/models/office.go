package models

import "time"

// Office is a university unit that can receive referred cases.
type Office struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Code      string `gorm:"uniqueIndex;size:32" json:"code"`
	Name      string `gorm:"size:128" json:"name"`
	Email     string `gorm:"size:128" json:"email"`
	Active    bool   `gorm:"default:true" json:"active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Dispatch records one routing decision for audit.
type Dispatch struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	TicketNumber string `gorm:"index;size:32" json:"ticket_number"`
	ReportID     string `gorm:"size:32" json:"report_id"`
	OfficeCode   string `gorm:"size:32" json:"office_code"`
	Reason       string `gorm:"size:256" json:"reason"`
	Delivered    bool   `json:"delivered"`
	CreatedAt    time.Time
}
