// Package domain defines the persistence models for donations and sermon
// summaries. These types are mapped with GORM and form the core data layer
// of the giving backend.
package domain

import (
	"time"
)

// Donation represents a single verified gift. The row is keyed by the
// payment gateway's transaction reference, which makes the write path
// naturally idempotent: re-verifying the same transaction maps to the same
// primary key and cannot produce a duplicate record.
//
// Fields:
//   - Reference: gateway-assigned transaction reference, primary key.
//   - UserID: identifier of the giver's account; indexed for dashboard lists.
//   - Amount: amount in minor currency units (kobo/cents) as reported by the
//     gateway. Client-supplied amounts are never stored.
//   - Currency: ISO-style currency code from the gateway.
//   - Purpose: free-text category (e.g. "Tithes", "Offerings").
//   - Status: gateway-reported status; persisted rows carry "success".
//   - DonorName / DonorEmail: receipt metadata, not authoritative identity.
//   - CreatedAt: server-assigned at persistence time, not payment time.
type Donation struct {
	Reference  string    `json:"reference"   gorm:"type:varchar(100);primaryKey"`
	UserID     string    `json:"user_id"     gorm:"type:varchar(64);not null;index:idx_user_donations"`
	Amount     int64     `json:"amount"      gorm:"not null"`
	Currency   string    `json:"currency"    gorm:"type:varchar(8);not null"`
	Purpose    string    `json:"purpose"     gorm:"type:varchar(120);not null"`
	Status     string    `json:"status"      gorm:"type:varchar(32);not null"`
	DonorName  string    `json:"donor_name"  gorm:"type:varchar(255)"`
	DonorEmail string    `json:"donor_email" gorm:"type:varchar(255)"`
	CreatedAt  time.Time `json:"created_at"  gorm:"index"`
}

// TableName returns the database table name for Donation.
func (Donation) TableName() string { return "donations" }

// SermonSummary caches a generated summary for a sermon so the language
// model is consulted at most once per sermon.
type SermonSummary struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	SermonID  string    `json:"sermon_id"  gorm:"type:varchar(100);not null;uniqueIndex:ux_sermon_summary"`
	Title     string    `json:"title"      gorm:"type:varchar(255);not null"`
	Summary   string    `json:"summary"    gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for SermonSummary.
func (SermonSummary) TableName() string { return "sermon_summaries" }
