package models

import "time"

const (
	CertificatePending   = "pending"
	CertificateCompleted = "completed"
)

// CertificateRecord holds the one certificate a student can have.
// CertificateID never changes once assigned; CertificateURL may be cleared.
type CertificateRecord struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	StudentID         uint      `json:"student_id" gorm:"uniqueIndex;not null"`
	CertificateID     string    `json:"certificate_id" gorm:"size:32;uniqueIndex;not null"`
	CertificateURL    *string   `json:"certificate_url"`
	CertificateStatus string    `json:"certificate_status" gorm:"size:16;default:'completed'"`
	IssuedAt          time.Time `json:"issued_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CertificateSequence is the per (year, prefix) counter certificate IDs are reserved from.
type CertificateSequence struct {
	ID         uint   `gorm:"primaryKey"`
	Year       int    `gorm:"not null;uniqueIndex:idx_cert_seq_scope,priority:1"`
	Prefix     string `gorm:"size:16;not null;uniqueIndex:idx_cert_seq_scope,priority:2"`
	CurrentSeq int    `gorm:"not null;default:0"`
}

// CertificateIdentity is a certificate joined to the holder's identity fields.
type CertificateIdentity struct {
	StudentID         uint
	CertificateID     string
	CertificateURL    *string
	CertificateStatus string
	Name              string
	Email             string
	Phone             string
	Aadhar            string
	Pan               string
}
