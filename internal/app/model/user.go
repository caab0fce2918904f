package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleCook     UserRole = "cook"
	RoleAdmin    UserRole = "admin"
)

type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
)

// VerificationStatus is a cook's aggregate document review state
type VerificationStatus string

const (
	VerificationNotStarted   VerificationStatus = "not_started"
	VerificationNotSubmitted VerificationStatus = "not_submitted"
	VerificationPending      VerificationStatus = "pending"
	VerificationApproved     VerificationStatus = "approved"
	VerificationRejected     VerificationStatus = "rejected"
)

type ServiceStatus string

const (
	ServiceOpen   ServiceStatus = "open"
	ServiceClosed ServiceStatus = "closed"
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Phone        string         `json:"phone"`
	Street       string         `gorm:"not null" json:"street"`
	HouseNo      string         `json:"house_no"`
	City         string         `json:"city"`
	PostalCode   string         `json:"postal_code"`
	Role         UserRole       `gorm:"type:varchar(20);default:'customer';index" json:"role"`
	Status       AccountStatus  `gorm:"type:varchar(20);default:'active'" json:"status"`
	StatusReason string         `gorm:"type:text" json:"status_reason,omitempty"` // non-empty only while suspended

	// Cook-only fields
	VerificationStatus VerificationStatus `gorm:"type:varchar(20);default:'not_started';index" json:"verification_status,omitempty"`
	ServiceStatus      ServiceStatus      `gorm:"type:varchar(20);default:'closed'" json:"service_status,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	DocumentPacket *DocumentPacket `gorm:"foreignKey:CookID" json:"document_packet,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// LandingRoute derives the front-end route a cook is allowed to land on.
// Pure function of the aggregate verification status, recomputed on every
// authorization check and never stored.
func LandingRoute(status VerificationStatus) string {
	switch status {
	case VerificationNotStarted, VerificationNotSubmitted:
		return "document-upload"
	case VerificationPending, VerificationRejected:
		return "status-page"
	case VerificationApproved:
		return "full-dashboard"
	default:
		return "document-upload"
	}
}
