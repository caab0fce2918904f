package model

import (
	"time"

	"gorm.io/gorm"
)

// OtpPurpose scopes a challenge to one specific flow.
// A code issued for one purpose must never satisfy verification for another.
type OtpPurpose string

const (
	PurposeCookSignup     OtpPurpose = "cook-signup"
	PurposeCustomerSignup OtpPurpose = "customer-signup"
	PurposeAdminSignIn    OtpPurpose = "admin-signin"
)

// OtpChallenge is a transient record gating signup and admin sign-in.
// At most one unconsumed challenge exists per (email, purpose); a resend
// refreshes the code and expiry in place instead of creating a second row.
type OtpChallenge struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Email     string         `gorm:"not null;uniqueIndex:idx_otp_email_purpose" json:"email"`
	Purpose   OtpPurpose     `gorm:"type:varchar(30);not null;uniqueIndex:idx_otp_email_purpose" json:"purpose"`
	OtpCode   string         `gorm:"type:varchar(10);not null" json:"-"`
	ExpiresAt time.Time      `gorm:"not null" json:"expires_at"`
	IsVerified bool          `gorm:"default:false;not null" json:"is_verified"`

	// TempData snapshots the pending registration payload (password already
	// hashed) until the challenge is consumed into a real account.
	TempData string `gorm:"type:text" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (OtpChallenge) TableName() string {
	return "otp_challenges"
}

// IsExpired reports whether the challenge is past its expiry
func (c *OtpChallenge) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// PendingRegistration is the prospective account payload held in TempData.
// It exists only inside an OtpChallenge and never reaches clients.
type PendingRegistration struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	PasswordHash string   `json:"password_hash"`
	Role         UserRole `json:"role"`
	Street       string   `json:"street"`
	HouseNo      string   `json:"house_no"`
	City         string   `json:"city"`
	PostalCode   string   `json:"postal_code"`
}
