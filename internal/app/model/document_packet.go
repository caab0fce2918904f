package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SlotStatus is the review state of a single document slot
type SlotStatus string

const (
	SlotNotSubmitted SlotStatus = "not_submitted"
	SlotSubmitted    SlotStatus = "submitted"
	SlotApproved     SlotStatus = "approved"
	SlotRejected     SlotStatus = "rejected"
)

// DocumentField names a reviewable slot. The set is closed; approve/reject
// dispatch over it exhaustively instead of looking fields up by name.
type DocumentField string

const (
	FieldCNICFront    DocumentField = "cnic_front"
	FieldCNICBack     DocumentField = "cnic_back"
	FieldKitchenPhoto DocumentField = "kitchen_photo" // array-typed, needs an index
	FieldSFALicense   DocumentField = "sfa_license"
	FieldOther        DocumentField = "other"
)

// ParseDocumentField validates a client-supplied field name
func ParseDocumentField(s string) (DocumentField, bool) {
	switch DocumentField(s) {
	case FieldCNICFront, FieldCNICBack, FieldKitchenPhoto, FieldSFALicense, FieldOther:
		return DocumentField(s), true
	default:
		return "", false
	}
}

// DocumentSlot is one reviewable document within a packet
type DocumentSlot struct {
	URL            string     `json:"url,omitempty"`
	Status         SlotStatus `gorm:"type:varchar(20);default:'not_submitted'" json:"status"`
	RejectedReason string     `gorm:"type:text" json:"rejected_reason,omitempty"` // meaningful only while rejected
	UploadedAt     *time.Time `json:"uploaded_at,omitempty"`
}

// Submitted reports whether the slot holds an upload. The zero value and the
// explicit not_submitted marker both count as absent.
func (s *DocumentSlot) Submitted() bool {
	return s.Status != "" && s.Status != SlotNotSubmitted
}

// KitchenPhoto is one entry of the repeatable kitchen-photo slot
type KitchenPhoto struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	PacketID       uint       `gorm:"not null;index" json:"-"`
	Position       int        `gorm:"not null" json:"position"`
	URL            string     `gorm:"type:text;not null" json:"url"`
	Status         SlotStatus `gorm:"type:varchar(20);default:'submitted'" json:"status"`
	RejectedReason string     `gorm:"type:text" json:"rejected_reason,omitempty"`
	UploadedAt     *time.Time `json:"uploaded_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (KitchenPhoto) TableName() string {
	return "kitchen_photos"
}

// DocumentPacket is a cook's onboarding packet, one per cook, created lazily
// on first submission. CNIC front/back and at least one kitchen photo are
// required; the SFA license and "other" slots are informational extras.
type DocumentPacket struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CookID    uint           `gorm:"uniqueIndex;not null" json:"cook_id"`
	Cook      User           `gorm:"foreignKey:CookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	CNICFront  DocumentSlot `gorm:"embedded;embeddedPrefix:cnic_front_" json:"cnic_front"`
	CNICBack   DocumentSlot `gorm:"embedded;embeddedPrefix:cnic_back_" json:"cnic_back"`
	SFALicense DocumentSlot `gorm:"embedded;embeddedPrefix:sfa_license_" json:"sfa_license"`
	Other      DocumentSlot `gorm:"embedded;embeddedPrefix:other_" json:"other"`

	KitchenPhotos []KitchenPhoto `gorm:"foreignKey:PacketID;constraint:OnDelete:CASCADE" json:"kitchen_photos"`

	// Last admin touch, stamped on every approve/reject/approve-all
	VerifiedBy *uint      `json:"verified_by,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (DocumentPacket) TableName() string {
	return "document_packets"
}

// RequiredSubmitted reports whether CNIC front, CNIC back and at least one
// kitchen photo have all been submitted (i.e. are beyond not_submitted).
func (p *DocumentPacket) RequiredSubmitted() bool {
	if !p.CNICFront.Submitted() || !p.CNICBack.Submitted() {
		return false
	}
	for _, photo := range p.KitchenPhotos {
		if photo.Status != "" && photo.Status != SlotNotSubmitted {
			return true
		}
	}
	return false
}

// RejectedSlots returns every currently rejected slot with its reason,
// keyed by a human-readable slot label.
func (p *DocumentPacket) RejectedSlots() map[string]string {
	rejected := make(map[string]string)
	if p.CNICFront.Status == SlotRejected {
		rejected["CNIC front"] = p.CNICFront.RejectedReason
	}
	if p.CNICBack.Status == SlotRejected {
		rejected["CNIC back"] = p.CNICBack.RejectedReason
	}
	if p.SFALicense.Status == SlotRejected {
		rejected["SFA license"] = p.SFALicense.RejectedReason
	}
	if p.Other.Status == SlotRejected {
		rejected["Other document"] = p.Other.RejectedReason
	}
	for i, photo := range p.KitchenPhotos {
		if photo.Status == SlotRejected {
			rejected[kitchenPhotoLabel(i)] = photo.RejectedReason
		}
	}
	return rejected
}

func kitchenPhotoLabel(index int) string {
	return fmt.Sprintf("Kitchen photo #%d", index+1)
}

// DeriveVerificationStatus computes the cook's aggregate verification status
// from the packet's slot states. Pure function, first matching rule wins.
// The SFA license and "other" slots never influence the aggregate.
func DeriveVerificationStatus(p *DocumentPacket) VerificationStatus {
	cnicSubmitted := p.CNICFront.Submitted() && p.CNICBack.Submitted()

	anyPhotoSubmitted := false
	anyPhotoRejected := false
	anyPhotoAwaiting := false
	anyPhotoApproved := false
	for _, photo := range p.KitchenPhotos {
		switch photo.Status {
		case SlotSubmitted:
			anyPhotoSubmitted = true
			anyPhotoAwaiting = true
		case SlotRejected:
			anyPhotoSubmitted = true
			anyPhotoRejected = true
		case SlotApproved:
			anyPhotoSubmitted = true
			anyPhotoApproved = true
		}
	}

	// 1. Nothing usable submitted yet
	if !cnicSubmitted && !anyPhotoSubmitted {
		return VerificationNotSubmitted
	}

	// 2. Any required slot rejected
	if p.CNICFront.Status == SlotRejected || p.CNICBack.Status == SlotRejected || anyPhotoRejected {
		return VerificationRejected
	}

	// 3. Any required slot still awaiting review
	if p.CNICFront.Status == SlotSubmitted || p.CNICBack.Status == SlotSubmitted || anyPhotoAwaiting {
		return VerificationPending
	}

	// 4. Both CNIC sides approved and at least one kitchen photo approved
	if p.CNICFront.Status == SlotApproved && p.CNICBack.Status == SlotApproved && anyPhotoApproved {
		return VerificationApproved
	}

	// 5. Safety default for indeterminate combinations
	return VerificationPending
}
