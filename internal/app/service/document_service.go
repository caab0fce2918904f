package service

import (
	"errors"
	"sync"
	"time"

	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/internal/app/repository"
	"github.com/khanaghar/khanaghar-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrMissingRequiredDocument = errors.New("CNIC front, CNIC back and at least one kitchen photo are required")
	ErrAlreadyApproved         = errors.New("document is already approved")
	ErrIncompleteSubmission    = errors.New("required documents have not all been submitted")
	ErrInvalidDocumentField    = errors.New("unknown document field")
	ErrInvalidPhotoIndex       = errors.New("kitchen photo index out of range")
	ErrPacketNotFound          = errors.New("document packet not found")
	ErrCookNotFound            = errors.New("cook not found")
)

const defaultRejectionReason = "Document could not be verified"

// DocumentSubmission carries the URLs of a cook's onboarding packet
type DocumentSubmission struct {
	CNICFrontURL     string
	CNICBackURL      string
	KitchenPhotoURLs []string
	SFALicenseURL    string
	OtherURL         string
}

type DocumentService interface {
	SubmitDocuments(cookID uint, submission DocumentSubmission) (*model.DocumentPacket, error)
	ApproveDocument(cookID uint, field model.DocumentField, index *int, adminID uint) (*model.DocumentPacket, error)
	RejectDocument(cookID uint, field model.DocumentField, index *int, reason string, adminID uint) (*model.DocumentPacket, error)
	ApproveAllDocuments(cookID uint, adminID uint) (*model.DocumentPacket, error)
	GetPacket(cookID uint) (*model.DocumentPacket, error)
	ListCooksAwaitingReview() ([]model.User, error)
}

type documentService struct {
	docRepo  repository.DocumentRepository
	userRepo repository.UserRepository
	notifier Notifier

	// Serializes all writes to one cook's packet so concurrent admin actions
	// never interleave a read-modify-write (lost-update hazard).
	mu        sync.Mutex
	cookLocks map[uint]*sync.Mutex
}

func NewDocumentService(
	docRepo repository.DocumentRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
) DocumentService {
	return &documentService{
		docRepo:   docRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		cookLocks: make(map[uint]*sync.Mutex),
	}
}

func (s *documentService) lockCook(cookID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.cookLocks[cookID]
	if !ok {
		lock = &sync.Mutex{}
		s.cookLocks[cookID] = lock
	}
	return lock
}

func (s *documentService) SubmitDocuments(cookID uint, submission DocumentSubmission) (*model.DocumentPacket, error) {
	logger.Info("Processing document submission", map[string]interface{}{
		"cook_id":        cookID,
		"kitchen_photos": len(submission.KitchenPhotoURLs),
	})

	if submission.CNICFrontURL == "" || submission.CNICBackURL == "" || len(submission.KitchenPhotoURLs) == 0 {
		logger.Warn("Document submission missing required slots", map[string]interface{}{
			"cook_id": cookID,
		})
		return nil, ErrMissingRequiredDocument
	}

	cook, err := s.userRepo.FindByID(cookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCookNotFound
		}
		return nil, err
	}
	if cook.Role != model.RoleCook {
		return nil, ErrCookNotFound
	}

	lock := s.lockCook(cookID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()

	// The packet is created lazily on first submission
	packet, err := s.docRepo.FindByCookID(cookID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		packet = &model.DocumentPacket{CookID: cookID}
		if err := s.docRepo.Create(packet); err != nil {
			return nil, err
		}
	}

	packet.CNICFront = model.DocumentSlot{URL: submission.CNICFrontURL, Status: model.SlotSubmitted, UploadedAt: &now}
	packet.CNICBack = model.DocumentSlot{URL: submission.CNICBackURL, Status: model.SlotSubmitted, UploadedAt: &now}
	if submission.SFALicenseURL != "" {
		packet.SFALicense = model.DocumentSlot{URL: submission.SFALicenseURL, Status: model.SlotSubmitted, UploadedAt: &now}
	}
	if submission.OtherURL != "" {
		packet.Other = model.DocumentSlot{URL: submission.OtherURL, Status: model.SlotSubmitted, UploadedAt: &now}
	}

	// Kitchen photos are replaced wholesale, never merged
	photos := make([]model.KitchenPhoto, 0, len(submission.KitchenPhotoURLs))
	for i, url := range submission.KitchenPhotoURLs {
		photos = append(photos, model.KitchenPhoto{
			PacketID:   packet.ID,
			Position:   i,
			URL:        url,
			Status:     model.SlotSubmitted,
			UploadedAt: &now,
		})
	}
	packet.KitchenPhotos = photos

	if err := s.docRepo.Save(packet, true); err != nil {
		logger.Error("Failed to save submitted packet", err, map[string]interface{}{
			"cook_id": cookID,
		})
		return nil, err
	}

	// Submission is a packet mutation like any review action: the stored
	// aggregate follows the saved packet, so a rejected cook who resubmits
	// re-enters the pending review queue.
	aggregate := model.DeriveVerificationStatus(packet)
	if cook.VerificationStatus != aggregate {
		if err := s.userRepo.UpdateVerificationStatus(cookID, aggregate); err != nil {
			return nil, err
		}
	}

	logger.Info("Documents submitted", map[string]interface{}{
		"cook_id":   cookID,
		"packet_id": packet.ID,
	})
	return packet, nil
}

// slotByField resolves a field name to the targeted scalar slot, or to a
// kitchen photo when field is array-typed. The switch is exhaustive over the
// closed field set; index is required and bounds-checked for kitchen photos
// and ignored otherwise.
func slotByField(packet *model.DocumentPacket, field model.DocumentField, index *int) (*model.DocumentSlot, *model.KitchenPhoto, error) {
	switch field {
	case model.FieldCNICFront:
		return &packet.CNICFront, nil, nil
	case model.FieldCNICBack:
		return &packet.CNICBack, nil, nil
	case model.FieldSFALicense:
		return &packet.SFALicense, nil, nil
	case model.FieldOther:
		return &packet.Other, nil, nil
	case model.FieldKitchenPhoto:
		if index == nil || *index < 0 || *index >= len(packet.KitchenPhotos) {
			return nil, nil, ErrInvalidPhotoIndex
		}
		return nil, &packet.KitchenPhotos[*index], nil
	default:
		return nil, nil, ErrInvalidDocumentField
	}
}

func (s *documentService) ApproveDocument(cookID uint, field model.DocumentField, index *int, adminID uint) (*model.DocumentPacket, error) {
	logger.Info("Approving document", map[string]interface{}{
		"cook_id":  cookID,
		"field":    field,
		"admin_id": adminID,
	})

	lock := s.lockCook(cookID)
	lock.Lock()
	defer lock.Unlock()

	packet, previous, err := s.packetWithStatus(cookID)
	if err != nil {
		return nil, err
	}

	slot, photo, err := slotByField(packet, field, index)
	if err != nil {
		return nil, err
	}

	if slot != nil {
		if slot.Status == model.SlotApproved {
			return nil, ErrAlreadyApproved
		}
		slot.Status = model.SlotApproved
		slot.RejectedReason = ""
	} else {
		if photo.Status == model.SlotApproved {
			return nil, ErrAlreadyApproved
		}
		photo.Status = model.SlotApproved
		photo.RejectedReason = ""
	}

	return s.commitReview(packet, previous, adminID)
}

func (s *documentService) RejectDocument(cookID uint, field model.DocumentField, index *int, reason string, adminID uint) (*model.DocumentPacket, error) {
	logger.Info("Rejecting document", map[string]interface{}{
		"cook_id":  cookID,
		"field":    field,
		"admin_id": adminID,
	})

	if reason == "" {
		reason = defaultRejectionReason
	}

	lock := s.lockCook(cookID)
	lock.Lock()
	defer lock.Unlock()

	packet, previous, err := s.packetWithStatus(cookID)
	if err != nil {
		return nil, err
	}

	slot, photo, err := slotByField(packet, field, index)
	if err != nil {
		return nil, err
	}

	// Re-rejecting an already rejected slot is allowed; the reason is simply
	// overwritten.
	if slot != nil {
		slot.Status = model.SlotRejected
		slot.RejectedReason = reason
	} else {
		photo.Status = model.SlotRejected
		photo.RejectedReason = reason
	}

	return s.commitReview(packet, previous, adminID)
}

func (s *documentService) ApproveAllDocuments(cookID uint, adminID uint) (*model.DocumentPacket, error) {
	logger.Info("Approving all documents", map[string]interface{}{
		"cook_id":  cookID,
		"admin_id": adminID,
	})

	lock := s.lockCook(cookID)
	lock.Lock()
	defer lock.Unlock()

	packet, previous, err := s.packetWithStatus(cookID)
	if err != nil {
		return nil, err
	}

	// Preconditions checked before any slot is touched
	if !packet.RequiredSubmitted() {
		logger.Warn("Approve-all rejected: incomplete submission", map[string]interface{}{
			"cook_id": cookID,
		})
		return nil, ErrIncompleteSubmission
	}

	// Bulk-approve every slot that has at least been submitted, including
	// previously rejected ones.
	approveSlot := func(slot *model.DocumentSlot) {
		if slot.Submitted() {
			slot.Status = model.SlotApproved
			slot.RejectedReason = ""
		}
	}
	approveSlot(&packet.CNICFront)
	approveSlot(&packet.CNICBack)
	approveSlot(&packet.SFALicense)
	approveSlot(&packet.Other)
	for i := range packet.KitchenPhotos {
		if packet.KitchenPhotos[i].Status != model.SlotNotSubmitted {
			packet.KitchenPhotos[i].Status = model.SlotApproved
			packet.KitchenPhotos[i].RejectedReason = ""
		}
	}

	return s.commitReview(packet, previous, adminID)
}

// packetWithStatus loads the packet and the cook's aggregate status as held
// before this mutation, for change detection after recompute.
func (s *documentService) packetWithStatus(cookID uint) (*model.DocumentPacket, model.VerificationStatus, error) {
	packet, err := s.docRepo.FindByCookID(cookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrPacketNotFound
		}
		return nil, "", err
	}

	cook, err := s.userRepo.FindByID(cookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrCookNotFound
		}
		return nil, "", err
	}

	return packet, cook.VerificationStatus, nil
}

// commitReview stamps the packet metadata, persists it, recomputes the
// aggregate status and dispatches the transition notification when the
// aggregate lands on approved or rejected. Notification failure never rolls
// back the committed status change.
func (s *documentService) commitReview(packet *model.DocumentPacket, previous model.VerificationStatus, adminID uint) (*model.DocumentPacket, error) {
	now := time.Now()
	packet.VerifiedBy = &adminID
	packet.VerifiedAt = &now

	if err := s.docRepo.Save(packet, false); err != nil {
		logger.Error("Failed to persist reviewed packet", err, map[string]interface{}{
			"packet_id": packet.ID,
		})
		return nil, err
	}

	aggregate := model.DeriveVerificationStatus(packet)
	if err := s.userRepo.UpdateVerificationStatus(packet.CookID, aggregate); err != nil {
		return nil, err
	}

	logger.Info("Aggregate verification status recomputed", map[string]interface{}{
		"cook_id":  packet.CookID,
		"previous": previous,
		"current":  aggregate,
	})

	if aggregate != previous {
		s.notifyTransition(packet, aggregate)
	}

	return packet, nil
}

func (s *documentService) notifyTransition(packet *model.DocumentPacket, aggregate model.VerificationStatus) {
	if aggregate != model.VerificationApproved && aggregate != model.VerificationRejected {
		return
	}

	cook, err := s.userRepo.FindByID(packet.CookID)
	if err != nil {
		logger.Error("Failed to load cook for status notification", err, map[string]interface{}{
			"cook_id": packet.CookID,
		})
		return
	}

	// Best effort: the status mutation is already committed and must not be
	// undone by a notification failure.
	switch aggregate {
	case model.VerificationApproved:
		if err := s.notifier.SendVerificationApproved(cook.Email, cook.Name); err != nil {
			logger.Error("Failed to send approval notification", err, map[string]interface{}{
				"cook_id": cook.ID,
			})
		}
	case model.VerificationRejected:
		if err := s.notifier.SendVerificationRejected(cook.Email, cook.Name, packet.RejectedSlots()); err != nil {
			logger.Error("Failed to send rejection notification", err, map[string]interface{}{
				"cook_id": cook.ID,
			})
		}
	}
}

func (s *documentService) GetPacket(cookID uint) (*model.DocumentPacket, error) {
	packet, err := s.docRepo.FindByCookID(cookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPacketNotFound
		}
		return nil, err
	}
	return packet, nil
}

func (s *documentService) ListCooksAwaitingReview() ([]model.User, error) {
	cooks, err := s.userRepo.FindCooksByVerificationStatus(model.VerificationPending)
	if err != nil {
		return nil, err
	}

	logger.Debug("Cooks awaiting review fetched", map[string]interface{}{
		"count": len(cooks),
	})
	return cooks, nil
}
