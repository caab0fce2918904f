package repository

import (
	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/pkg/logger"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	FindByCookID(cookID uint) (*model.DocumentPacket, error)
	Create(packet *model.DocumentPacket) error
	// Save persists the packet and replaces its kitchen photos wholesale when
	// replacePhotos is set. The whole write runs in one transaction so no
	// partially-updated packet is ever visible to readers.
	Save(packet *model.DocumentPacket, replacePhotos bool) error
	UpdatePhoto(photo *model.KitchenPhoto) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) FindByCookID(cookID uint) (*model.DocumentPacket, error) {
	var packet model.DocumentPacket
	err := r.db.
		Preload("KitchenPhotos", func(db *gorm.DB) *gorm.DB {
			return db.Order("kitchen_photos.position ASC")
		}).
		Where("cook_id = ?", cookID).
		First(&packet).Error
	if err != nil {
		return nil, err
	}
	return &packet, nil
}

func (r *documentRepository) Create(packet *model.DocumentPacket) error {
	logger.Debug("Creating document packet", map[string]interface{}{
		"cook_id": packet.CookID,
	})

	if err := r.db.Create(packet).Error; err != nil {
		logger.Error("Failed to create document packet", err, map[string]interface{}{
			"cook_id": packet.CookID,
		})
		return err
	}
	return nil
}

func (r *documentRepository) Save(packet *model.DocumentPacket, replacePhotos bool) error {
	logger.Debug("Saving document packet", map[string]interface{}{
		"packet_id": packet.ID,
		"cook_id":   packet.CookID,
	})

	return r.db.Transaction(func(tx *gorm.DB) error {
		if replacePhotos {
			if err := tx.Unscoped().
				Where("packet_id = ?", packet.ID).
				Delete(&model.KitchenPhoto{}).Error; err != nil {
				return err
			}
			for i := range packet.KitchenPhotos {
				packet.KitchenPhotos[i].ID = 0
				packet.KitchenPhotos[i].PacketID = packet.ID
			}
		}

		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(packet).Error; err != nil {
			logger.Error("Failed to save document packet", err, map[string]interface{}{
				"packet_id": packet.ID,
			})
			return err
		}
		return nil
	})
}

func (r *documentRepository) UpdatePhoto(photo *model.KitchenPhoto) error {
	return r.db.Save(photo).Error
}
