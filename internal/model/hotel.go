package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hotel is a catalog entry.
type Hotel struct {
	ID          string    `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null;index"`
	Location    string    `json:"location" gorm:"size:255;not null;index"`
	Description string    `json:"description" gorm:"type:text;not null"`
	PictureList []string  `json:"picture_list" gorm:"serializer:json;type:text"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (h *Hotel) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.PictureList == nil {
		h.PictureList = []string{}
	}
	return nil
}

// HotelPatch lists the mutable catalog fields. Nil means untouched.
type HotelPatch struct {
	Name        *string
	Location    *string
	Description *string
	PictureList *[]string
}
