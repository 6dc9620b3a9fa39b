package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base holds the identity, timestamps and optimistic-concurrency version
// shared by every persisted entity.
type Base struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	Version   uint64    `gorm:"not null" json:"version"`
}

// BeforeCreate assigns a UUID when the caller did not supply one.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Version == 0 {
		b.Version = 1
	}
	return nil
}

func (b *Base) GetID() string             { return b.ID }
func (b *Base) CurrentVersion() uint64    { return b.Version }
func (b *Base) SetVersion(version uint64) { b.Version = version }

// Versioned is implemented by every entity embedding Base.
type Versioned interface {
	GetID() string
	CurrentVersion() uint64
	SetVersion(uint64)
}
