package model

import (
	"time"

	"github.com/google/uuid"
)

// Client is the identity key for order ownership.
type Client struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `gorm:"index;not null"`
	// Documento is the national ID (DNI/RUC); unique when present.
	Documento *string `gorm:"uniqueIndex"`
	Phone     *string
	Email     *string
	Address   *string
	District  *string
	City      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Client) TableName() string { return "clients" }
