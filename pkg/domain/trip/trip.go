package trip

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Trip is a traveler's saved plan: destination, dates, and any generated
// artifacts (phrasebooks, notes) they chose to keep.
type Trip struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Subject     string    `json:"-" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Destination string    `json:"destination" gorm:"not null"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Notes       string    `json:"notes"`
	Phrasebook  string    `json:"phrasebook,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Trip) TableName() string {
	return "trips"
}

type Repository interface {
	Save(ctx context.Context, t *Trip) error
	FindByID(ctx context.Context, subject string, id uuid.UUID) (*Trip, error)
	ListBySubject(ctx context.Context, subject string) ([]Trip, error)
	Delete(ctx context.Context, subject string, id uuid.UUID) error
}
