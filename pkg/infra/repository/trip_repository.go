package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tripwise-ai/tripwise/pkg/domain/trip"
	"gorm.io/gorm"
)

var ErrTripNotFound = errors.New("trip not found")

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) trip.Repository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Save(ctx context.Context, t *trip.Trip) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Save(t).Error; err != nil {
		return fmt.Errorf("failed to save trip: %w", err)
	}
	return nil
}

func (r *TripRepository) FindByID(ctx context.Context, subject string, id uuid.UUID) (*trip.Trip, error) {
	var t trip.Trip
	err := r.db.WithContext(ctx).
		Where("id = ? AND subject = ?", id, subject).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("failed to find trip: %w", err)
	}
	return &t, nil
}

func (r *TripRepository) ListBySubject(ctx context.Context, subject string) ([]trip.Trip, error) {
	var trips []trip.Trip
	err := r.db.WithContext(ctx).
		Where("subject = ?", subject).
		Order("created_at DESC").
		Find(&trips).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, nil
}

func (r *TripRepository) Delete(ctx context.Context, subject string, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND subject = ?", id, subject).
		Delete(&trip.Trip{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete trip: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTripNotFound
	}
	return nil
}
