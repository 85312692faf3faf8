package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/call-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DeviceRepository struct {
	db *pgxpool.Pool
}

func NewDeviceRepository(db *pgxpool.Pool) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) UpdateStatus(ctx context.Context, deviceID string, status domain.DeviceStatus) error {
	_, err := r.db.Exec(ctx, queryUpsertDeviceStatus, deviceID, string(status))
	return err
}

func (r *DeviceRepository) Get(ctx context.Context, deviceID string) (*domain.Device, error) {
	var (
		d      domain.Device
		status string
	)
	err := r.db.QueryRow(ctx, queryGetDevice, deviceID).Scan(&d.ID, &status, &d.LastSeenAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, err
	}
	d.Status = domain.DeviceStatus(status)
	return &d, nil
}
