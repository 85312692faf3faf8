package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwrk-planet/call-service/internal/domain"
	"github.com/cwrk-planet/call-service/internal/events"
)

type DeviceRepository interface {
	UpdateStatus(ctx context.Context, deviceID string, status domain.DeviceStatus) error
	Get(ctx context.Context, deviceID string) (*domain.Device, error)
}

type DeviceService struct {
	devices DeviceRepository
	pub     events.Publisher
}

func NewDeviceService(devices DeviceRepository, pub events.Publisher) *DeviceService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &DeviceService{devices: devices, pub: pub}
}

func (s *DeviceService) SetOnline(ctx context.Context, deviceID string) error {
	return s.setStatus(ctx, deviceID, domain.DeviceOnline, events.DeviceOnline)
}

func (s *DeviceService) SetOffline(ctx context.Context, deviceID string) error {
	return s.setStatus(ctx, deviceID, domain.DeviceOffline, events.DeviceOffline)
}

func (s *DeviceService) Get(ctx context.Context, deviceID string) (*domain.Device, error) {
	return s.devices.Get(ctx, deviceID)
}

func (s *DeviceService) setStatus(ctx context.Context, deviceID string, status domain.DeviceStatus, typ events.Type) error {
	if err := s.devices.UpdateStatus(ctx, deviceID, status); err != nil {
		return fmt.Errorf("devices.UpdateStatus(%s): %w", status, err)
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.pub.Publish(pctx, events.Event{Type: typ, DeviceID: deviceID, At: time.Now().UTC()}); err != nil {
		slog.Warn("publish event failed", "type", typ, "device", deviceID, "err", err)
	}
	return nil
}
