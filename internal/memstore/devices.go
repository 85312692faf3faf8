package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/cwrk-planet/call-service/internal/domain"
)

type DeviceStore struct {
	mu      sync.RWMutex
	devices map[string]domain.Device
	err     error
}

func NewDeviceStore() *DeviceStore {
	return &DeviceStore{devices: make(map[string]domain.Device)}
}

func (s *DeviceStore) SetErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *DeviceStore) UpdateStatus(_ context.Context, deviceID string, status domain.DeviceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.devices[deviceID] = domain.Device{ID: deviceID, Status: status, LastSeenAt: time.Now().UTC()}
	return nil
}

func (s *DeviceStore) Get(_ context.Context, deviceID string) (*domain.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.devices[deviceID]
	if !ok {
		return nil, domain.ErrDeviceNotFound
	}
	return &d, nil
}
