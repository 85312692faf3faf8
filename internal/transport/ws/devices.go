package ws

import (
	"sync"

	"github.com/cwrk-planet/call-service/internal/metrics"
)

// DeviceRegistry: deviceId -> одно живое соединение.
type DeviceRegistry struct {
	mu      sync.RWMutex
	devices map[string]*Session
}

func NewDeviceRegistry() *DeviceRegistry {
	return &DeviceRegistry{devices: make(map[string]*Session)}
}

// Bind привязывает id к сессии. Предыдущее соединение не закрывается.
func (r *DeviceRegistry) Bind(id string, s *Session) (prev *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev = r.devices[id]
	r.devices[id] = s
	metrics.LiveDevices.Set(float64(len(r.devices)))
	return prev
}

// Unbind удаляет запись, только если она всё ещё указывает на s.
func (r *DeviceRegistry) Unbind(id string, s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.devices[id]; !ok || cur != s {
		return false
	}
	delete(r.devices, id)
	metrics.LiveDevices.Set(float64(len(r.devices)))
	return true
}

func (r *DeviceRegistry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.devices[id]
}

func (r *DeviceRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}
