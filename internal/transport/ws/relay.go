package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cwrk-planet/call-service/internal/metrics"
)

// bindDevice привязывает id к сессии и отмечает устройство online.
// bind/unbind одного deviceId сериализованы вместе с записью статуса,
// иначе запоздалый offline старого сокета перетрёт online нового.
func (c *Coordinator) bindDevice(ctx context.Context, s *Session, id string) {
	c.deviceLocks.Lock(id)
	defer c.deviceLocks.Unlock(id)

	c.devices.Bind(id, s)
	s.setDeviceID(id)
	if err := c.deviceStore.SetOnline(ctx, id); err != nil {
		storeFailure(s.log, "device-online", err)
	}
}

func (c *Coordinator) unbindDevice(ctx context.Context, s *Session) {
	id := s.DeviceID()
	if id == "" {
		return
	}
	c.deviceLocks.Lock(id)
	defer c.deviceLocks.Unlock(id)

	if !c.devices.Unbind(id, s) {
		return
	}
	if err := c.deviceStore.SetOffline(ctx, id); err != nil {
		storeFailure(s.log, "device-offline", err)
	}
}

func (c *Coordinator) register(ctx context.Context, s *Session, data []byte) {
	var in registerIn
	if err := json.Unmarshal(data, &in); err != nil {
		s.log.Warn("malformed register", "err", err)
		return
	}
	id := strings.TrimSpace(in.DeviceID)
	if id == "" {
		s.send(errorMsg("deviceId is required"))
		return
	}

	if prev := s.DeviceID(); prev != "" && prev != id {
		c.unbindDevice(ctx, s)
	}
	c.bindDevice(ctx, s, id)
	s.log.Info("device registered", "device_id", id)
	s.send(RegisteredMessage{Type: TypeRegistered, DeviceID: id})
}

// forward доставляет сообщение устройству targetDeviceId. Поле маршрутизации
// убирается, добавляется fromDeviceId.
func (c *Coordinator) forward(s *Session, kind Kind, data []byte) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		s.log.Warn("malformed device message", "err", err)
		return
	}

	var target string
	if raw, ok := payload["targetDeviceId"]; ok {
		_ = json.Unmarshal(raw, &target)
	}
	target = strings.TrimSpace(target)
	if target == "" {
		s.send(errorMsg("targetDeviceId is required"))
		return
	}

	peer := c.devices.Get(target)
	if peer == nil || !peer.Open() {
		s.send(ErrorMessage{
			Type:           TypeError,
			Message:        fmt.Sprintf("device %s is not connected", target),
			TargetDeviceID: target,
		})
		return
	}

	delete(payload, "targetDeviceId")
	from, _ := json.Marshal(s.DeviceID())
	payload["fromDeviceId"] = from

	if !peer.send(payload) {
		s.log.Debug("device relay dropped", "target", target)
		return
	}
	metrics.Relayed.WithLabelValues(kind.String()).Inc()
}
