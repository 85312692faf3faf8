package domain

import "time"

type DeviceStatus string

const (
	DeviceOnline  DeviceStatus = "online"
	DeviceOffline DeviceStatus = "offline"
)

type Device struct {
	ID         string       `json:"deviceId"`
	Status     DeviceStatus `json:"status"`
	LastSeenAt time.Time    `json:"lastSeenAt"`
}
