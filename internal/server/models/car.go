package models

import "time"

type Car struct {
	ID           string    `json:"id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	VIN          string    `json:"vin"`
	LicensePlate string    `json:"licensePlate,omitempty"`
	OwnerName    string    `json:"ownerName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
