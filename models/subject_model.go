package models

type Subject struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	PricePerHour float64 `json:"pricePerHour"`
}
