package dto

import "time"

// DepositReviewed espelha o evento consumido do tópico deposit_reviewed
type DepositReviewed struct {
	DepositID int64     `json:"depositId"`
	UserEmail string    `json:"userEmail"`
	UID       string    `json:"uid"`
	Amount    string    `json:"amount"`
	Status    string    `json:"status"` // "APPROVED" | "REJECTED"
	Whatsapp  string    `json:"whatsapp,omitempty"`
	Ts        time.Time `json:"ts"`
}
