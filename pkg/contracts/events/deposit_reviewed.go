package events

import "time"

// Evento emitido após um admin aprovar ou rejeitar um depósito pendente.
// O crédito na carteira acontece na mesma transação da aprovação; este evento
// serve apenas para notificação e auditoria.
type DepositReviewed struct {
	DepositID int64     `json:"depositId"`
	UserEmail string    `json:"userEmail"`
	UID       string    `json:"uid"`
	Amount    string    `json:"amount"`
	Status    string    `json:"status"` // "APPROVED" | "REJECTED"
	Whatsapp  string    `json:"whatsapp,omitempty"`
	Ts        time.Time `json:"ts"`
}
