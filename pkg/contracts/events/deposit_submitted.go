package events

// Evento emitido pelo platform-service quando um usuário envia um depósito
// manual (UTR) para revisão.
type DepositSubmitted struct {
	DepositID int64  `json:"deposit_id"`
	UserEmail string `json:"user_email"`
	UID       string `json:"uid"`
	Amount    string `json:"amount"` // decimal serializado, ex: "50.00"
	UTR       string `json:"utr"`
	TsUnixMs  int64  `json:"ts_unix_ms"`
}
