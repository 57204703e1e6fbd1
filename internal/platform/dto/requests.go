package dto

import "github.com/shopspring/decimal"

type RegisterUserRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Whatsapp    string `json:"whatsapp"`
	FreefireUID string `json:"freefireUid"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterPlayerRequest struct {
	PlayerName     string `json:"playerName"`
	InGameID       string `json:"inGameId"`
	TeamName       string `json:"teamName"`
	WhatsappNumber string `json:"whatsappNumber"`
}

// Ajuste direto de saldo (caminho não revisado, restrito a admin)
type WalletAdjustRequest struct {
	UID    string          `json:"uid"`
	Amount decimal.Decimal `json:"amount"`
}

type SubmitDepositRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	UTR           string          `json:"utr"`
	ScreenshotURL string          `json:"screenshotUrl,omitempty"` // comprovante opcional
}

type SaveProfileRequest struct {
	Name        string `json:"name"`
	Whatsapp    string `json:"whatsapp"`
	FreefireUID string `json:"freefireUid"`
}
