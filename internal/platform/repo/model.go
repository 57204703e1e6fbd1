package repo

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status possíveis de um depósito manual.
// PENDING → APPROVED | REJECTED, ambos terminais.
const (
	DepositPending  = "PENDING"
	DepositApproved = "APPROVED"
	DepositRejected = "REJECTED"
)

// User é o modelo persistido no Postgres.
type User struct {
	Name         string
	Email        string
	Whatsapp     string
	FreefireUID  string
	PasswordHash string
	Role         string // "user" | "admin"
	CreatedAt    time.Time
}

// Deposit é um registro de depósito manual aguardando (ou já passado por) revisão.
type Deposit struct {
	ID            int64
	UserEmail     string
	UID           string
	Amount        decimal.Decimal
	UTR           string
	ScreenshotURL string
	Status        string
	SubmittedAt   time.Time
}

// Player é uma inscrição de jogador em torneio (separada do cadastro de conta).
type Player struct {
	ID             string
	PlayerName     string
	InGameID       string
	TeamName       string
	WhatsappNumber string
	CreatedAt      time.Time
}
