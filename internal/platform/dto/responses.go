package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type Tournament struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	EntryFeeType string `json:"entryFeeType"` // "free" | "paid"
	EntryFee     string `json:"entryFee"`
	DateTime     string `json:"dateTime"`
	PrizePool    string `json:"prizePool"`
}

type Room struct {
	Name        string `json:"name"`
	RoomType    string `json:"roomType"` // solo | duo | squad | clashSquad | fullMap
	EntryFee    string `json:"entryFee"`
	PrizePool   string `json:"prizePool"`
	TotalSlots  int64  `json:"totalSlots"`
	JoinedSlots int64  `json:"joinedSlots"`
	StartTime   int64  `json:"startTime"` // unix ms
	JoinStatus  string `json:"joinStatus"`
}

type LeaderboardEntry struct {
	Rank        int64  `json:"rank"`
	PlayerName  string `json:"playerName"`
	TeamName    string `json:"teamName"`
	Kills       int64  `json:"kills"`
	TotalPoints int64  `json:"totalPoints"`
}

type UserProfile struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Whatsapp    string `json:"whatsapp"`
	FreefireUID string `json:"freefireUid"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

type WalletResponse struct {
	UID     string          `json:"uid"`
	Balance decimal.Decimal `json:"balance"`
}

type DepositRecord struct {
	ID            int64           `json:"id"`
	UserEmail     string          `json:"userEmail"`
	UID           string          `json:"uid"`
	Amount        decimal.Decimal `json:"amount"`
	UTR           string          `json:"utr"`
	ScreenshotURL string          `json:"screenshotUrl,omitempty"`
	Status        string          `json:"status"` // PENDING | APPROVED | REJECTED
	SubmittedAt   time.Time       `json:"submittedAt"`
}

type SubmitDepositResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"` // PENDING
}

type RoleResponse struct {
	Admin bool `json:"admin"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
