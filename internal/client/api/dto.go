package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos espelhados do contrato do platform-service

type Tournament struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	EntryFeeType string `json:"entryFeeType"`
	EntryFee     string `json:"entryFee"`
	DateTime     string `json:"dateTime"`
	PrizePool    string `json:"prizePool"`
}

type Room struct {
	Name        string `json:"name"`
	RoomType    string `json:"roomType"`
	EntryFee    string `json:"entryFee"`
	PrizePool   string `json:"prizePool"`
	TotalSlots  int64  `json:"totalSlots"`
	JoinedSlots int64  `json:"joinedSlots"`
	StartTime   int64  `json:"startTime"`
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

type AuthResult struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

type DepositRecord struct {
	ID            int64           `json:"id"`
	UserEmail     string          `json:"userEmail"`
	UID           string          `json:"uid"`
	Amount        decimal.Decimal `json:"amount"`
	UTR           string          `json:"utr"`
	ScreenshotURL string          `json:"screenshotUrl,omitempty"`
	Status        string          `json:"status"`
	SubmittedAt   time.Time       `json:"submittedAt"`
}
