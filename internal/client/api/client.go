package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Client encapsula as chamadas remotas ao platform-service.
// Toda chamada recebe um contexto e o próprio HTTP client carrega timeout,
// então nenhuma operação fica pendurada indefinidamente.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Token é a fonte do bearer da sessão atual; pode retornar vazio
	Token func() string
}

func New(base string, token func() string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Token:   token,
	}
}

// ---- Lobby ----

func (c *Client) Tournaments(ctx context.Context) ([]Tournament, error) {
	var out []Tournament
	if err := c.get(ctx, "/v1/tournaments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Rooms(ctx context.Context) ([]Room, error) {
	var out []Room
	if err := c.get(ctx, "/v1/rooms", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Leaderboard reordena por pontos desc no cliente mesmo que o serviço já
// ordene (defesa contra backend desalinhado)
func (c *Client) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	var out []LeaderboardEntry
	if err := c.get(ctx, "/v1/leaderboard", &out); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalPoints > out[j].TotalPoints })
	return out, nil
}

// ---- Conta ----

func (c *Client) RegisterUser(ctx context.Context, name, email, whatsapp, freefireUID, password string) (*AuthResult, error) {
	body := map[string]string{
		"name": name, "email": email, "whatsapp": whatsapp,
		"freefireUid": freefireUID, "password": password,
	}
	var out AuthResult
	if err := c.post(ctx, "/v1/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LoginUser(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResult
	if err := c.post(ctx, "/v1/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterPlayer(ctx context.Context, playerName, inGameID, teamName, whatsappNumber string) error {
	body := map[string]string{
		"playerName": playerName, "inGameId": inGameID,
		"teamName": teamName, "whatsappNumber": whatsappNumber,
	}
	return c.post(ctx, "/v1/players", body, nil)
}

func (c *Client) Profile(ctx context.Context) (*UserProfile, error) {
	var out UserProfile
	if err := c.get(ctx, "/v1/me/profile", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SaveProfile(ctx context.Context, p UserProfile) error {
	return c.do(ctx, http.MethodPut, "/v1/me/profile", p, nil)
}

func (c *Client) IsAdmin(ctx context.Context) (bool, error) {
	var out struct {
		Admin bool `json:"admin"`
	}
	if err := c.get(ctx, "/v1/me/role", &out); err != nil {
		return false, err
	}
	return out.Admin, nil
}

// ---- Carteira ----

func (c *Client) WalletBalance(ctx context.Context, uid string) (decimal.Decimal, error) {
	var out struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := c.get(ctx, "/v1/wallet?uid="+url.QueryEscape(uid), &out); err != nil {
		return decimal.Zero, err
	}
	return out.Balance, nil
}

// Ajustes diretos (restritos a admin no serviço)

func (c *Client) DirectDeposit(ctx context.Context, uid string, amount decimal.Decimal) error {
	return c.post(ctx, "/v1/wallet/deposit", map[string]any{"uid": uid, "amount": amount}, nil)
}

func (c *Client) DirectWithdraw(ctx context.Context, uid string, amount decimal.Decimal) error {
	return c.post(ctx, "/v1/wallet/withdraw", map[string]any{"uid": uid, "amount": amount}, nil)
}

// ---- Depósitos revisados ----

func (c *Client) SubmitDeposit(ctx context.Context, amount decimal.Decimal, utr, screenshotURL string) (int64, error) {
	body := map[string]any{"amount": amount, "utr": utr}
	if screenshotURL != "" {
		body["screenshotUrl"] = screenshotURL
	}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.post(ctx, "/v1/deposits", body, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) PendingDeposits(ctx context.Context) ([]DepositRecord, error) {
	var out []DepositRecord
	if err := c.get(ctx, "/v1/deposits/pending", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UserDeposits(ctx context.Context, email string) ([]DepositRecord, error) {
	var out []DepositRecord
	if err := c.get(ctx, "/v1/users/"+url.PathEscape(email)+"/deposits", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDeposit(ctx context.Context, id int64) (*DepositRecord, error) {
	var out DepositRecord
	if err := c.get(ctx, fmt.Sprintf("/v1/deposits/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApproveDeposit(ctx context.Context, id int64) error {
	return c.post(ctx, fmt.Sprintf("/v1/deposits/%d/approve", id), nil, nil)
}

func (c *Client) RejectDeposit(ctx context.Context, id int64) error {
	return c.post(ctx, fmt.Sprintf("/v1/deposits/%d/reject", id), nil, nil)
}

// ---- plumbing ----

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindTransport, Message: err.Error()}
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return &Error{Kind: KindTransport, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != nil {
		if t := c.Token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Message: err.Error()}
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&errBody)
		return mapError(res.StatusCode, errBody.Error)
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return &Error{Kind: KindTransport, Message: err.Error()}
		}
	}
	return nil
}
