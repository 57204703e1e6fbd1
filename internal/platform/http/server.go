package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ffarena/tournament-platform/internal/platform/auth"
	"github.com/ffarena/tournament-platform/internal/platform/cache"
	"github.com/ffarena/tournament-platform/internal/platform/dto"
	"github.com/ffarena/tournament-platform/internal/platform/repo"
	"github.com/ffarena/tournament-platform/pkg/contracts/events"
	"github.com/ffarena/tournament-platform/pkg/contracts/policy"
)

const tokenTTL = 24 * time.Hour

// lobbyTTL limita o cache Redis das visões de lobby
const lobbyTTL = 30 * time.Second

// Repo define as operações de persistência usadas pelos handlers HTTP
type Repo interface {
	CreateUser(ctx context.Context, u *repo.User) error
	GetUserByEmail(ctx context.Context, email string) (*repo.User, error)
	SaveProfile(ctx context.Context, email, name, whatsapp, freefireUID string) error
	IsAdmin(ctx context.Context, email string) (bool, error)
	CreatePlayer(ctx context.Context, p *repo.Player) (string, error)
	GetOrCreateWallet(ctx context.Context, uid string) (walletID string, balance decimal.Decimal, err error)
	CreditWallet(ctx context.Context, uid string, amount decimal.Decimal, description string) (decimal.Decimal, error)
	DebitWallet(ctx context.Context, uid string, amount decimal.Decimal, description string) (decimal.Decimal, error)
	SubmitDeposit(ctx context.Context, d *repo.Deposit) (int64, error)
	PendingDeposits(ctx context.Context) ([]repo.Deposit, error)
	UserDeposits(ctx context.Context, email string) ([]repo.Deposit, error)
	GetDeposit(ctx context.Context, id int64) (*repo.Deposit, error)
	ApproveDeposit(ctx context.Context, id int64) (d *repo.Deposit, changed bool, err error)
	RejectDeposit(ctx context.Context, id int64) (d *repo.Deposit, changed bool, err error)
}

// ReadRepo define as projeções de lobby
type ReadRepo interface {
	ListTournaments(ctx context.Context) ([]dto.Tournament, error)
	ListRooms(ctx context.Context) ([]dto.Room, error)
	Leaderboard(ctx context.Context) ([]dto.LeaderboardEntry, error)
}

// LobbyCache abstrai o cache Redis das visões de lobby (pode ser nil em testes)
type LobbyCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Publisher publica os eventos do ciclo de vida de depósitos
type Publisher interface {
	PublishDepositSubmitted(ctx context.Context, e events.DepositSubmitted) error
	PublishDepositReviewed(ctx context.Context, e events.DepositReviewed) error
}

// Broadcaster repassa avisos de carteira ao canal Redis Pub/Sub (fan-out no hub WS)
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Server expõe a superfície REST da plataforma
type Server struct {
	log       *zap.Logger
	repo      Repo
	read      ReadRepo
	cache     LobbyCache
	publ      Publisher
	bcast     Broadcaster
	wsHandler http.HandlerFunc
	jwtSecret string
}

func NewServer(log *zap.Logger, r Repo, read ReadRepo, c LobbyCache, p Publisher, b Broadcaster, ws http.HandlerFunc, jwtSecret string) *Server {
	return &Server{log: log, repo: r, read: read, cache: c, publ: p, bcast: b, wsHandler: ws, jwtSecret: jwtSecret}
}

// Router retorna o roteador HTTP com os endpoints REST + WS
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Lobby (público, cacheado)
	r.Get("/v1/tournaments", s.listTournaments)
	r.Get("/v1/rooms", s.listRooms)
	r.Get("/v1/leaderboard", s.leaderboard)

	// Conta
	r.Post("/v1/auth/register", s.registerUser)
	r.Post("/v1/auth/login", s.loginUser)

	// Autenticado
	r.Group(func(r chi.Router) {
		r.Use(s.authenticated)
		r.Post("/v1/players", s.registerPlayer)
		r.Get("/v1/wallet", s.getWallet)
		r.Get("/v1/me/role", s.getRole)
		r.Get("/v1/me/profile", s.getProfile)
		r.Put("/v1/me/profile", s.saveProfile)
		r.Post("/v1/deposits", s.submitDeposit)
		r.Get("/v1/deposits/{id}", s.getDeposit)
		r.Get("/v1/users/{email}/deposits", s.userDeposits)
	})

	// Admin
	r.Group(func(r chi.Router) {
		r.Use(s.authenticated, s.requireAdmin)
		r.Get("/v1/deposits/pending", s.pendingDeposits)
		r.Post("/v1/deposits/{id}/approve", s.approveDeposit)
		r.Post("/v1/deposits/{id}/reject", s.rejectDeposit)
		// Caminho direto de ajuste de saldo: seam operacional, não revisado
		r.Post("/v1/wallet/deposit", s.directDeposit)
		r.Post("/v1/wallet/withdraw", s.directWithdraw)
	})

	if s.wsHandler != nil {
		r.Get("/ws", s.wsHandler)
	}

	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ---- Lobby ----

func (s *Server) listTournaments(w http.ResponseWriter, r *http.Request) {
	var cached []dto.Tournament
	if s.cache != nil {
		if ok, _ := s.cache.Get(r.Context(), cache.KeyTournaments, &cached); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}
	ts, err := s.read.ListTournaments(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if s.cache != nil {
		_ = s.cache.Set(r.Context(), cache.KeyTournaments, ts, lobbyTTL)
	}
	writeJSON(w, http.StatusOK, ts)
}

func (s *Server) listRooms(w http.ResponseWriter, r *http.Request) {
	var cached []dto.Room
	if s.cache != nil {
		if ok, _ := s.cache.Get(r.Context(), cache.KeyRooms, &cached); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}
	rooms, err := s.read.ListRooms(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if s.cache != nil {
		_ = s.cache.Set(r.Context(), cache.KeyRooms, rooms, lobbyTTL)
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	var cached []dto.LeaderboardEntry
	if s.cache != nil {
		if ok, _ := s.cache.Get(r.Context(), cache.KeyLeaderboard, &cached); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}
	entries, err := s.read.Leaderboard(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if s.cache != nil {
		_ = s.cache.Set(r.Context(), cache.KeyLeaderboard, entries, lobbyTTL)
	}
	writeJSON(w, http.StatusOK, entries)
}

// ---- Conta ----

func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" || req.FreefireUID == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid payload"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	u := &repo.User{
		Name:         req.Name,
		Email:        req.Email,
		Whatsapp:     req.Whatsapp,
		FreefireUID:  req.FreefireUID,
		PasswordHash: hash,
	}
	if err := s.repo.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, repo.ErrEmailExists) {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "email_exists"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	token, err := auth.IssueToken(s.jwtSecret, req.Email, tokenTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		Token: token,
		User:  dto.UserProfile{Name: u.Name, Email: u.Email, Whatsapp: u.Whatsapp, FreefireUID: u.FreefireUID},
	})
}

func (s *Server) loginUser(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}
	u, err := s.repo.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "user_not_found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "password_incorrect"})
		return
	}

	token, err := auth.IssueToken(s.jwtSecret, u.Email, tokenTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Token: token,
		User:  dto.UserProfile{Name: u.Name, Email: u.Email, Whatsapp: u.Whatsapp, FreefireUID: u.FreefireUID},
	})
}

func (s *Server) registerPlayer(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}
	if req.PlayerName == "" || req.InGameID == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid payload"})
		return
	}
	id, err := s.repo.CreatePlayer(r.Context(), &repo.Player{
		PlayerName:     req.PlayerName,
		InGameID:       req.InGameID,
		TeamName:       req.TeamName,
		WhatsappNumber: req.WhatsappNumber,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) getRole(w http.ResponseWriter, r *http.Request) {
	ok, err := s.repo.IsAdmin(r.Context(), callerEmail(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, dto.RoleResponse{Admin: ok})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.repo.GetUserByEmail(r.Context(), callerEmail(r))
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "user_not_found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, dto.UserProfile{Name: u.Name, Email: u.Email, Whatsapp: u.Whatsapp, FreefireUID: u.FreefireUID})
}

func (s *Server) saveProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}
	if err := s.repo.SaveProfile(r.Context(), callerEmail(r), req.Name, req.Whatsapp, req.FreefireUID); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Carteira ----

func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	if uid == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "uid required"})
		return
	}
	_, bal, err := s.repo.GetOrCreateWallet(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{UID: uid, Balance: bal})
}

func (s *Server) directDeposit(w http.ResponseWriter, r *http.Request) {
	var req dto.WalletAdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}
	if req.UID == "" || !req.Amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid payload"})
		return
	}
	bal, err := s.repo.CreditWallet(r.Context(), req.UID, req.Amount, "admin-adjust:credit")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	s.notifyWallet(r.Context(), req.UID)
	writeJSON(w, http.StatusOK, dto.WalletResponse{UID: req.UID, Balance: bal})
}

func (s *Server) directWithdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WalletAdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}
	if req.UID == "" || !req.Amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid payload"})
		return
	}
	bal, err := s.repo.DebitWallet(r.Context(), req.UID, req.Amount, "admin-adjust:debit")
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrInsufficientFunds):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "insufficient_funds"})
		case errors.Is(err, repo.ErrNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "wallet_not_found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		}
		return
	}
	s.notifyWallet(r.Context(), req.UID)
	writeJSON(w, http.StatusOK, dto.WalletResponse{UID: req.UID, Balance: bal})
}

// ---- Depósitos revisados ----

func (s *Server) submitDeposit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}
	// O servidor revalida tudo que o cliente valida: os checks do wizard são
	// otimização de UX, não fronteira de segurança
	if req.Amount.LessThan(decimal.NewFromInt(policy.MinDepositAmount)) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid amount"})
		return
	}
	if !validUTR(req.UTR) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "utr must be exactly 12 digits"})
		return
	}

	email := callerEmail(r)
	u, err := s.repo.GetUserByEmail(r.Context(), email)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	d := &repo.Deposit{
		UserEmail:     email,
		UID:           u.FreefireUID,
		Amount:        req.Amount,
		UTR:           req.UTR,
		ScreenshotURL: req.ScreenshotURL,
	}
	id, err := s.repo.SubmitDeposit(r.Context(), d)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateUTR) {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "duplicate_utr"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if s.publ != nil {
		if err := s.publ.PublishDepositSubmitted(r.Context(), events.DepositSubmitted{
			DepositID: id,
			UserEmail: email,
			UID:       u.FreefireUID,
			Amount:    req.Amount.StringFixed(2),
			UTR:       req.UTR,
		}); err != nil {
			s.log.Warn("publish deposit_submitted", zap.Error(err))
		}
	}

	depositsSubmitted.Inc()
	writeJSON(w, http.StatusCreated, dto.SubmitDepositResponse{ID: id, Status: repo.DepositPending})
}

func (s *Server) pendingDeposits(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.PendingDeposits(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toRecords(list))
}

func (s *Server) userDeposits(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	// Histórico próprio, ou qualquer um para admin
	if email != callerEmail(r) {
		ok, err := s.repo.IsAdmin(r.Context(), callerEmail(r))
		if err != nil || !ok {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "access denied"})
			return
		}
	}
	list, err := s.repo.UserDeposits(r.Context(), email)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toRecords(list))
}

func (s *Server) getDeposit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid id"})
		return
	}
	d, err := s.repo.GetDeposit(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toRecord(*d))
}

func (s *Server) approveDeposit(w http.ResponseWriter, r *http.Request) {
	s.reviewDeposit(w, r, repo.DepositApproved)
}

func (s *Server) rejectDeposit(w http.ResponseWriter, r *http.Request) {
	s.reviewDeposit(w, r, repo.DepositRejected)
}

// reviewDeposit executa a decisão binária do admin sobre um depósito pendente
// Aprovação credita a carteira atomicamente dentro do repo; aqui só propagamos
// o evento e o aviso de saldo — e só quando a transição aconteceu de fato,
// para um double-click do admin não notificar o usuário duas vezes
func (s *Server) reviewDeposit(w http.ResponseWriter, r *http.Request, decision string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid id"})
		return
	}

	var d *repo.Deposit
	var changed bool
	if decision == repo.DepositApproved {
		d, changed, err = s.repo.ApproveDeposit(r.Context(), id)
	} else {
		d, changed, err = s.repo.RejectDeposit(r.Context(), id)
	}
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if changed {
		if s.publ != nil {
			// O worker de notificação precisa do whatsapp do depositante
			var whatsapp string
			if u, uerr := s.repo.GetUserByEmail(r.Context(), d.UserEmail); uerr == nil {
				whatsapp = u.Whatsapp
			}
			if err := s.publ.PublishDepositReviewed(r.Context(), events.DepositReviewed{
				DepositID: d.ID,
				UserEmail: d.UserEmail,
				UID:       d.UID,
				Amount:    d.Amount.StringFixed(2),
				Status:    d.Status,
				Whatsapp:  whatsapp,
				Ts:        time.Now(),
			}); err != nil {
				s.log.Warn("publish deposit_reviewed", zap.Error(err))
			}
		}
		depositsReviewed.WithLabelValues(d.Status).Inc()
		if d.Status == repo.DepositApproved {
			// O depositante pode estar olhando o próprio saldo; avisa via WS
			s.notifyWallet(r.Context(), d.UID)
		}
	}

	writeJSON(w, http.StatusOK, toRecord(*d))
}

// notifyWallet publica um aviso de mudança de saldo no canal de broadcast
// O aviso não carrega o saldo novo: quem recebe refaz a leitura
func (s *Server) notifyWallet(ctx context.Context, uid string) {
	if s.bcast == nil {
		return
	}
	b, _ := json.Marshal(map[string]any{"uid": uid, "payload": map[string]string{"type": "wallet_update"}})
	if err := s.bcast.Publish(ctx, pubsubChannel, b); err != nil {
		s.log.Warn("wallet broadcast", zap.Error(err))
	}
}

const pubsubChannel = "wallet_updates_broadcast"

// validUTR exige exatamente 12 dígitos numéricos
func validUTR(utr string) bool {
	if len(utr) != policy.UTRLength {
		return false
	}
	for _, c := range utr {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func toRecord(d repo.Deposit) dto.DepositRecord {
	return dto.DepositRecord{
		ID:            d.ID,
		UserEmail:     d.UserEmail,
		UID:           d.UID,
		Amount:        d.Amount,
		UTR:           d.UTR,
		ScreenshotURL: d.ScreenshotURL,
		Status:        d.Status,
		SubmittedAt:   d.SubmittedAt,
	}
}

func toRecords(list []repo.Deposit) []dto.DepositRecord {
	out := make([]dto.DepositRecord, 0, len(list))
	for _, d := range list {
		out = append(out, toRecord(d))
	}
	return out
}
