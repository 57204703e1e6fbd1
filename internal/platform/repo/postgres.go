package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Postgres implementa a persistência de usuários, carteiras e depósitos
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrEmailExists       = errors.New("email exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUTR      = errors.New("duplicate utr")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// CreateUser insere o usuário e cria a carteira zerada na mesma transação
// Email é único; duplicado retorna ErrEmailExists
func (p *Postgres) CreateUser(ctx context.Context, u *User) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists string
	err = tx.QueryRowContext(ctx, `SELECT email FROM users WHERE email=$1`, u.Email).Scan(&exists)
	if err == nil {
		return ErrEmailExists
	} else if err != sql.ErrNoRows {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO users(name, email, whatsapp, freefire_uid, password_hash, role)
		VALUES($1,$2,$3,$4,$5,'user')`,
		u.Name, u.Email, u.Whatsapp, u.FreefireUID, u.PasswordHash); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallets(id, uid, balance, version) VALUES($1,$2,0,1)`,
		uuid.NewString(), u.FreefireUID); err != nil {
		return err
	}

	return tx.Commit()
}

// GetUserByEmail retorna o usuário (incluindo hash de senha) pelo email
func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := p.db.QueryRowContext(ctx, `
		SELECT name, email, whatsapp, freefire_uid, password_hash, role, created_at
		FROM users WHERE email=$1`, email).
		Scan(&u.Name, &u.Email, &u.Whatsapp, &u.FreefireUID, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveProfile atualiza os campos editáveis do perfil do usuário
func (p *Postgres) SaveProfile(ctx context.Context, email, name, whatsapp, freefireUID string) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE users SET name=$1, whatsapp=$2, freefire_uid=$3 WHERE email=$4`,
		name, whatsapp, freefireUID, email)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// IsAdmin verifica o papel do usuário direto no banco
// A checagem é feita a cada chamada de admin, não fica congelada no token
func (p *Postgres) IsAdmin(ctx context.Context, email string) (bool, error) {
	var role string
	err := p.db.QueryRowContext(ctx, `SELECT role FROM users WHERE email=$1`, email).Scan(&role)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return role == "admin", nil
}

// CreatePlayer registra uma inscrição de jogador em torneio
func (p *Postgres) CreatePlayer(ctx context.Context, pl *Player) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO players(id, player_name, in_game_id, team_name, whatsapp_number)
		VALUES($1,$2,$3,$4,$5)`,
		id, pl.PlayerName, pl.InGameID, pl.TeamName, pl.WhatsappNumber)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetOrCreateWallet retorna o walletId e saldo de um uid, criando a carteira se não existir
// Usa transação para garantir atomicidade
func (p *Postgres) GetOrCreateWallet(ctx context.Context, uid string) (walletID string, balance decimal.Decimal, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", decimal.Zero, err
	}
	defer tx.Rollback()

	var id string
	var bal decimal.Decimal
	err = tx.QueryRowContext(ctx, `SELECT id, balance FROM wallets WHERE uid=$1`, uid).Scan(&id, &bal)
	if err == sql.ErrNoRows {
		id = uuid.NewString()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, uid, balance, version) VALUES($1,$2,0,1)`,
			id, uid); err != nil {
			return "", decimal.Zero, err
		}
		bal = decimal.Zero
	} else if err != nil {
		return "", decimal.Zero, err
	}

	if err = tx.Commit(); err != nil {
		return "", decimal.Zero, err
	}

	return id, bal, nil
}

// CreditWallet incrementa o saldo e registra a operação no ledger
// Garante lock pessimista na linha da carteira
func (p *Postgres) CreditWallet(ctx context.Context, uid string, amount decimal.Decimal, description string) (newBalance decimal.Decimal, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	newBalance, err = creditLocked(ctx, tx, uid, amount, description)
	if err != nil {
		return decimal.Zero, err
	}

	if err = tx.Commit(); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// DebitWallet decrementa o saldo, falhando com ErrInsufficientFunds se não houver fundos
func (p *Postgres) DebitWallet(ctx context.Context, uid string, amount decimal.Decimal, description string) (newBalance decimal.Decimal, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	var id string
	var bal decimal.Decimal
	if err = tx.QueryRowContext(ctx, `SELECT id, balance FROM wallets WHERE uid=$1 FOR UPDATE`, uid).Scan(&id, &bal); err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, ErrNotFound
		}
		return decimal.Zero, err
	}

	if bal.LessThan(amount) {
		return decimal.Zero, ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance = balance - $1, version = version + 1 WHERE id=$2`,
		amount, id); err != nil {
		return decimal.Zero, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger(id, wallet_id, operation_type, amount, description) VALUES($1,$2,'DEBIT',$3,$4)`,
		uuid.NewString(), id, amount, description); err != nil {
		return decimal.Zero, err
	}

	if err = tx.QueryRowContext(ctx, `SELECT balance FROM wallets WHERE id=$1`, id).Scan(&newBalance); err != nil {
		return decimal.Zero, err
	}

	if err = tx.Commit(); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// SubmitDeposit insere um depósito PENDING
// Invariante: um UTR só pode sustentar um registro não rejeitado; duplicado
// retorna ErrDuplicateUTR
func (p *Postgres) SubmitDeposit(ctx context.Context, d *Deposit) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM deposits WHERE utr=$1 AND status <> 'REJECTED'`, d.UTR).Scan(&existing)
	if err == nil {
		return 0, ErrDuplicateUTR
	} else if err != sql.ErrNoRows {
		return 0, err
	}

	var id int64
	if err = tx.QueryRowContext(ctx, `
		INSERT INTO deposits(user_email, uid, amount, utr, screenshot_url, status)
		VALUES($1,$2,$3,$4,$5,'PENDING')
		RETURNING id`,
		d.UserEmail, d.UID, d.Amount, d.UTR, d.ScreenshotURL).Scan(&id); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// PendingDeposits retorna o snapshot completo da fila de revisão (sem paginação)
func (p *Postgres) PendingDeposits(ctx context.Context) ([]Deposit, error) {
	const q = `
		SELECT id, user_email, uid, amount, utr, COALESCE(screenshot_url,''), status, submitted_at
		FROM deposits
		WHERE status='PENDING'
		ORDER BY submitted_at ASC;
	`
	return p.queryDeposits(ctx, q)
}

// UserDeposits retorna o histórico de depósitos de um usuário
func (p *Postgres) UserDeposits(ctx context.Context, email string) ([]Deposit, error) {
	const q = `
		SELECT id, user_email, uid, amount, utr, COALESCE(screenshot_url,''), status, submitted_at
		FROM deposits
		WHERE user_email=$1
		ORDER BY submitted_at DESC;
	`
	return p.queryDeposits(ctx, q, email)
}

// GetDeposit retorna um registro de depósito pelo id
func (p *Postgres) GetDeposit(ctx context.Context, id int64) (*Deposit, error) {
	var d Deposit
	err := p.db.QueryRowContext(ctx, `
		SELECT id, user_email, uid, amount, utr, COALESCE(screenshot_url,''), status, submitted_at
		FROM deposits WHERE id=$1`, id).
		Scan(&d.ID, &d.UserEmail, &d.UID, &d.Amount, &d.UTR, &d.ScreenshotURL, &d.Status, &d.SubmittedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ApproveDeposit marca o depósito como APPROVED e credita a carteira do dono
// na mesma transação. Idempotente: se já estiver terminal, não faz nada e
// sinaliza changed=false para quem chama não repetir efeitos colaterais.
func (p *Postgres) ApproveDeposit(ctx context.Context, id int64) (d *Deposit, changed bool, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	d, err = lockDeposit(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}
	if d.Status != DepositPending {
		return d, false, nil // já revisado
	}

	if _, err = tx.ExecContext(ctx, `UPDATE deposits SET status='APPROVED' WHERE id=$1`, id); err != nil {
		return nil, false, err
	}

	if _, err = creditLocked(ctx, tx, d.UID, d.Amount, "deposit-approve:"+d.UTR); err != nil {
		return nil, false, err
	}

	if err = tx.Commit(); err != nil {
		return nil, false, err
	}
	d.Status = DepositApproved
	return d, true, nil
}

// RejectDeposit marca o depósito como REJECTED; nenhuma mutação de carteira
// Idempotente da mesma forma que ApproveDeposit
func (p *Postgres) RejectDeposit(ctx context.Context, id int64) (d *Deposit, changed bool, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	d, err = lockDeposit(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}
	if d.Status != DepositPending {
		return d, false, nil
	}

	if _, err = tx.ExecContext(ctx, `UPDATE deposits SET status='REJECTED' WHERE id=$1`, id); err != nil {
		return nil, false, err
	}

	if err = tx.Commit(); err != nil {
		return nil, false, err
	}
	d.Status = DepositRejected
	return d, true, nil
}

// lockDeposit carrega o depósito com lock de linha dentro da transação
func lockDeposit(ctx context.Context, tx *sql.Tx, id int64) (*Deposit, error) {
	var d Deposit
	err := tx.QueryRowContext(ctx, `
		SELECT id, user_email, uid, amount, utr, COALESCE(screenshot_url,''), status, submitted_at
		FROM deposits WHERE id=$1 FOR UPDATE`, id).
		Scan(&d.ID, &d.UserEmail, &d.UID, &d.Amount, &d.UTR, &d.ScreenshotURL, &d.Status, &d.SubmittedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// creditLocked credita a carteira (criando se necessário) dentro de uma transação já aberta
func creditLocked(ctx context.Context, tx *sql.Tx, uid string, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE uid=$1 FOR UPDATE`, uid).Scan(&id)
	if err == sql.ErrNoRows {
		id = uuid.NewString()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, uid, balance, version) VALUES($1,$2,0,1)`, id, uid); err != nil {
			return decimal.Zero, err
		}
	} else if err != nil {
		return decimal.Zero, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance = balance + $1, version = version + 1 WHERE id=$2`,
		amount, id); err != nil {
		return decimal.Zero, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger(id, wallet_id, operation_type, amount, description) VALUES($1,$2,'CREDIT',$3,$4)`,
		uuid.NewString(), id, amount, description); err != nil {
		return decimal.Zero, err
	}

	var newBalance decimal.Decimal
	if err = tx.QueryRowContext(ctx, `SELECT balance FROM wallets WHERE id=$1`, id).Scan(&newBalance); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// queryDeposits executa uma consulta de depósitos e varre as linhas
func (p *Postgres) queryDeposits(ctx context.Context, q string, args ...any) ([]Deposit, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Deposit
	for rows.Next() {
		var d Deposit
		if err := rows.Scan(&d.ID, &d.UserEmail, &d.UID, &d.Amount, &d.UTR, &d.ScreenshotURL, &d.Status, &d.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
