package deposit

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ffarena/tournament-platform/pkg/contracts/policy"
)

// Step é o passo atual do assistente de depósito
type Step string

const (
	StepAmount  Step = "amount"
	StepProof   Step = "proof"
	StepSuccess Step = "success"
)

// Limites locais espelhando a política compartilhada; o servidor revalida
// de forma independente
const (
	MinAmount = policy.MinDepositAmount
	UTRLength = policy.UTRLength
)

// Submitter envia o depósito ao serviço remoto
type Submitter interface {
	SubmitDeposit(ctx context.Context, amount decimal.Decimal, utr, screenshotURL string) (int64, error)
}

// Invalidator marca chaves de leitura cacheadas como stale
type Invalidator interface {
	Invalidate(key string)
}

// Launcher dispara o deep link UPI no aplicativo externo.
// Best-effort: o engine não consegue observar se o app abriu.
type Launcher func(uri string) error

// ErrorKindFunc classifica um erro de submissão; plugada pela camada de API
type ErrorKindFunc func(err error) string

// Workflow dirige o usuário pelo fluxo de depósito manual:
// valor → handoff de pagamento → captura de prova (UTR) → submissão.
// O dinheiro de verdade se move fora do processo; aqui só coordenamos
// o formulário e a reconciliação por UTR.
type Workflow struct {
	api    Submitter
	cache  Invalidator
	launch Launcher
	kindOf ErrorKindFunc
	log    *zap.Logger

	mu            sync.Mutex
	step          Step
	amount        string // texto digitado, validado só no ProceedToPay
	amountErr     string
	utr           string
	utrErr        string
	submitErr     string
	upiLaunched   bool
	submitting    bool
	successAmount decimal.Decimal
}

func NewWorkflow(api Submitter, cache Invalidator, launch Launcher, kindOf ErrorKindFunc, log *zap.Logger) *Workflow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Workflow{
		api:    api,
		cache:  cache,
		launch: launch,
		kindOf: kindOf,
		log:    log,
		step:   StepAmount,
	}
}

// Step retorna o passo atual
func (w *Workflow) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// SetAmount atualiza o valor digitado e limpa o erro do campo
func (w *Workflow) SetAmount(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.amount = s
	w.amountErr = ""
}

// ProceedToPay valida o valor e dispara o deep link UPI.
// Abaixo do mínimo: erro de campo, sem handoff. Válido: dispara o link e
// marca o handoff como lançado — SEM avançar o passo; o usuário precisa
// confirmar explicitamente que pagou, porque o engine não tem sinal de
// que o pagamento aconteceu.
func (w *Workflow) ProceedToPay() {
	w.mu.Lock()
	defer w.mu.Unlock()

	parsed, err := decimal.NewFromString(strings.TrimSpace(w.amount))
	if err != nil || parsed.LessThan(decimal.NewFromInt(MinAmount)) {
		w.amountErr = fmt.Sprintf("Minimum deposit amount is ₹%d.", MinAmount)
		return
	}
	w.amountErr = ""

	uri := BuildUPILink(parsed)
	if w.launch != nil {
		if lerr := w.launch(uri); lerr != nil {
			// best-effort: o usuário ainda pode pagar manualmente pelo UPI ID
			w.log.Warn("upi launch", zap.Error(lerr))
		}
	}
	w.upiLaunched = true
}

// ConfirmPaid é a confirmação explícita de pagamento ("I have paid");
// avança para a captura de prova
func (w *Workflow) ConfirmPaid() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.upiLaunched || w.step != StepAmount {
		return
	}
	w.step = StepProof
}

// SetUTR sanitiza a entrada: só dígitos, truncado em 12; limpa erros antigos
func (w *Workflow) SetUTR(raw string) {
	var b strings.Builder
	for _, c := range raw {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	s := b.String()
	if len(s) > UTRLength {
		s = s[:UTRLength]
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.utr = s
	w.utrErr = ""
	w.submitErr = ""
}

// ReopenPayment redispara o deep link UPI (idempotente, pode ser chamado
// quantas vezes for preciso); nunca limpa a prova já digitada
func (w *Workflow) ReopenPayment() {
	w.mu.Lock()
	parsed, err := decimal.NewFromString(strings.TrimSpace(w.amount))
	launch := w.launch
	w.mu.Unlock()
	if err != nil || launch == nil {
		return
	}
	_ = launch(BuildUPILink(parsed))
}

// Back retorna da captura de prova para o passo de valor, limpando erros
func (w *Workflow) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepProof {
		return
	}
	w.step = StepAmount
	w.utrErr = ""
	w.submitErr = ""
}

// Submit envia o depósito. Resultados:
//   - UTR duplicado: erro de campo, permanece na prova, valor preservado
//   - sucesso: passo final, caches de saldo e de fila pendente invalidados
//   - sessão inválida: dica de reautenticação
//   - demais erros: mensagem verbatim, retentável, dados preservados
func (w *Workflow) Submit(ctx context.Context) {
	w.mu.Lock()
	if w.submitting || w.step != StepProof {
		w.mu.Unlock()
		return
	}
	if len(w.utr) != UTRLength {
		w.utrErr = fmt.Sprintf("Please enter a valid %d-digit UTR / Transaction ID.", UTRLength)
		w.mu.Unlock()
		return
	}
	w.utrErr = ""
	w.submitErr = ""

	amount, err := decimal.NewFromString(strings.TrimSpace(w.amount))
	if err != nil {
		w.submitErr = "Invalid amount."
		w.mu.Unlock()
		return
	}
	utr := w.utr
	w.submitting = true
	w.mu.Unlock()

	id, err := w.api.SubmitDeposit(ctx, amount, utr, "")

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false // busy sempre limpo, inclusive em falha

	if err != nil {
		switch w.kind(err) {
		case "duplicate_utr":
			w.utrErr = "This Transaction ID has already been used."
		case "unauthorized":
			w.submitErr = "Session error: please log out and log back in, then try again."
		default:
			raw := err.Error()
			lower := strings.ToLower(raw)
			// fallback por conteúdo só para erros que chegam sem tipo
			if strings.Contains(lower, "unauthorized") || strings.Contains(lower, "only authenticated") {
				w.submitErr = "Session error: please log out and log back in, then try again."
			} else {
				w.submitErr = raw
			}
		}
		return
	}

	w.log.Info("deposit submitted", zap.Int64("id", id), zap.String("amount", amount.StringFixed(2)))
	w.successAmount = amount
	w.step = StepSuccess

	// leituras cacheadas de saldo e fila pendente ficam stale;
	// o engine nunca escreve saldo por conta própria
	if w.cache != nil {
		w.cache.Invalidate("walletBalance")
		w.cache.Invalidate("pendingDeposits")
	}
}

// Close reseta todos os campos ao estado inicial; o assistente nunca
// "lembra" uma submissão anterior depois de fechado
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step = StepAmount
	w.amount = ""
	w.amountErr = ""
	w.utr = ""
	w.utrErr = ""
	w.submitErr = ""
	w.upiLaunched = false
	w.submitting = false
	w.successAmount = decimal.Zero
}

// ---- leitura de estado para a camada de apresentação ----

func (w *Workflow) Amount() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.amount
}

func (w *Workflow) AmountError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.amountErr
}

func (w *Workflow) UTR() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.utr
}

func (w *Workflow) UTRError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.utrErr
}

func (w *Workflow) SubmitError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitErr
}

func (w *Workflow) UPILaunched() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.upiLaunched
}

func (w *Workflow) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

func (w *Workflow) SuccessAmount() decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.successAmount
}

// SuccessMessage é o texto exibido no passo final
func (w *Workflow) SuccessMessage() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fmt.Sprintf("₹%s is pending admin verification.", w.successAmount.StringFixed(2))
}

func (w *Workflow) kind(err error) string {
	if w.kindOf == nil {
		return ""
	}
	return w.kindOf(err)
}
