package adminreview

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ffarena/tournament-platform/internal/client/api"
)

// API são as chamadas remotas usadas pela fila de revisão
type API interface {
	IsAdmin(ctx context.Context) (bool, error)
	PendingDeposits(ctx context.Context) ([]api.DepositRecord, error)
	ApproveDeposit(ctx context.Context, id int64) error
	RejectDeposit(ctx context.Context, id int64) error
}

// Invalidator marca chaves de leitura cacheadas como stale
type Invalidator interface {
	Invalidate(key string)
}

// Workflow apresenta a fila de depósitos PENDING a um chamador privilegiado
// e encaminha decisões binárias. Não guarda estado além de "qual linha está
// submetendo agora"; cada decisão dispara refetch do snapshot.
type Workflow struct {
	api   API
	cache Invalidator
	log   *zap.Logger

	mu       sync.Mutex
	checked  bool
	admin    bool
	deposits []api.DepositRecord
	loadErr  string
	rowBusy  map[int64]bool
	rowErr   map[int64]string
}

func NewWorkflow(a API, cache Invalidator, log *zap.Logger) *Workflow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Workflow{
		api:     a,
		cache:   cache,
		log:     log,
		rowBusy: make(map[int64]bool),
		rowErr:  make(map[int64]string),
	}
}

// Load checa o privilégio ANTES de qualquer leitura de dados.
// Chamador sem privilégio vê acesso negado e a fila nunca é buscada.
func (w *Workflow) Load(ctx context.Context) error {
	admin, err := w.api.IsAdmin(ctx)
	if err != nil {
		w.mu.Lock()
		w.loadErr = err.Error()
		w.mu.Unlock()
		return err
	}

	w.mu.Lock()
	w.checked = true
	w.admin = admin
	w.mu.Unlock()

	if !admin {
		return nil
	}
	return w.Refresh(ctx)
}

// Refresh rebusca o snapshot completo da fila (sem paginação)
func (w *Workflow) Refresh(ctx context.Context) error {
	w.mu.Lock()
	if !w.admin {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	list, err := w.api.PendingDeposits(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.loadErr = err.Error()
		return err
	}
	w.loadErr = ""
	w.deposits = list
	return nil
}

// Approve encaminha a aprovação. O serviço marca o registro e credita a
// carteira como uma unidade atômica; o cliente nunca mexe no saldo.
func (w *Workflow) Approve(ctx context.Context, id int64) {
	w.review(ctx, id, true)
}

// Reject encaminha a rejeição; nenhuma mutação de carteira
func (w *Workflow) Reject(ctx context.Context, id int64) {
	w.review(ctx, id, false)
}

// review executa a decisão com guarda de in-flight por linha:
// enquanto uma ação está pendente para a linha, Approve e Reject são no-op
// (evita double-submit que poderia creditar em dobro)
func (w *Workflow) review(ctx context.Context, id int64, approve bool) {
	w.mu.Lock()
	if !w.admin || w.rowBusy[id] {
		w.mu.Unlock()
		return
	}
	w.rowBusy[id] = true
	delete(w.rowErr, id)
	w.mu.Unlock()

	var err error
	if approve {
		err = w.api.ApproveDeposit(ctx, id)
	} else {
		err = w.api.RejectDeposit(ctx, id)
	}

	w.mu.Lock()
	delete(w.rowBusy, id)
	if err != nil {
		// falha fica inline na linha, que permanece na lista para retry
		w.rowErr[id] = err.Error()
		w.log.Warn("deposit review", zap.Int64("id", id), zap.Bool("approve", approve), zap.Error(err))
	} else if approve && w.cache != nil {
		// o depositante pode estar olhando o próprio saldo em outra visão
		w.cache.Invalidate("walletBalance")
	}
	w.mu.Unlock()

	// a fila é rebuscada após a ação resolver, com ou sem sucesso
	_ = w.Refresh(ctx)
}

// AccessDenied indica que o chamador foi checado e não é admin
func (w *Workflow) AccessDenied() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.checked && !w.admin
}

// Deposits retorna o snapshot atual da fila
func (w *Workflow) Deposits() []api.DepositRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]api.DepositRecord, len(w.deposits))
	copy(out, w.deposits)
	return out
}

// RowBusy indica se há ação em voo para a linha
func (w *Workflow) RowBusy(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowBusy[id]
}

// RowError retorna a falha inline da linha, se houver
func (w *Workflow) RowError(id int64) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowErr[id]
}

// LoadError retorna a última falha de carga/refresh da fila
func (w *Workflow) LoadError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loadErr
}
