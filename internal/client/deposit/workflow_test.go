package deposit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ffarena/tournament-platform/internal/client/api"
)

type fakeSubmitter struct {
	mu     sync.Mutex
	calls  int
	amount decimal.Decimal
	utr    string
	id     int64
	err    error
	block  chan struct{} // se não-nil, a chamada bloqueia até fechar
}

func (f *fakeSubmitter) SubmitDeposit(_ context.Context, amount decimal.Decimal, utr, _ string) (int64, error) {
	f.mu.Lock()
	f.calls++
	f.amount = amount
	f.utr = utr
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.id, f.err
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeInvalidator struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeInvalidator) Invalidate(key string) {
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()
}

func (f *fakeInvalidator) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range f.keys {
		if k == key {
			return true
		}
	}
	return false
}

type launchRecorder struct {
	mu   sync.Mutex
	uris []string
}

func (l *launchRecorder) launch(uri string) error {
	l.mu.Lock()
	l.uris = append(l.uris, uri)
	l.mu.Unlock()
	return nil
}

func (l *launchRecorder) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.uris)
}

func kindOf(err error) string { return string(api.KindOf(err)) }

func newTestWorkflow(sub *fakeSubmitter, inv *fakeInvalidator, rec *launchRecorder) *Workflow {
	return NewWorkflow(sub, inv, rec.launch, kindOf, nil)
}

func TestProceedToPayBelowMinimum(t *testing.T) {
	rec := &launchRecorder{}
	w := newTestWorkflow(&fakeSubmitter{}, &fakeInvalidator{}, rec)

	w.SetAmount("5")
	w.ProceedToPay()

	if got := w.AmountError(); got != "Minimum deposit amount is ₹10." {
		t.Fatalf("amount error = %q", got)
	}
	if rec.count() != 0 {
		t.Fatal("payment handoff must not trigger below minimum")
	}
	if w.UPILaunched() {
		t.Fatal("upi launched flag set below minimum")
	}
	if w.Step() != StepAmount {
		t.Fatalf("step = %v, want amount", w.Step())
	}
}

func TestProceedToPayBuildsTwoDecimalURI(t *testing.T) {
	rec := &launchRecorder{}
	w := newTestWorkflow(&fakeSubmitter{}, &fakeInvalidator{}, rec)

	w.SetAmount("50")
	w.ProceedToPay()

	if rec.count() != 1 {
		t.Fatalf("launch count = %d, want 1", rec.count())
	}
	uri := rec.uris[0]
	if !strings.HasPrefix(uri, "upi://pay?") {
		t.Fatalf("uri = %q", uri)
	}
	if !strings.Contains(uri, "am=50.00") {
		t.Fatalf("uri missing 2-decimal amount: %q", uri)
	}
	// sem auto-advance: o usuário precisa confirmar que pagou
	if w.Step() != StepAmount {
		t.Fatalf("step advanced without explicit confirmation: %v", w.Step())
	}
	if !w.UPILaunched() {
		t.Fatal("upi launched flag not set")
	}
}

func TestConfirmPaidRequiresHandoff(t *testing.T) {
	w := newTestWorkflow(&fakeSubmitter{}, &fakeInvalidator{}, &launchRecorder{})

	w.ConfirmPaid()
	if w.Step() != StepAmount {
		t.Fatal("confirm paid advanced without a launched handoff")
	}

	w.SetAmount("50")
	w.ProceedToPay()
	w.ConfirmPaid()
	if w.Step() != StepProof {
		t.Fatalf("step = %v, want proof", w.Step())
	}
}

func TestSetUTRSanitizesAndTruncates(t *testing.T) {
	w := newTestWorkflow(&fakeSubmitter{}, &fakeInvalidator{}, &launchRecorder{})

	w.SetUTR("ab12-34 5678x9012345")
	if got := w.UTR(); got != "123456789012" {
		t.Fatalf("utr = %q, want 123456789012", got)
	}

	w.SetUTR("12ab34")
	if got := w.UTR(); got != "1234" {
		t.Fatalf("utr = %q, want 1234", got)
	}
}

func TestSubmitBlockedWhileUTRIncomplete(t *testing.T) {
	sub := &fakeSubmitter{id: 1}
	w := newTestWorkflow(sub, &fakeInvalidator{}, &launchRecorder{})

	w.SetAmount("50")
	w.ProceedToPay()
	w.ConfirmPaid()
	w.SetUTR("12345")
	w.Submit(context.Background())

	if sub.callCount() != 0 {
		t.Fatal("submit must not reach the service with incomplete UTR")
	}
	if w.UTRError() == "" {
		t.Fatal("expected field error for incomplete UTR")
	}
}

func TestSubmitDuplicateUTRKeepsAmount(t *testing.T) {
	sub := &fakeSubmitter{err: &api.Error{Kind: api.KindDuplicateUTR, Message: "duplicate_utr"}}
	w := newTestWorkflow(sub, &fakeInvalidator{}, &launchRecorder{})

	w.SetAmount("75")
	w.ProceedToPay()
	w.ConfirmPaid()
	w.SetUTR("123456789012")
	w.Submit(context.Background())

	if got := w.UTRError(); got != "This Transaction ID has already been used." {
		t.Fatalf("utr error = %q", got)
	}
	if w.Step() != StepProof {
		t.Fatalf("step = %v, want proof", w.Step())
	}
	if w.Amount() != "75" {
		t.Fatalf("amount cleared on duplicate: %q", w.Amount())
	}
	if w.Submitting() {
		t.Fatal("busy flag not cleared after failure")
	}
}

func TestSubmitSuccessInvalidatesCaches(t *testing.T) {
	sub := &fakeSubmitter{id: 7}
	inv := &fakeInvalidator{}
	w := newTestWorkflow(sub, inv, &launchRecorder{})

	w.SetAmount("50")
	w.ProceedToPay()
	w.ConfirmPaid()
	w.SetUTR("123456789012")
	w.Submit(context.Background())

	if w.Step() != StepSuccess {
		t.Fatalf("step = %v, want success", w.Step())
	}
	if !inv.has("walletBalance") || !inv.has("pendingDeposits") {
		t.Fatalf("cache invalidations = %v", inv.keys)
	}
	if !sub.amount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("submitted amount = %s", sub.amount)
	}
}

func TestSubmitUnauthorizedGetsReauthHint(t *testing.T) {
	for _, errCase := range []error{
		&api.Error{Kind: api.KindUnauthorized, Message: "unauthorized"},
		errors.New("Unauthorized: only authenticated users can deposit"),
	} {
		sub := &fakeSubmitter{err: errCase}
		w := newTestWorkflow(sub, &fakeInvalidator{}, &launchRecorder{})

		w.SetAmount("50")
		w.ProceedToPay()
		w.ConfirmPaid()
		w.SetUTR("123456789012")
		w.Submit(context.Background())

		if got := w.SubmitError(); !strings.Contains(got, "log out and log back in") {
			t.Fatalf("submit error = %q, want re-auth hint", got)
		}
	}
}

func TestSubmitTransportErrorVerbatimPreservesData(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("connection refused")}
	w := newTestWorkflow(sub, &fakeInvalidator{}, &launchRecorder{})

	w.SetAmount("50")
	w.ProceedToPay()
	w.ConfirmPaid()
	w.SetUTR("123456789012")
	w.Submit(context.Background())

	if got := w.SubmitError(); got != "connection refused" {
		t.Fatalf("submit error = %q", got)
	}
	if w.Amount() != "50" || w.UTR() != "123456789012" {
		t.Fatal("entered data must survive a retryable failure")
	}
	if w.Step() != StepProof {
		t.Fatalf("step = %v, want proof", w.Step())
	}
}

func TestReopenPaymentPreservesProof(t *testing.T) {
	rec := &launchRecorder{}
	w := newTestWorkflow(&fakeSubmitter{}, &fakeInvalidator{}, rec)

	w.SetAmount("50")
	w.ProceedToPay()
	w.ConfirmPaid()
	w.SetUTR("123456")

	w.ReopenPayment()
	w.ReopenPayment()

	if rec.count() != 3 {
		t.Fatalf("launch count = %d, want 3", rec.count())
	}
	if w.UTR() != "123456" {
		t.Fatalf("reopen cleared proof: %q", w.UTR())
	}
}

func TestCloseResetsEverything(t *testing.T) {
	sub := &fakeSubmitter{id: 7}
	w := newTestWorkflow(sub, &fakeInvalidator{}, &launchRecorder{})

	w.SetAmount("50")
	w.ProceedToPay()
	w.ConfirmPaid()
	w.SetUTR("123456789012")
	w.Submit(context.Background())
	w.Close()

	if w.Step() != StepAmount || w.Amount() != "" || w.UTR() != "" ||
		w.AmountError() != "" || w.UTRError() != "" || w.SubmitError() != "" ||
		w.UPILaunched() || w.Submitting() || !w.SuccessAmount().IsZero() {
		t.Fatal("close must reset all fields to initial values")
	}
}

func TestSubmitBusyFlagPreventsDoubleSubmit(t *testing.T) {
	block := make(chan struct{})
	sub := &fakeSubmitter{id: 1, block: block}
	w := newTestWorkflow(sub, &fakeInvalidator{}, &launchRecorder{})

	w.SetAmount("50")
	w.ProceedToPay()
	w.ConfirmPaid()
	w.SetUTR("123456789012")

	done := make(chan struct{})
	go func() {
		w.Submit(context.Background())
		close(done)
	}()

	// espera a primeira submissão entrar em voo
	for !w.Submitting() {
		time.Sleep(time.Millisecond)
	}
	w.Submit(context.Background()) // deve ser no-op

	close(block)
	<-done

	if sub.callCount() != 1 {
		t.Fatalf("submit calls = %d, want 1", sub.callCount())
	}
}

func TestEndToEndHappyPath(t *testing.T) {
	sub := &fakeSubmitter{id: 7}
	inv := &fakeInvalidator{}
	rec := &launchRecorder{}
	w := newTestWorkflow(sub, inv, rec)

	w.SetAmount("50")
	w.ProceedToPay()
	if !strings.Contains(rec.uris[0], "am=50.00") {
		t.Fatalf("handoff uri = %q", rec.uris[0])
	}
	w.ConfirmPaid()
	w.SetUTR("123456789012")
	w.Submit(context.Background())

	if w.Step() != StepSuccess {
		t.Fatalf("step = %v", w.Step())
	}
	msg := w.SuccessMessage()
	if !strings.Contains(msg, "₹50.00") || !strings.Contains(msg, "pending") {
		t.Fatalf("success message = %q", msg)
	}
	if !inv.has("walletBalance") {
		t.Fatal("wallet balance cache not marked stale")
	}

	w.Close()
	if w.Step() != StepAmount {
		t.Fatal("close must return to initial step")
	}
}

func TestEndToEndBelowMinimum(t *testing.T) {
	rec := &launchRecorder{}
	w := newTestWorkflow(&fakeSubmitter{}, &fakeInvalidator{}, rec)

	w.SetAmount("5")
	w.ProceedToPay()

	if got := w.AmountError(); got != "Minimum deposit amount is ₹10." {
		t.Fatalf("amount error = %q", got)
	}
	if w.Step() != StepAmount || rec.count() != 0 {
		t.Fatal("must remain on amount entry without handoff")
	}
}
