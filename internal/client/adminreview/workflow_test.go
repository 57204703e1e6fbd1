package adminreview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ffarena/tournament-platform/internal/client/api"
)

type fakeAPI struct {
	mu           sync.Mutex
	admin        bool
	adminErr     error
	pending      []api.DepositRecord
	pendingCalls int
	approveCalls int
	rejectCalls  int
	approveErr   error
	approveBlock chan struct{}
}

func (f *fakeAPI) IsAdmin(context.Context) (bool, error) {
	return f.admin, f.adminErr
}

func (f *fakeAPI) PendingDeposits(context.Context) ([]api.DepositRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingCalls++
	return append([]api.DepositRecord(nil), f.pending...), nil
}

func (f *fakeAPI) ApproveDeposit(_ context.Context, _ int64) error {
	f.mu.Lock()
	f.approveCalls++
	block := f.approveBlock
	err := f.approveErr
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return err
}

func (f *fakeAPI) RejectDeposit(_ context.Context, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectCalls++
	return nil
}

func (f *fakeAPI) counts() (pending, approve, reject int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pendingCalls, f.approveCalls, f.rejectCalls
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

func record(id int64) api.DepositRecord {
	return api.DepositRecord{ID: id, UID: "uid-1", Amount: decimal.NewFromInt(50), UTR: "123456789012", Status: "PENDING"}
}

func TestNonAdminNeverFetchesQueue(t *testing.T) {
	f := &fakeAPI{admin: false, pending: []api.DepositRecord{record(1)}}
	w := NewWorkflow(f, &fakeInvalidator{}, nil)

	if err := w.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !w.AccessDenied() {
		t.Fatal("expected access denied for non-admin")
	}
	pending, _, _ := f.counts()
	if pending != 0 {
		t.Fatal("pending queue fetched for non-admin caller")
	}
	if len(w.Deposits()) != 0 {
		t.Fatal("non-admin received deposit data")
	}
}

func TestAdminLoadsSnapshot(t *testing.T) {
	f := &fakeAPI{admin: true, pending: []api.DepositRecord{record(1), record(2)}}
	w := NewWorkflow(f, &fakeInvalidator{}, nil)

	if err := w.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if w.AccessDenied() {
		t.Fatal("admin flagged as denied")
	}
	if got := len(w.Deposits()); got != 2 {
		t.Fatalf("deposits = %d, want 2", got)
	}
}

func TestRowActionsMutuallyExclusiveWhileInFlight(t *testing.T) {
	block := make(chan struct{})
	f := &fakeAPI{admin: true, pending: []api.DepositRecord{record(1)}, approveBlock: block}
	w := NewWorkflow(f, &fakeInvalidator{}, nil)
	if err := w.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		w.Approve(context.Background(), 1)
		close(done)
	}()

	for !w.RowBusy(1) {
		time.Sleep(time.Millisecond)
	}

	// segunda ação na mesma linha em voo: no-op, nos dois botões
	w.Approve(context.Background(), 1)
	w.Reject(context.Background(), 1)

	close(block)
	<-done

	_, approve, reject := f.counts()
	if approve != 1 {
		t.Fatalf("approve calls = %d, want 1", approve)
	}
	if reject != 0 {
		t.Fatalf("reject calls = %d, want 0", reject)
	}
	if w.RowBusy(1) {
		t.Fatal("row still busy after settle")
	}
}

func TestApproveRefetchesAndInvalidatesWallet(t *testing.T) {
	f := &fakeAPI{admin: true, pending: []api.DepositRecord{record(1)}}
	inv := &fakeInvalidator{}
	w := NewWorkflow(f, inv, nil)
	if err := w.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	before, _, _ := f.counts()
	w.Approve(context.Background(), 1)
	after, _, _ := f.counts()

	if after != before+1 {
		t.Fatalf("pending fetches = %d, want %d (refetch after action)", after, before+1)
	}
	if !inv.has("walletBalance") {
		t.Fatal("wallet balance cache not invalidated after approve")
	}
}

func TestFailureReportedInlineRowRetained(t *testing.T) {
	f := &fakeAPI{admin: true, pending: []api.DepositRecord{record(1)}, approveErr: errors.New("boom")}
	inv := &fakeInvalidator{}
	w := NewWorkflow(f, inv, nil)
	if err := w.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	w.Approve(context.Background(), 1)

	if got := w.RowError(1); got != "boom" {
		t.Fatalf("row error = %q", got)
	}
	if len(w.Deposits()) != 1 {
		t.Fatal("row must remain in the list for retry")
	}
	if inv.has("walletBalance") {
		t.Fatal("failed approve must not invalidate wallet cache")
	}
}

func TestTwoRowsMayRunConcurrently(t *testing.T) {
	block := make(chan struct{})
	f := &fakeAPI{admin: true, pending: []api.DepositRecord{record(1), record(2)}, approveBlock: block}
	w := NewWorkflow(f, &fakeInvalidator{}, nil)
	if err := w.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); w.Approve(context.Background(), 1) }()
	go func() { defer wg.Done(); w.Approve(context.Background(), 2) }()

	for !w.RowBusy(1) || !w.RowBusy(2) {
		time.Sleep(time.Millisecond)
	}
	close(block)
	wg.Wait()

	_, approve, _ := f.counts()
	if approve != 2 {
		t.Fatalf("approve calls = %d, want 2 (rows are independent)", approve)
	}
}
