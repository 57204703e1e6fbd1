package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func newTestClient(handler http.HandlerFunc) (*Client, func()) {
	srv := httptest.NewServer(handler)
	c := New(srv.URL, func() string { return "test-token" })
	return c, srv.Close
}

func TestErrorKindMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		code   string
		want   ErrorKind
	}{
		{"duplicate utr", 409, "duplicate_utr", KindDuplicateUTR},
		{"email exists", 409, "email_exists", KindEmailExists},
		{"user not found", 404, "user_not_found", KindUserNotFound},
		{"password incorrect", 401, "password_incorrect", KindPasswordIncorrect},
		{"insufficient funds", 409, "insufficient_funds", KindInsufficientFunds},
		{"bare 401", 401, "missing token", KindUnauthorized},
		{"bare 403", 403, "access denied", KindForbidden},
		{"bare 404", 404, "not found", KindNotFound},
		{"bare 400", 400, "invalid amount", KindValidation},
		{"bare 500", 500, "boom", KindServer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": tc.code})
			})
			defer done()

			_, err := c.SubmitDeposit(context.Background(), decimal.NewFromInt(50), "123456789012", "")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := KindOf(err); got != tc.want {
				t.Fatalf("kind = %q, want %q", got, tc.want)
			}
			if err.Error() != tc.code {
				t.Fatalf("message = %q, want server code verbatim", err.Error())
			}
		})
	}
}

func TestTransportErrorIsTyped(t *testing.T) {
	c := New("http://127.0.0.1:0", nil)
	_, err := c.Tournaments(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsKind(err, KindTransport) {
		t.Fatalf("kind = %q, want transport", KindOf(err))
	}
}

func TestUntypedErrorCountsAsTransport(t *testing.T) {
	if got := KindOf(context.Canceled); got != KindTransport {
		t.Fatalf("kind = %q, want transport for untyped error", got)
	}
}

func TestBearerHeaderSet(t *testing.T) {
	var gotAuth string
	c, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Tournament{})
	})
	defer done()

	if _, err := c.Tournaments(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

func TestLeaderboardReorderedByPoints(t *testing.T) {
	c, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]LeaderboardEntry{
			{PlayerName: "low", TotalPoints: 10},
			{PlayerName: "high", TotalPoints: 90},
			{PlayerName: "mid", TotalPoints: 40},
		})
	})
	defer done()

	entries, err := c.Leaderboard(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].PlayerName != "high" || entries[1].PlayerName != "mid" || entries[2].PlayerName != "low" {
		t.Fatalf("order = %+v", entries)
	}
}

func TestSubmitDepositReturnsID(t *testing.T) {
	c, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["utr"] != "123456789012" {
			t.Errorf("utr = %v", body["utr"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "status": "PENDING"})
	})
	defer done()

	id, err := c.SubmitDeposit(context.Background(), decimal.NewFromInt(50), "123456789012", "")
	if err != nil {
		t.Fatal(err)
	}
	if id != 7 {
		t.Fatalf("id = %d", id)
	}
}
