package backup

import (
	"context"
	"errors"
	"netbackup/internal/apperrors"
	"netbackup/internal/testutil"
	"testing"
	"time"
)

func TestTransfer_ThresholdBoundary(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{sizes: []int{40000, 40001}}
	store := &memStore{}
	clk := testutil.NewFakeClock(time.Unix(0, 0))

	stored, err := NewTransfer(fetcher, store, clk, nil).
		FetchAndStore(context.Background(), "http://x/dl", "k", testSession, 3, 5*time.Second)
	if err != nil {
		t.Fatalf("FetchAndStore() error = %v", err)
	}

	if fetcher.calls != 2 {
		t.Errorf("fetches = %d, want 2", fetcher.calls)
	}
	puts := store.Puts()
	if len(puts) != 1 {
		t.Fatalf("puts = %d, want 1", len(puts))
	}
	if puts[0].size != 40001 || puts[0].key != "k" {
		t.Errorf("put = %+v, want 40001 bytes under k", puts[0])
	}
	if stored.Bytes != 40001 || stored.Attempts != 2 || stored.Key != "k" {
		t.Errorf("stored = %+v", stored)
	}
	if got := clk.Sleeps(); len(got) != 1 || got[0] != 5*time.Second {
		t.Errorf("sleeps = %v, want [5s]", got)
	}
}

func TestTransfer_FirstAttemptStoresOnce(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{sizes: []int{50000, 50000, 50000}, contentType: "application/x-unf"}
	store := &memStore{}
	clk := testutil.NewFakeClock(time.Unix(0, 0))

	stored, err := NewTransfer(fetcher, store, clk, nil).
		FetchAndStore(context.Background(), "http://x/dl", "k", testSession, 3, time.Second)
	if err != nil {
		t.Fatalf("FetchAndStore() error = %v", err)
	}
	if fetcher.calls != 1 || len(store.Puts()) != 1 || len(clk.Sleeps()) != 0 {
		t.Errorf("fetches=%d puts=%d sleeps=%d, want 1/1/0", fetcher.calls, len(store.Puts()), len(clk.Sleeps()))
	}
	if stored.ContentType != "application/x-unf" || store.Puts()[0].contentType != "application/x-unf" {
		t.Errorf("content type not carried through: %+v", stored)
	}
}

func TestTransfer_Exhausted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fetcher *scriptedFetcher
		store   *memStore
	}{
		{
			name:    "all undersize",
			fetcher: &scriptedFetcher{sizes: []int{0, 40000, 10}},
			store:   &memStore{},
		},
		{
			name:    "fetch errors",
			fetcher: &scriptedFetcher{errs: []error{errors.New("a"), errors.New("b"), errors.New("c")}},
			store:   &memStore{},
		},
		{
			name:    "store errors",
			fetcher: &scriptedFetcher{sizes: []int{50000, 50000, 50000}},
			store:   &memStore{failures: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			clk := testutil.NewFakeClock(time.Unix(0, 0))

			_, err := NewTransfer(tt.fetcher, tt.store, clk, nil).
				FetchAndStore(context.Background(), "http://x/dl", "k", testSession, 3, time.Second)
			if !errors.Is(err, apperrors.ErrTransferExhausted) {
				t.Fatalf("FetchAndStore() error = %v, want ErrTransferExhausted", err)
			}
			if tt.fetcher.calls != 3 {
				t.Errorf("fetches = %d, want 3", tt.fetcher.calls)
			}
			if len(tt.store.Puts()) != 0 {
				t.Errorf("puts = %d, want 0", len(tt.store.Puts()))
			}
			if len(clk.Sleeps()) != 2 {
				t.Errorf("sleeps = %d, want 2", len(clk.Sleeps()))
			}
		})
	}
}

func TestTransfer_RecoversAfterErrors(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{
		errs:  []error{errors.New("connection reset"), nil, nil},
		sizes: []int{0, 50000, 50000},
	}
	store := &memStore{failures: 1}

	stored, err := NewTransfer(fetcher, store, testutil.NewFakeClock(time.Unix(0, 0)), nil).
		FetchAndStore(context.Background(), "http://x/dl", "k", testSession, 3, 0)
	if err != nil {
		t.Fatalf("FetchAndStore() error = %v", err)
	}
	if stored.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", stored.Attempts)
	}
	if len(store.Puts()) != 1 {
		t.Errorf("puts = %d, want 1", len(store.Puts()))
	}
}

func TestTransfer_InvalidAttempts(t *testing.T) {
	t.Parallel()
	_, err := NewTransfer(&scriptedFetcher{}, &memStore{}, nil, nil).
		FetchAndStore(context.Background(), "http://x/dl", "k", testSession, 0, 0)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("FetchAndStore() error = %v, want ErrValidation", err)
	}
}
