package chain

import (
	"context"
	"strings"
	"testing"
	"time"
)

// TestSimulatedClient_TxHashes tests fabricated transaction hashes
func TestSimulatedClient_TxHashes(t *testing.T) {
	client := NewSimulatedClient("0xc0de", 0)
	ctx := context.Background()

	first, err := client.FundPool(ctx, "alice/app", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := client.CompleteBounty(ctx, "alice/app", 7, "0xwallet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, hash := range []string{first, second} {
		if !strings.HasPrefix(hash, "0x") || len(hash) != 66 {
			t.Errorf("expected 32-byte hex hash with 0x prefix, got %q", hash)
		}
	}

	if first == second {
		t.Error("expected distinct transaction hashes")
	}
}

// TestSimulatedClient_ContextCancel tests that the artificial delay honors cancellation
func TestSimulatedClient_ContextCancel(t *testing.T) {
	client := NewSimulatedClient("0xc0de", time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.CreatePool(ctx, "alice/app"); err == nil {
		t.Error("expected context error")
	}
}

// TestSimulatedClient_States tests fabricated contract state reads
func TestSimulatedClient_States(t *testing.T) {
	client := NewSimulatedClient("0xc0de", 0)
	ctx := context.Background()

	pool, err := client.PoolState(ctx, "alice/app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.ContractAddress != "0xc0de" || !pool.Active {
		t.Errorf("unexpected pool state: %+v", pool)
	}

	bounty, err := client.BountyState(ctx, "alice/app", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bounty.IssueNumber != 7 {
		t.Errorf("unexpected bounty state: %+v", bounty)
	}
}
