package testutil

import (
	"context"
	"fmt"
	"sync"

	"codecrew/internal/chain"
)

// EscrowCall records a single escrow operation made during a test
type EscrowCall struct {
	Op          string
	Repository  string
	IssueNumber int
	Amount      int
	Wallet      string
}

// FakeEscrow implements chain.EscrowClient and records every call.
//
// FailOp, when set, makes the matching operation return an error so
// tests can exercise failure paths.
type FakeEscrow struct {
	mu     sync.Mutex
	calls  []EscrowCall
	nextTx int

	FailOp string
}

// NewFakeEscrow creates a recording escrow client
func NewFakeEscrow() *FakeEscrow {
	return &FakeEscrow{}
}

// Calls returns a copy of all recorded calls
func (f *FakeEscrow) Calls() []EscrowCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]EscrowCall(nil), f.calls...)
}

// CallsTo returns recorded calls for a single operation
func (f *FakeEscrow) CallsTo(op string) []EscrowCall {
	var out []EscrowCall
	for _, c := range f.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeEscrow) record(call EscrowCall) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailOp == call.Op {
		return "", fmt.Errorf("escrow %s failed", call.Op)
	}

	f.calls = append(f.calls, call)
	f.nextTx++
	return fmt.Sprintf("0xfake%064d", f.nextTx), nil
}

func (f *FakeEscrow) CreatePool(ctx context.Context, repositoryFullName string) (string, error) {
	return f.record(EscrowCall{Op: "CreatePool", Repository: repositoryFullName})
}

func (f *FakeEscrow) FundPool(ctx context.Context, repositoryFullName string, amount int) (string, error) {
	return f.record(EscrowCall{Op: "FundPool", Repository: repositoryFullName, Amount: amount})
}

func (f *FakeEscrow) CreateBounty(ctx context.Context, repositoryFullName string, issueNumber, amount int) (string, error) {
	return f.record(EscrowCall{Op: "CreateBounty", Repository: repositoryFullName, IssueNumber: issueNumber, Amount: amount})
}

func (f *FakeEscrow) ClaimBounty(ctx context.Context, repositoryFullName string, issueNumber int, wallet string) (string, error) {
	return f.record(EscrowCall{Op: "ClaimBounty", Repository: repositoryFullName, IssueNumber: issueNumber, Wallet: wallet})
}

func (f *FakeEscrow) CompleteBounty(ctx context.Context, repositoryFullName string, issueNumber int, wallet string) (string, error) {
	return f.record(EscrowCall{Op: "CompleteBounty", Repository: repositoryFullName, IssueNumber: issueNumber, Wallet: wallet})
}

func (f *FakeEscrow) CancelBounty(ctx context.Context, repositoryFullName string, issueNumber int) (string, error) {
	return f.record(EscrowCall{Op: "CancelBounty", Repository: repositoryFullName, IssueNumber: issueNumber})
}

func (f *FakeEscrow) PoolState(ctx context.Context, repositoryFullName string) (*chain.PoolState, error) {
	return &chain.PoolState{Active: true}, nil
}

func (f *FakeEscrow) BountyState(ctx context.Context, repositoryFullName string, issueNumber int) (*chain.BountyState, error) {
	return &chain.BountyState{IssueNumber: issueNumber}, nil
}
