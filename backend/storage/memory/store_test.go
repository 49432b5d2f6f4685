package memory

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
)

func members(ms *MemStore, roomID string) []string {
	m := ms.Members(roomID)
	sort.Strings(m)
	return m
}

func TestMemStore_JoinCapacity(t *testing.T) {
	ms := NewMemStore()

	if err := ms.Join("r1", "a"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if err := ms.Join("r1", "b"); err != nil {
		t.Fatalf("second join: %v", err)
	}
	if err := ms.Join("r1", "c"); !errors.Is(err, ErrRoomIsFull) {
		t.Fatalf("third join: got %v want ErrRoomIsFull", err)
	}

	got := members(ms, "r1")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("members after rejected join: got %v want [a b]", got)
	}
}

func TestMemStore_RejoinIsNoOp(t *testing.T) {
	ms := NewMemStore()
	if err := ms.Join("r1", "a"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := ms.Join("r1", "b"); err != nil {
		t.Fatalf("join: %v", err)
	}
	// A member of a full room re-joining must not be rejected.
	if err := ms.Join("r1", "a"); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if got := members(ms, "r1"); len(got) != 2 {
		t.Fatalf("members: got %v want 2 entries", got)
	}
}

func TestMemStore_LeaveDiscardsEmptyRoom(t *testing.T) {
	ms := NewMemStore()
	if err := ms.Join("r1", "a"); err != nil {
		t.Fatalf("join: %v", err)
	}
	ms.Leave("r1", "a")

	if got := ms.Members("r1"); got != nil {
		t.Fatalf("members of discarded room: got %v want nil", got)
	}
	// The identifier is immediately reusable at full capacity.
	if err := ms.Join("r1", "x"); err != nil {
		t.Fatalf("join after discard: %v", err)
	}
	if err := ms.Join("r1", "y"); err != nil {
		t.Fatalf("join after discard: %v", err)
	}
}

func TestMemStore_LeaveIdempotent(t *testing.T) {
	ms := NewMemStore()
	if err := ms.Join("r1", "a"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := ms.Join("r1", "b"); err != nil {
		t.Fatalf("join: %v", err)
	}

	if !ms.Leave("r1", "a") {
		t.Fatalf("first leave did not report membership")
	}
	if ms.Leave("r1", "a") {
		t.Fatalf("second leave reported membership")
	}
	if ms.Leave("r1", "absent") {
		t.Fatalf("leave of non-member reported membership")
	}
	if ms.Leave("no-such-room", "a") {
		t.Fatalf("leave of absent room reported membership")
	}

	if got := members(ms, "r1"); len(got) != 1 || got[0] != "b" {
		t.Fatalf("members: got %v want [b]", got)
	}
}

func TestMemStore_CloseRoom(t *testing.T) {
	ms := NewMemStore()
	if err := ms.Join("r1", "a"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := ms.Join("r1", "b"); err != nil {
		t.Fatalf("join: %v", err)
	}

	evicted := ms.CloseRoom("r1")
	sort.Strings(evicted)
	if len(evicted) != 2 || evicted[0] != "a" || evicted[1] != "b" {
		t.Fatalf("evicted: got %v want [a b]", evicted)
	}
	if got := ms.Members("r1"); got != nil {
		t.Fatalf("members after close: got %v want nil", got)
	}

	// Closing again is a no-op.
	if evicted = ms.CloseRoom("r1"); evicted != nil {
		t.Fatalf("second close: got %v want nil", evicted)
	}

	// The room ID is reusable right away.
	if err := ms.Join("r1", "c"); err != nil {
		t.Fatalf("join after close: %v", err)
	}
}

func TestMemStore_MembersExcept(t *testing.T) {
	ms := NewMemStore()
	if err := ms.Join("r1", "a"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := ms.Join("r1", "b"); err != nil {
		t.Fatalf("join: %v", err)
	}

	if got := ms.MembersExcept("r1", "a"); len(got) != 1 || got[0] != "b" {
		t.Fatalf("MembersExcept(a): got %v want [b]", got)
	}
	if got := ms.MembersExcept("r1", "c"); len(got) != 2 {
		t.Fatalf("MembersExcept(non-member): got %v want 2 entries", got)
	}
	if got := ms.MembersExcept("absent", "a"); got != nil {
		t.Fatalf("MembersExcept(absent room): got %v want nil", got)
	}
}

func TestMemStore_ConcurrentJoins(t *testing.T) {
	ms := NewMemStore()

	const workers = 16
	var (
		wg       sync.WaitGroup
		admitted atomic.Int64
		rejected atomic.Int64
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			err := ms.Join("r1", fmt.Sprintf("h%d", i))
			switch {
			case err == nil:
				admitted.Add(1)
			case errors.Is(err, ErrRoomIsFull):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if admitted.Load() != 2 {
		t.Fatalf("admitted: got %d want 2", admitted.Load())
	}
	if rejected.Load() != workers-2 {
		t.Fatalf("rejected: got %d want %d", rejected.Load(), workers-2)
	}
	if got := ms.Members("r1"); len(got) != 2 {
		t.Fatalf("members: got %v want 2 entries", got)
	}
}

func TestMemStore_ConcurrentJoinLeaveChurn(t *testing.T) {
	ms := NewMemStore()

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			h := fmt.Sprintf("h%d", i)
			for j := 0; j < 100; j++ {
				if err := ms.Join("r1", h); err == nil {
					ms.Leave("r1", h)
				}
			}
		}(i)
	}
	wg.Wait()

	if got := ms.Members("r1"); got != nil {
		t.Fatalf("members after churn: got %v want nil", got)
	}
}
