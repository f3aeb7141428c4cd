package ras

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"rasim/internal/common"
	"rasim/internal/rasim"
)

func pc(addr rasim.VAddr) rasim.PCState {
	return rasim.PCState{Addr: addr, ISA: rasim.ISAAArch64}
}

func newStack(t *testing.T, numEntries int) *ReturnAddrStack {
	t.Helper()
	s, err := New(numEntries)
	if err != nil {
		t.Fatalf("New(%d) failed: %v", numEntries, err)
	}
	return s
}

func TestInitRejectsBadSize(t *testing.T) {
	for _, n := range []int{0, -1, -16} {
		s, err := New(n)
		if err == nil {
			t.Errorf("New(%d) should fail", n)
			continue
		}
		if s != nil {
			t.Errorf("New(%d) returned a stack with an error", n)
		}
		if !common.IsCode(err, rasim.ErrInvalidParamVal) {
			t.Errorf("New(%d) error = %v, want ErrInvalidParamVal", n, err)
		}
	}
}

func TestInitTwice(t *testing.T) {
	s := newStack(t, 4)
	s.Push(pc(0x100))

	err := s.Init(8)
	if !common.IsCode(err, rasim.ErrAlreadyInit) {
		t.Fatalf("second Init error = %v, want ErrAlreadyInit", err)
	}
	if s.NumEntries() != 4 || s.UsedEntries() != 1 || s.Top() != pc(0x100) {
		t.Errorf("second Init modified the stack: entries=%d used=%d top=%v",
			s.NumEntries(), s.UsedEntries(), s.Top())
	}
}

func TestUninitialisedIsNoOp(t *testing.T) {
	var s ReturnAddrStack
	if s.IsInit() {
		t.Fatal("zero value should not be initialised")
	}

	s.Push(pc(0x100))
	s.Pop()
	s.Restore(3, pc(0x200))
	s.Reset()

	if s.TopIdx() != 0 || s.UsedEntries() != 0 || s.Full() {
		t.Errorf("uninitialised stack changed: tos=%d used=%d", s.TopIdx(), s.UsedEntries())
	}
	if s.Top() != (rasim.PCState{}) {
		t.Errorf("uninitialised Top = %v, want zero", s.Top())
	}

	if err := s.Init(2); err != nil {
		t.Fatalf("Init on zero value failed: %v", err)
	}
	if !s.IsInit() || s.NumEntries() != 2 {
		t.Errorf("Init(2) gave entries=%d", s.NumEntries())
	}
}

func TestReset(t *testing.T) {
	for _, numEntries := range []int{1, 2, 3, 16} {
		s := newStack(t, numEntries)
		for i := 0; i < numEntries+2; i++ {
			s.Push(rasim.PCState{Addr: rasim.VAddr(0x1000 + i*4), ISA: rasim.ISAThumb2})
		}
		s.Pop()

		s.Reset()

		if s.UsedEntries() != 0 || s.TopIdx() != 0 || !s.Empty() {
			t.Errorf("entries=%d: after Reset used=%d tos=%d", numEntries, s.UsedEntries(), s.TopIdx())
		}
		if diff := cmp.Diff(make([]rasim.PCState, numEntries), s.addrStack); diff != "" {
			t.Errorf("entries=%d: slots not cleared (-want +got):\n%s", numEntries, diff)
		}

		// idempotent
		s.Reset()
		if s.UsedEntries() != 0 || s.TopIdx() != 0 {
			t.Errorf("entries=%d: second Reset changed state", numEntries)
		}
	}
}

func TestPushUpToCapacity(t *testing.T) {
	const numEntries = 8
	for n := 1; n <= numEntries; n++ {
		s := newStack(t, numEntries)
		var last rasim.PCState
		for i := 0; i < n; i++ {
			last = pc(rasim.VAddr(0x4000 + i*4))
			s.Push(last)
		}
		if s.UsedEntries() != n {
			t.Errorf("after %d pushes used=%d", n, s.UsedEntries())
		}
		if s.Top() != last {
			t.Errorf("after %d pushes top=%v, want %v", n, s.Top(), last)
		}
		if s.Full() != (n == numEntries) {
			t.Errorf("after %d pushes Full()=%v", n, s.Full())
		}
	}
}

func TestPushPastCapacityEvictsOldest(t *testing.T) {
	const numEntries = 4
	s := newStack(t, numEntries)

	oldest := pc(0x1000)
	s.Push(oldest)
	for i := 1; i <= numEntries; i++ {
		s.Push(pc(rasim.VAddr(0x1000 + i*4)))
	}

	if s.UsedEntries() != numEntries {
		t.Errorf("used=%d after %d pushes, want %d", s.UsedEntries(), numEntries+1, numEntries)
	}
	for i, v := range s.addrStack {
		if v == oldest {
			t.Errorf("oldest entry still present in slot %d", i)
		}
	}

	// walking back from the top yields newest first
	want := []rasim.PCState{pc(0x1010), pc(0x100c), pc(0x1008), pc(0x1004)}
	var got []rasim.PCState
	for j := 0; j < numEntries; j++ {
		got = append(got, s.Top())
		s.Pop()
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pop order mismatch (-want +got):\n%s", diff)
	}
	if !s.Empty() {
		t.Errorf("used=%d after popping everything", s.UsedEntries())
	}
}

func TestPopAfterPushes(t *testing.T) {
	const numEntries = 4
	for n := 1; n <= numEntries; n++ {
		s := newStack(t, numEntries)
		for i := 0; i < n; i++ {
			s.Push(pc(rasim.VAddr(0x2000 + i*4)))
		}
		before := s.TopIdx()
		s.Pop()

		if s.UsedEntries() != n-1 {
			t.Errorf("n=%d: used=%d after pop", n, s.UsedEntries())
		}
		wantIdx := (before + numEntries - 1) % numEntries
		if s.TopIdx() != wantIdx {
			t.Errorf("n=%d: tos=%d after pop, want %d", n, s.TopIdx(), wantIdx)
		}
	}
}

func TestPopEmptyMovesCursor(t *testing.T) {
	s := newStack(t, 4)

	s.Pop()
	if s.UsedEntries() != 0 {
		t.Errorf("used underflowed to %d", s.UsedEntries())
	}
	if s.TopIdx() != 3 {
		t.Errorf("tos=%d after empty pop, want 3", s.TopIdx())
	}

	s.Pop()
	if s.UsedEntries() != 0 || s.TopIdx() != 2 {
		t.Errorf("second empty pop: used=%d tos=%d", s.UsedEntries(), s.TopIdx())
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	s := newStack(t, 3)
	s.Push(pc(0x10))
	s.Push(pc(0x20))

	idx, val := s.TopIdx(), s.Top()
	s.Push(pc(0x30))
	s.Pop()

	if s.TopIdx() != idx || s.Top() != val {
		t.Errorf("round trip gave tos=%d top=%v, want tos=%d top=%v", s.TopIdx(), s.Top(), idx, val)
	}
	// pop leaves the slot it retired untouched
	if s.addrStack[(idx+1)%3] != pc(0x30) {
		t.Errorf("pop cleared the retired slot: %v", s.addrStack[(idx+1)%3])
	}
}

func TestRestoreExact(t *testing.T) {
	type op func(*ReturnAddrStack)
	push := func(a rasim.VAddr) op { return func(s *ReturnAddrStack) { s.Push(pc(a)) } }
	pop := func(s *ReturnAddrStack) { s.Pop() }

	tests := []struct {
		name   string
		before []op
		after  []op
	}{
		{"pushes only", []op{push(1), push(2)}, []op{push(3), push(4), push(5)}},
		{"pops only", []op{push(1), push(2), push(3)}, []op{pop, pop, pop, pop, pop}},
		{"mixed and wrapping", []op{push(1)}, []op{push(2), pop, push(3), push(4), push(5), push(6), pop, push(7)}},
		{"nothing in between", []op{push(9)}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newStack(t, 4)
			for _, o := range tc.before {
				o(s)
			}
			cp := s.Checkpoint()
			for _, o := range tc.after {
				o(s)
			}

			s.Restore(cp.TopIdx, cp.Top)

			if diff := cmp.Diff(cp, s.Checkpoint()); diff != "" {
				t.Errorf("restore mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSquashInReverseOrder(t *testing.T) {
	s := newStack(t, 4)
	var cps []Checkpoint

	cps = append(cps, s.Checkpoint())
	s.Push(pc(0xA))
	committed := s.Checkpoint()

	cps = append(cps, s.Checkpoint())
	s.Push(pc(0xB))
	cps = append(cps, s.Checkpoint())
	s.Pop()
	cps = append(cps, s.Checkpoint())
	s.Push(pc(0xC))

	// undo everything after the first push, newest first
	for i := len(cps) - 1; i >= 1; i-- {
		s.RestoreCheckpoint(cps[i])
	}

	if diff := cmp.Diff(committed, s.Checkpoint()); diff != "" {
		t.Errorf("squash mismatch (-want +got):\n%s", diff)
	}
	// the value the squashed pop retired was put back
	if s.addrStack[2] != pc(0xB) {
		t.Errorf("slot 2 = %v, want %v", s.addrStack[2], pc(0xB))
	}
}

func TestRestoreLeavesUsedEntries(t *testing.T) {
	s := newStack(t, 4)
	s.Push(pc(0x1))
	cp := s.Checkpoint()
	s.Push(pc(0x2))
	s.Push(pc(0x3))

	s.RestoreCheckpoint(cp)

	if s.UsedEntries() != 3 {
		t.Errorf("used=%d after restore, want 3 (not recomputed)", s.UsedEntries())
	}
}

func TestRestoreNormalisesIndex(t *testing.T) {
	tests := []struct {
		idx  int
		want int
	}{
		{0, 0},
		{3, 3},
		{4, 0},
		{9, 1},
		{-1, 3},
		{-6, 2},
	}

	for _, tt := range tests {
		s := newStack(t, 4)
		s.Restore(tt.idx, pc(0x77))
		if s.TopIdx() != tt.want || s.Top() != pc(0x77) {
			t.Errorf("Restore(%d): tos=%d top=%v, want tos=%d", tt.idx, s.TopIdx(), s.Top(), tt.want)
		}
	}
}

func TestWraparound(t *testing.T) {
	s := newStack(t, 3)
	vals := []rasim.PCState{pc(0xA), pc(0xB), pc(0xC), pc(0xD)}
	wantIdx := []int{1, 2, 0, 1}

	for i, v := range vals {
		s.Push(v)
		if s.TopIdx() != wantIdx[i] || s.Top() != v {
			t.Errorf("push %d: tos=%d top=%v, want tos=%d top=%v", i, s.TopIdx(), s.Top(), wantIdx[i], v)
		}
	}
	want := []rasim.PCState{pc(0xC), pc(0xD), pc(0xB)}
	if diff := cmp.Diff(want, s.addrStack); diff != "" {
		t.Errorf("D should overwrite A's slot (-want +got):\n%s", diff)
	}
}

func TestTwoEntryScenario(t *testing.T) {
	x := rasim.PCState{Addr: 0x8000, ISA: rasim.ISAArm}
	y := rasim.PCState{Addr: 0x9000, ISA: rasim.ISAThumb2}

	s := newStack(t, 2)

	s.Push(x)
	if s.Top() != x || s.UsedEntries() != 1 {
		t.Fatalf("push X: top=%v used=%d", s.Top(), s.UsedEntries())
	}
	savedTop := s.TopIdx()

	s.Push(y)
	if s.Top() != y || s.UsedEntries() != 2 {
		t.Fatalf("push Y: top=%v used=%d", s.Top(), s.UsedEntries())
	}

	s.Pop()
	if s.UsedEntries() != 1 || s.TopIdx() != savedTop || s.Top() != x {
		t.Fatalf("pop: used=%d tos=%d top=%v", s.UsedEntries(), s.TopIdx(), s.Top())
	}

	s.Restore(savedTop, x)
	if diff := cmp.Diff(Checkpoint{TopIdx: savedTop, Top: x}, s.Checkpoint()); diff != "" {
		t.Errorf("restore mismatch (-want +got):\n%s", diff)
	}
}
