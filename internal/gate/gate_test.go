package gate

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeLookup struct {
	statuses map[string]string
	errs     map[string]error
	calls    []string
}

func (f *fakeLookup) MemberStatus(channel string, userID int64) (string, error) {
	f.calls = append(f.calls, channel)
	if err, ok := f.errs[channel]; ok {
		return "", err
	}
	return f.statuses[channel], nil
}

func TestAdmitted_MemberPlusLeft(t *testing.T) {
	lk := &fakeLookup{statuses: map[string]string{"@a": "member", "@b": "left"}}
	g := New(lk, zap.NewNop())
	if g.Admitted(1, []string{"@a", "@b"}) {
		t.Fatal("left in one channel must deny")
	}
}

func TestAdmitted_MemberPlusAdministrator(t *testing.T) {
	lk := &fakeLookup{statuses: map[string]string{"@a": "member", "@b": "administrator"}}
	g := New(lk, zap.NewNop())
	if !g.Admitted(1, []string{"@a", "@b"}) {
		t.Fatal("member + administrator must admit")
	}
}

func TestAdmitted_EmptyChannelSet(t *testing.T) {
	g := New(&fakeLookup{}, zap.NewNop())
	if !g.Admitted(1, nil) {
		t.Fatal("empty channel set must always admit")
	}
}

func TestAdmitted_LookupErrorDenies(t *testing.T) {
	lk := &fakeLookup{errs: map[string]error{"@a": errors.New("api down")}}
	g := New(lk, zap.NewNop())
	if g.Admitted(1, []string{"@a"}) {
		t.Fatal("lookup failure must count as non-membership")
	}
}

func TestAdmitted_ShortCircuits(t *testing.T) {
	lk := &fakeLookup{statuses: map[string]string{"@a": "kicked", "@b": "member"}}
	g := New(lk, zap.NewNop())
	if g.Admitted(1, []string{"@a", "@b"}) {
		t.Fatal("kicked must deny")
	}
	if len(lk.calls) != 1 {
		t.Fatalf("expected short-circuit after first failing channel, got %d lookups", len(lk.calls))
	}
}

func TestAdmitted_UnknownStatusCounts(t *testing.T) {
	// Statuses outside the deny-list (creator, restricted, anything new the
	// API grows) count as subscribed.
	lk := &fakeLookup{statuses: map[string]string{"@a": "restricted"}}
	g := New(lk, zap.NewNop())
	if !g.Admitted(1, []string{"@a"}) {
		t.Fatal("restricted is not on the deny-list and must admit")
	}
}
