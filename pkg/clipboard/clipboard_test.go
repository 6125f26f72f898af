package clipboard

import (
	"testing"

	"github.com/semadraw/semadraw/pkg/ipc"
)

func TestSetThenGetRoundTrips(t *testing.T) {
	b := New()
	b.Set(ipc.SelectionClipboard, 7, []byte("hello"))

	owner, data, ok := b.Get(ipc.SelectionClipboard)
	if !ok {
		t.Fatal("expected selection to be set")
	}
	if owner != 7 || string(data) != "hello" {
		t.Fatalf("unexpected owner/data: %d %q", owner, data)
	}
}

func TestSelectionsAreIndependent(t *testing.T) {
	b := New()
	b.Set(ipc.SelectionPrimary, 1, []byte("a"))
	b.Set(ipc.SelectionClipboard, 2, []byte("b"))

	_, data, _ := b.Get(ipc.SelectionPrimary)
	if string(data) != "a" {
		t.Fatalf("primary contaminated: %q", data)
	}
	_, data, _ = b.Get(ipc.SelectionClipboard)
	if string(data) != "b" {
		t.Fatalf("clipboard contaminated: %q", data)
	}
}

func TestLastSetterWinsOwnership(t *testing.T) {
	b := New()
	b.Set(ipc.SelectionPrimary, 1, []byte("first"))
	b.Set(ipc.SelectionPrimary, 2, []byte("second"))

	owner, data, ok := b.Get(ipc.SelectionPrimary)
	if !ok || owner != 2 || string(data) != "second" {
		t.Fatalf("expected owner 2 with latest data, got owner=%d data=%q ok=%v", owner, data, ok)
	}
}

func TestGetUnsetSelectionNotOK(t *testing.T) {
	b := New()
	if _, _, ok := b.Get(ipc.SelectionPrimary); ok {
		t.Fatal("expected unset selection to report not ok")
	}
}

func TestReleaseOwnerClearsOnlyOwnedSelections(t *testing.T) {
	b := New()
	b.Set(ipc.SelectionPrimary, 1, []byte("mine"))
	b.Set(ipc.SelectionClipboard, 2, []byte("theirs"))

	b.ReleaseOwner(1)

	if _, _, ok := b.Get(ipc.SelectionPrimary); ok {
		t.Fatal("expected primary to be released")
	}
	if _, _, ok := b.Get(ipc.SelectionClipboard); !ok {
		t.Fatal("expected clipboard to remain set")
	}
}

func TestSetCopiesInputSlice(t *testing.T) {
	b := New()
	data := []byte("mutable")
	b.Set(ipc.SelectionPrimary, 1, data)
	data[0] = 'X'

	_, stored, _ := b.Get(ipc.SelectionPrimary)
	if string(stored) != "mutable" {
		t.Fatalf("expected stored data to be unaffected by caller mutation, got %q", stored)
	}
}
