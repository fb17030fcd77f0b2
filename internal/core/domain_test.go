package core

import (
	"testing"
	"time"
)

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"budi", true},
		{"Budi Santoso", true},
		{"user_01-a", true},
		{"ab", false},                // too short
		{"", false},                  // empty
		{"budi!", false},             // bad charset
		{"budi@home", false},         // bad charset
		{string(make([]byte, 33)), false}, // too long
	}
	for i, tc := range cases {
		err := ValidateUsername(tc.name)
		if tc.ok && err != nil {
			t.Fatalf("case %d (%q) expected ok, got %v", i, tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d (%q) expected error", i, tc.name)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("secret"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := ValidatePassword("five5"); err == nil {
		t.Fatalf("expected error for short password")
	}
}

func TestNormalizeUsername(t *testing.T) {
	if got := NormalizeUsername("  Budi Santoso "); got != "budi santoso" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeNote(t *testing.T) {
	if got := NormalizeNote(""); got != DefaultNote {
		t.Fatalf("empty note: got %q", got)
	}
	if got := NormalizeNote("  beli kopi "); got != "beli kopi" {
		t.Fatalf("got %q", got)
	}
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	if got := NormalizeNote(string(long)); len(got) != MaxNoteLen {
		t.Fatalf("long note not truncated, len=%d", len(got))
	}
}

func TestAccountTargetLookupIsCaseInsensitive(t *testing.T) {
	a := NewAccount("budi", "secret1", time.Now())
	if _, err := a.AddTarget("Laptop", 1000); err != nil {
		t.Fatalf("add target: %v", err)
	}
	tgt, ok := a.Target("lApToP")
	if !ok {
		t.Fatalf("expected lookup to succeed")
	}
	if tgt.Name != "Laptop" {
		t.Fatalf("display name lost, got %q", tgt.Name)
	}
}

func TestTargetProgress(t *testing.T) {
	tgt := &Target{Goal: 1000, Balance: 250}
	if got := tgt.Progress(); got != 25 {
		t.Fatalf("got %d", got)
	}
	tgt.Balance = 2000
	if got := tgt.Progress(); got != 100 {
		t.Fatalf("progress not capped, got %d", got)
	}
}
