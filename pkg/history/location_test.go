package history

import (
	"errors"
	"testing"
)

func TestMemoryLocationPushReplace(t *testing.T) {
	loc := NewMemoryLocation("/")
	if got := loc.Current(); got != "/" {
		t.Fatalf("Current() = %q, want %q", got, "/")
	}

	loc.Push("/a")
	loc.Push("/b")
	if got := loc.Current(); got != "/b" {
		t.Errorf("Current() = %q, want %q", got, "/b")
	}

	loc.Replace("/b2")
	if got := loc.Current(); got != "/b2" {
		t.Errorf("Current() = %q, want %q", got, "/b2")
	}
	if got := len(loc.Entries()); got != 3 {
		t.Errorf("len(Entries()) = %d, want 3", got)
	}
}

func TestMemoryLocationOwnerWritesDoNotNotify(t *testing.T) {
	loc := NewMemoryLocation("/")
	notified := 0
	loc.Subscribe(func(string) { notified++ })

	loc.Push("/a")
	loc.Replace("/b")
	if notified != 0 {
		t.Errorf("owner writes notified %d times, want 0", notified)
	}
}

func TestMemoryLocationSimulateEditNotifies(t *testing.T) {
	loc := NewMemoryLocation("/")
	var got []string
	cancel := loc.Subscribe(func(url string) { got = append(got, url) })

	loc.SimulateEdit("/typed")
	cancel()
	loc.SimulateEdit("/after-cancel")

	if len(got) != 1 || got[0] != "/typed" {
		t.Errorf("notifications = %v, want [/typed]", got)
	}
	if cur := loc.Current(); cur != "/after-cancel" {
		t.Errorf("Current() = %q, want %q", cur, "/after-cancel")
	}
}

func TestMemoryLocationBackForward(t *testing.T) {
	loc := NewMemoryLocation("/")
	loc.Push("/a")
	loc.Push("/b")

	var got []string
	loc.Subscribe(func(url string) { got = append(got, url) })

	if !loc.Back() {
		t.Fatal("Back() = false, want true")
	}
	if cur := loc.Current(); cur != "/a" {
		t.Errorf("Current() = %q, want %q", cur, "/a")
	}
	if !loc.Forward() {
		t.Fatal("Forward() = false, want true")
	}
	if cur := loc.Current(); cur != "/b" {
		t.Errorf("Current() = %q, want %q", cur, "/b")
	}

	want := []string{"/a", "/b"}
	if len(got) != len(want) {
		t.Fatalf("notifications = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMemoryLocationBackAtOldestEntry(t *testing.T) {
	loc := NewMemoryLocation("/")
	if loc.Back() {
		t.Error("Back() = true at the oldest entry, want false")
	}
	if loc.Forward() {
		t.Error("Forward() = true at the newest entry, want false")
	}
}

func TestMemoryLocationPushDropsForwardEntries(t *testing.T) {
	loc := NewMemoryLocation("/")
	loc.Push("/a")
	loc.Push("/b")
	loc.Back()
	loc.Push("/c")

	if loc.Forward() {
		t.Error("Forward() = true after push, want false")
	}
	entries := loc.Entries()
	want := []string{"/", "/a", "/c"}
	if len(entries) != len(want) {
		t.Fatalf("Entries() = %v, want %v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, entries[i], want[i])
		}
	}
}

func TestMemoryLocationClaim(t *testing.T) {
	loc := NewMemoryLocation("/")

	release, err := loc.Claim()
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if _, err := loc.Claim(); !errors.Is(err, ErrClaimed) {
		t.Fatalf("second Claim err = %v, want ErrClaimed", err)
	}

	release()
	if _, err := loc.Claim(); err != nil {
		t.Fatalf("Claim after release: %v", err)
	}
}
