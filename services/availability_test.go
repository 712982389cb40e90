package services

import (
	"testing"
	"time"

	"cyleria_watcher/models"
)

func TestComputeAvailability_NoLogin(t *testing.T) {
	got := ComputeAvailability(nil, time.Now())

	if got.Status != models.StatusInactive {
		t.Fatalf("expected inactive, got %s", got.Status)
	}
	if got.Available != models.AvailableUnknown {
		t.Fatalf("expected %q, got %q", models.AvailableUnknown, got.Available)
	}
	if got.Days != 0 {
		t.Fatalf("expected 0 days, got %d", got.Days)
	}
}

func TestComputeAvailability_OldLogin(t *testing.T) {
	// "Red Manor": owner last seen 20 days ago, house is already free
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)
	login := now.Add(-20 * 24 * time.Hour)

	got := ComputeAvailability(&login, now)

	if got.Status != models.StatusInactive {
		t.Fatalf("expected inactive, got %s", got.Status)
	}
	if got.Available != models.AvailableNow {
		t.Fatalf("expected %q, got %q", models.AvailableNow, got.Available)
	}
	if got.Days != 0 {
		t.Fatalf("expected 0 days, got %d", got.Days)
	}
}

func TestComputeAvailability_RecentLogin(t *testing.T) {
	// "Blue Cottage": last login 10d23h ago, frees up in about an hour
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)
	login := now.Add(-(10*24 + 23) * time.Hour)

	got := ComputeAvailability(&login, now)

	if got.Status != models.StatusActive {
		t.Fatalf("expected active, got %s", got.Status)
	}
	wantAvailable := login.Add(14 * 24 * time.Hour).Format(models.AvailableLayout)
	if got.Available != wantAvailable {
		t.Fatalf("expected available %q, got %q", wantAvailable, got.Available)
	}
	if got.Days != 4 {
		t.Fatalf("expected 4 days remaining, got %d", got.Days)
	}
}

func TestComputeAvailability_Boundary(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)

	justInside := now.Add(-14*24*time.Hour + time.Minute)
	if got := ComputeAvailability(&justInside, now); got.Status != models.StatusActive {
		t.Fatalf("login just under 14 days should be active, got %s", got.Status)
	}

	exactly := now.Add(-14 * 24 * time.Hour)
	if got := ComputeAvailability(&exactly, now); got.Status != models.StatusInactive {
		t.Fatalf("login exactly 14 days ago should be inactive, got %s", got.Status)
	}
}

func TestParseAvailable(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)

	if got, ok := ParseAvailable("21.05.2026 13:30", now); !ok {
		t.Fatal("expected date to parse")
	} else if got.Day() != 21 || got.Hour() != 13 || got.Minute() != 30 {
		t.Fatalf("unexpected parse result: %v", got)
	}

	if got, ok := ParseAvailable(models.AvailableNow, now); !ok || !got.Equal(now) {
		t.Fatalf("now sentinel should parse as now, got %v ok=%v", got, ok)
	}

	if _, ok := ParseAvailable(models.AvailableUnknown, now); ok {
		t.Fatal("unknown sentinel must not parse")
	}
	if _, ok := ParseAvailable("garbage", now); ok {
		t.Fatal("garbage must not parse")
	}
	if _, ok := ParseAvailable("", now); ok {
		t.Fatal("empty string must not parse")
	}
}
