package sim

import (
	"fmt"
	"testing"
	"time"
)

func TestEventLog_Append_NewestFirst(t *testing.T) {
	l := NewEventLog(0)
	l.Append(testStart, "first")
	l.Append(testStart.Add(time.Second), "second")

	got := l.Messages()
	if len(got) != 2 || got[0] != "second" || got[1] != "first" {
		t.Errorf("Messages() = %v, want [second first]", got)
	}
	if latest, ok := l.Latest(); !ok || latest.Message != "second" {
		t.Errorf("Latest() = %v, %v; want second", latest, ok)
	}
}

func TestEventLog_Append_EvictsOldestAtLimit(t *testing.T) {
	// GIVEN a log filled past MaxEvents
	l := NewEventLog(MaxEvents)
	for i := range MaxEvents + 5 {
		l.Append(testStart.Add(time.Duration(i)*time.Millisecond), fmt.Sprintf("event %d", i))
	}

	// THEN only the newest MaxEvents remain, newest first
	entries := l.Entries()
	if len(entries) != MaxEvents {
		t.Fatalf("Len = %d, want %d", len(entries), MaxEvents)
	}
	if entries[0].Message != "event 104" {
		t.Errorf("newest = %q, want %q", entries[0].Message, "event 104")
	}
	if entries[MaxEvents-1].Message != "event 5" {
		t.Errorf("oldest = %q, want %q", entries[MaxEvents-1].Message, "event 5")
	}
}

func TestEventLog_Append_UniqueIDs(t *testing.T) {
	l := NewEventLog(10)
	seen := make(map[string]bool)
	for range 10 {
		ev := l.Append(testStart, "x")
		if ev.ID == "" || seen[ev.ID] {
			t.Fatalf("duplicate or empty ID %q", ev.ID)
		}
		seen[ev.ID] = true
	}
}

func TestEventLog_Append_TimestampsNeverGoBackwards(t *testing.T) {
	l := NewEventLog(10)
	l.Append(testStart.Add(time.Second), "late")

	ev := l.Append(testStart, "early")

	if !ev.Timestamp.Equal(testStart.Add(time.Second)) {
		t.Errorf("timestamp = %v, want raised to %v", ev.Timestamp, testStart.Add(time.Second))
	}
}

func TestEventLog_Clear(t *testing.T) {
	l := NewEventLog(10)
	l.Append(testStart, "x")

	l.Clear()

	if l.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", l.Len())
	}
	if _, ok := l.Latest(); ok {
		t.Error("Latest after Clear: got entry, want none")
	}
}

func TestEventLog_Entries_IsCopy(t *testing.T) {
	l := NewEventLog(10)
	l.Append(testStart, "x")

	entries := l.Entries()
	entries[0].Message = "y"

	if l.Messages()[0] != "x" {
		t.Error("Entries() aliased the log")
	}
}
