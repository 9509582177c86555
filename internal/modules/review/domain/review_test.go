package domain_test

import (
	"testing"
	"time"

	"studyfocus/internal/modules/review/domain"
)

func TestGeneratePremiumOffsets(t *testing.T) {
	t.Parallel()
	completion := time.Date(2026, 3, 10, 18, 45, 0, 0, time.UTC)
	records := domain.Generate("session-1", "task-1", completion, domain.CanonicalOffsets)
	if len(records) != 6 {
		t.Fatalf("expected 6 records, got %d", len(records))
	}
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i, record := range records {
		want := base.AddDate(0, 0, domain.CanonicalOffsets[i])
		if !record.ScheduledDate.Equal(want) {
			t.Fatalf("record %d scheduled %s, want %s", i, record.ScheduledDate, want)
		}
		if record.ReviewNumber != i+1 {
			t.Fatalf("record %d has number %d", i, record.ReviewNumber)
		}
		if record.OffsetDays != domain.CanonicalOffsets[i] {
			t.Fatalf("record %d has offset %d", i, record.OffsetDays)
		}
		if record.IsCompleted || record.CompletedAt != nil {
			t.Fatalf("new record must be open")
		}
		if record.StudySessionID != "session-1" || record.TaskID != "task-1" {
			t.Fatalf("unexpected ownership: %+v", record)
		}
	}
	if got := records[5].ScheduledDate.Format(domain.DateLayout); got != "2026-05-09" {
		t.Fatalf("D+60 should be 2026-05-09, got %s", got)
	}
}

func TestGenerateFreeOffsets(t *testing.T) {
	t.Parallel()
	completion := time.Date(2026, 12, 31, 9, 0, 0, 0, time.UTC)
	offsets := domain.OffsetsFor(false, domain.CanonicalOffsets, domain.FreeOffsetCount)
	records := domain.Generate("session-2", "task-1", completion, offsets)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ReviewNumber != 1 || records[1].ReviewNumber != 2 {
		t.Fatalf("unexpected numbers %d %d", records[0].ReviewNumber, records[1].ReviewNumber)
	}
	if got := records[0].ScheduledDate.Format(domain.DateLayout); got != "2027-01-01" {
		t.Fatalf("D+1 should cross the year, got %s", got)
	}
	if got := records[1].ScheduledDate.Format(domain.DateLayout); got != "2027-01-03" {
		t.Fatalf("D+3 got %s", got)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	t.Parallel()
	completion := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	a := domain.Generate("session-1", "task-1", completion, []int{1, 3})
	b := domain.Generate("session-1", "task-1", completion, []int{1, 3})
	other := domain.Generate("session-9", "task-1", completion, []int{1, 3})
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("ids differ between runs: %s vs %s", a[i].ID, b[i].ID)
		}
		if a[i].ID == other[i].ID {
			t.Fatalf("ids must differ across sessions")
		}
	}
	if a[0].ID == a[1].ID {
		t.Fatalf("ids must differ across review numbers")
	}
}

func TestGenerateEmptyOffsets(t *testing.T) {
	t.Parallel()
	if got := domain.Generate("s", "t", time.Now(), nil); len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
}

func TestOffsetsFor(t *testing.T) {
	t.Parallel()
	premium := domain.OffsetsFor(true, domain.CanonicalOffsets, 2)
	if len(premium) != 6 {
		t.Fatalf("premium should keep all offsets, got %v", premium)
	}
	premium[0] = 99
	if domain.CanonicalOffsets[0] != 1 {
		t.Fatalf("OffsetsFor must not alias its input")
	}
	free := domain.OffsetsFor(false, domain.CanonicalOffsets, 2)
	if len(free) != 2 || free[0] != 1 || free[1] != 3 {
		t.Fatalf("free offsets: %v", free)
	}
	if got := domain.OffsetsFor(false, []int{1}, 5); len(got) != 1 {
		t.Fatalf("free count larger than offsets: %v", got)
	}
	if got := domain.OffsetsFor(false, domain.CanonicalOffsets, -1); len(got) != 0 {
		t.Fatalf("negative free count: %v", got)
	}
}

func TestLabel(t *testing.T) {
	t.Parallel()
	cases := map[int]string{
		1:  "1 day",
		3:  "3 days",
		7:  "1 week",
		14: "2 weeks",
		21: "3 weeks",
		10: "10 days",
		30: "1 month",
		60: "2 months",
		45: "45 days",
	}
	for offset, want := range cases {
		if got := domain.Label(offset); got != want {
			t.Fatalf("Label(%d) = %q, want %q", offset, got, want)
		}
	}
	record := domain.ReviewRecord{ReviewNumber: 1, OffsetDays: 14}
	if record.Label() != "2 weeks" {
		t.Fatalf("label must follow the offset, not the review number")
	}
}
