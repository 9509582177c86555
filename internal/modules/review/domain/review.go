package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

// CanonicalOffsets are the review day offsets for premium users. Free users get the first
// FreeOffsetCount of them.
var CanonicalOffsets = []int{1, 3, 7, 14, 30, 60}

const FreeOffsetCount = 2

var recordNamespace = uuid.MustParse("8f0c6f5e-3c1a-4b3e-9d55-6a2f1c7e4b10")

type ReviewRecord struct {
	ID             string
	StudySessionID string
	TaskID         string
	ScheduledDate  time.Time
	ReviewNumber   int
	OffsetDays     int
	IsCompleted    bool
	CompletedAt    *time.Time
}

func (r ReviewRecord) Label() string {
	return Label(r.OffsetDays)
}

// Generate builds one record per offset, in offset order. Record ids are derived from the session
// id and review number, so generating twice for the same session yields the same ids.
func Generate(studySessionID, taskID string, completionDate time.Time, offsets []int) []ReviewRecord {
	day := StartOfDay(completionDate)
	records := make([]ReviewRecord, 0, len(offsets))
	for i, offset := range offsets {
		number := i + 1
		records = append(records, ReviewRecord{
			ID:             RecordID(studySessionID, number),
			StudySessionID: studySessionID,
			TaskID:         taskID,
			ScheduledDate:  day.AddDate(0, 0, offset),
			ReviewNumber:   number,
			OffsetDays:     offset,
		})
	}
	return records
}

func RecordID(studySessionID string, reviewNumber int) string {
	return uuid.NewSHA1(recordNamespace, []byte(fmt.Sprintf("%s#%d", studySessionID, reviewNumber))).String()
}

// OffsetsFor returns the offsets a user is entitled to. The result never aliases offsets.
func OffsetsFor(premium bool, offsets []int, freeCount int) []int {
	n := len(offsets)
	if !premium && freeCount < n {
		n = freeCount
	}
	if n < 0 {
		n = 0
	}
	out := make([]int, n)
	copy(out, offsets[:n])
	return out
}

// Label renders an offset as a human interval: days below a week, whole weeks below four weeks,
// whole months for multiples of thirty, days otherwise.
func Label(offsetDays int) string {
	switch {
	case offsetDays < 7:
		return plural(offsetDays, "day")
	case offsetDays%7 == 0 && offsetDays < 28:
		return plural(offsetDays/7, "week")
	case offsetDays%30 == 0:
		return plural(offsetDays/30, "month")
	default:
		return plural(offsetDays, "day")
	}
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
