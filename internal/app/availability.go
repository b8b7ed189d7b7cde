package app

import (
	"time"

	"studyguru-quiz-service/internal/domain"
)

// DefaultTimeLayout formats availability timestamps in notices.
const DefaultTimeLayout = "Jan 2, 2006 3:04 PM MST"

// Classify reports whether a share record is open at now. Expiry wins over a future start.
func Classify(share domain.ShareRecord, now time.Time) domain.Availability {
	if share.ExpiresAt != nil && now.After(*share.ExpiresAt) {
		return domain.Expired
	}
	if share.StartAt != nil && now.Before(*share.StartAt) {
		return domain.NotYetOpen
	}
	return domain.Open
}

// TimeFormat renders timestamps for users.
type TimeFormat struct {
	Layout   string
	Location *time.Location
}

func (f TimeFormat) Format(t time.Time) string {
	layout := f.Layout
	if layout == "" {
		layout = DefaultTimeLayout
	}
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(layout)
}

// AvailabilityNotice describes why a share record refuses admission.
// It returns false for open records.
func AvailabilityNotice(state domain.Availability, share domain.ShareRecord, format TimeFormat) (domain.Notice, bool) {
	switch state {
	case domain.Expired:
		return domain.Notice{
			Severity: domain.SeverityWarning,
			Title:    "Quiz Expired",
			Message:  "This quiz expired on:\n" + format.Format(*share.ExpiresAt),
		}, true
	case domain.NotYetOpen:
		return domain.Notice{
			Severity: domain.SeverityWarning,
			Title:    "Quiz Not Available",
			Message:  "This quiz will be available from:\n" + format.Format(*share.StartAt),
		}, true
	default:
		return domain.Notice{}, false
	}
}
