package domain

import "time"

// AccessCodeLength is the number of digits in a share access code.
const AccessCodeLength = 6

// AllOption disables a category, difficulty or type filter.
const AllOption = "All"

// Quiz is the quiz summary the join and discovery flows work with.
type Quiz struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	Difficulty        string    `json:"difficulty"`
	Type              string    `json:"type"`
	NumberOfQuestions int       `json:"numberOfQuestions"`
	CreatedBy         string    `json:"createdBy"`
	CreatorName       string    `json:"creatorName,omitempty"`
	IsPublished       bool      `json:"isPublished"`
	TotalAttempts     int       `json:"totalAttempts"`
	AverageRating     *float64  `json:"averageRating"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ShareRecord makes a quiz joinable through an access code.
// A nil StartAt means open since creation, a nil ExpiresAt means it never expires.
type ShareRecord struct {
	ID         string     `json:"id"`
	AccessCode string     `json:"accessCode"`
	QuizID     string     `json:"quizId"`
	StartAt    *time.Time `json:"startAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedBy  string     `json:"createdBy,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	Quiz       Quiz       `json:"quiz"`
}

// ResolvedQuiz is what a valid access code resolves to.
type ResolvedQuiz struct {
	Quiz        Quiz        `json:"quiz"`
	Share       ShareRecord `json:"share"`
	CreatorName string      `json:"creatorName"`
}

// Availability classifies a share record's time window.
type Availability int

const (
	Open Availability = iota
	NotYetOpen
	Expired
)

func (a Availability) String() string {
	switch a {
	case NotYetOpen:
		return "not_yet_open"
	case Expired:
		return "expired"
	default:
		return "open"
	}
}

// Label is the status shown on share reports.
func (a Availability) Label() string {
	switch a {
	case NotYetOpen:
		return "Scheduled"
	case Expired:
		return "Expired"
	default:
		return "Active"
	}
}

// Session is an authenticated session issued by the auth provider.
type Session struct {
	Ref       string    `json:"ref"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type IdentityKind int

const (
	Authenticated IdentityKind = iota + 1
	Guest
)

// Identity is either an authenticated session or a guest display name.
type Identity struct {
	Kind        IdentityKind
	SessionRef  string
	DisplayName string
}

// IsGuest reports whether the identity came from the name prompt.
func (i Identity) IsGuest() bool { return i.Kind == Guest }

// AttemptHandoff is passed to the attempt screen once admission succeeds.
// GuestName is set iff the identity is a guest.
type AttemptHandoff struct {
	QuizID       string `json:"quizId"`
	SharedQuizID string `json:"sharedQuizId"`
	GuestName    string `json:"guestName,omitempty"`
}

// SortKey orders the discovery listing.
type SortKey string

const (
	SortRating     SortKey = "rating"
	SortPopularity SortKey = "popularity"
	SortNewest     SortKey = "newest"
)

// Filters narrows the discovery listing.
type Filters struct {
	SearchTerm string `json:"searchTerm"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Type       string `json:"type"`
}

// DefaultFilters match every quiz.
func DefaultFilters() Filters {
	return Filters{Category: AllOption, Difficulty: AllOption, Type: AllOption}
}

// FilterOptions lists the selectable values, each starting with AllOption.
type FilterOptions struct {
	Categories   []string `json:"categories"`
	Difficulties []string `json:"difficulties"`
	Types        []string `json:"types"`
}

// ShareSummary is one row of an owner's share report.
type ShareSummary struct {
	ID               string       `json:"id"`
	AccessCode       string       `json:"accessCode"`
	QuizID           string       `json:"quizId"`
	QuizTitle        string       `json:"quizTitle"`
	StartAt          *time.Time   `json:"startAt,omitempty"`
	ExpiresAt        *time.Time   `json:"expiresAt,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	ParticipantCount int          `json:"participantCount"`
	Status           Availability `json:"-"`
	StatusLabel      string       `json:"status"`
}

// AttemptRecord is one participant's attempt on a shared quiz.
type AttemptRecord struct {
	ID           string    `json:"id"`
	SharedQuizID string    `json:"sharedQuizId"`
	QuizID       string    `json:"quizId"`
	FullName     string    `json:"fullName"`
	Score        int       `json:"score"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ShareReport is a share summary with its participant list.
type ShareReport struct {
	ShareSummary
	Attempts []AttemptRecord `json:"attempts"`
}

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Notice is a user-facing dialog.
type Notice struct {
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
}
