package app

import (
	"errors"

	"studyguru-quiz-service/internal/domain"
)

// NoticeFor converts an error into the dialog shown to the user.
func NoticeFor(err error) domain.Notice {
	switch {
	case errors.Is(err, domain.ErrInvalidCodeLength):
		return domain.Notice{Severity: domain.SeverityError, Title: "Invalid Code", Message: "Please enter a valid 6-digit access code."}
	case errors.Is(err, domain.ErrCodeNotFound):
		return domain.Notice{Severity: domain.SeverityError, Title: "Error", Message: "Quiz not found or invalid code"}
	case errors.Is(err, domain.ErrNameRequired):
		return domain.Notice{Severity: domain.SeverityError, Title: "Error", Message: "Name is required"}
	case errors.Is(err, domain.ErrNetworkTimeout):
		return domain.Notice{Severity: domain.SeverityError, Title: "Network Timeout", Message: "The request timed out. Please try again."}
	case errors.Is(err, domain.ErrNotYetOpen):
		return domain.Notice{Severity: domain.SeverityWarning, Title: "Quiz Not Available", Message: "This quiz is not available yet."}
	case errors.Is(err, domain.ErrExpired):
		return domain.Notice{Severity: domain.SeverityWarning, Title: "Quiz Expired", Message: "This quiz has expired."}
	case errors.Is(err, ErrNoResolvedQuiz):
		return domain.Notice{Severity: domain.SeverityError, Title: "Error", Message: "Quiz details not found"}
	case errors.Is(err, domain.ErrQuizNotFound):
		return domain.Notice{Severity: domain.SeverityError, Title: "Error", Message: "Quiz not found"}
	case errors.Is(err, domain.ErrShareNotFound):
		return domain.Notice{Severity: domain.SeverityError, Title: "Error", Message: "Share not found"}
	default:
		return domain.Notice{Severity: domain.SeverityError, Title: "Error", Message: "Something went wrong. Please try again."}
	}
}
