package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"studyguru-quiz-service/internal/domain"
)

// Store reads quizzes, shares and profiles from Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const quizColumns = `q.id, q.title, q.description, q.category, q.difficulty, q.type,
	q.number_of_questions, q.created_by, q.is_published, q.total_attempts, q.average_rating, q.created_at`

func quizFields(q *domain.Quiz) []interface{} {
	return []interface{}{
		&q.ID, &q.Title, &q.Description, &q.Category, &q.Difficulty, &q.Type,
		&q.NumberOfQuestions, &q.CreatedBy, &q.IsPublished, &q.TotalAttempts, &q.AverageRating, &q.CreatedAt,
	}
}

// FindShareByCode requires exactly one matching share; duplicates count as not found.
func (s *Store) FindShareByCode(ctx context.Context, code string) (domain.ShareRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.access_code, s.quiz_id, s.start_at, s.expires_at, s.created_by, s.created_at, `+quizColumns+`
		FROM shared_quizzes s
		JOIN quizzes q ON q.id = s.quiz_id
		WHERE s.access_code = $1
		LIMIT 2`, code)
	if err != nil {
		return domain.ShareRecord{}, fmt.Errorf("find share: %w", err)
	}
	defer rows.Close()

	var matches []domain.ShareRecord
	for rows.Next() {
		var share domain.ShareRecord
		dest := append([]interface{}{
			&share.ID, &share.AccessCode, &share.QuizID, &share.StartAt, &share.ExpiresAt, &share.CreatedBy, &share.CreatedAt,
		}, quizFields(&share.Quiz)...)
		if err := rows.Scan(dest...); err != nil {
			return domain.ShareRecord{}, fmt.Errorf("scan share: %w", err)
		}
		matches = append(matches, share)
	}
	if err := rows.Err(); err != nil {
		return domain.ShareRecord{}, fmt.Errorf("find share: %w", err)
	}
	if len(matches) != 1 {
		return domain.ShareRecord{}, domain.ErrCodeNotFound
	}
	return matches[0], nil
}

func (s *Store) FindDisplayNameByCreator(ctx context.Context, creatorRef string) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx, `SELECT full_name FROM profiles WHERE email = $1`, creatorRef).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrCreatorNameUnresolved
	}
	if err != nil {
		return "", fmt.Errorf("load profile: %w", err)
	}
	return name, nil
}

func (s *Store) ResolveCreatorNames(ctx context.Context, creatorRefs []string) (map[string]string, error) {
	names := make(map[string]string, len(creatorRefs))
	if len(creatorRefs) == 0 {
		return names, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT email, full_name FROM profiles WHERE email = ANY($1)`, creatorRefs)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var email, name string
		if err := rows.Scan(&email, &name); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		names[email] = name
	}
	return names, rows.Err()
}

func (s *Store) ListPublishedQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.queryQuizzes(ctx, `SELECT `+quizColumns+` FROM quizzes q WHERE q.is_published ORDER BY q.created_at DESC`)
}

func (s *Store) ListQuizzesByOwner(ctx context.Context, owner string) ([]domain.Quiz, error) {
	return s.queryQuizzes(ctx, `SELECT `+quizColumns+` FROM quizzes q WHERE q.created_by = $1 ORDER BY q.created_at DESC`, owner)
}

func (s *Store) SetPublished(ctx context.Context, owner, quizID string, published bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE quizzes SET is_published = $3 WHERE id = $1 AND created_by = $2`, quizID, owner, published)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *Store) DeleteQuiz(ctx context.Context, owner, quizID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1 AND created_by = $2`, quizID, owner)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *Store) ListSharesByOwner(ctx context.Context, owner string) ([]domain.ShareSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.access_code, s.quiz_id, COALESCE(q.title, ''), s.start_at, s.expires_at, s.created_at,
			(SELECT COUNT(*) FROM quiz_attempts a WHERE a.shared_quiz_id = s.id)
		FROM shared_quizzes s
		LEFT JOIN quizzes q ON q.id = s.quiz_id
		WHERE s.created_by = $1
		ORDER BY s.created_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	var out []domain.ShareSummary
	for rows.Next() {
		var sum domain.ShareSummary
		if err := rows.Scan(&sum.ID, &sum.AccessCode, &sum.QuizID, &sum.QuizTitle, &sum.StartAt, &sum.ExpiresAt,
			&sum.CreatedAt, &sum.ParticipantCount); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *Store) queryQuizzes(ctx context.Context, query string, args ...interface{}) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []domain.Quiz
	for rows.Next() {
		var q domain.Quiz
		if err := rows.Scan(quizFields(&q)...); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ListAttemptsByShare returns the participants of one of owner's shares, newest first.
func (s *Store) ListAttemptsByShare(ctx context.Context, owner, shareID string) ([]domain.AttemptRecord, error) {
	var owned bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM shared_quizzes WHERE id = $1 AND created_by = $2)`,
		shareID, owner).Scan(&owned)
	if err != nil {
		return nil, fmt.Errorf("check share: %w", err)
	}
	if !owned {
		return nil, domain.ErrShareNotFound
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, shared_quiz_id, quiz_id, full_name, score, created_at
		FROM quiz_attempts
		WHERE shared_quiz_id = $1
		ORDER BY created_at DESC`, shareID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	out := []domain.AttemptRecord{}
	for rows.Next() {
		var a domain.AttemptRecord
		if err := rows.Scan(&a.ID, &a.SharedQuizID, &a.QuizID, &a.FullName, &a.Score, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
