package cli

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"studyguru-quiz-service/internal/app"
	"studyguru-quiz-service/internal/auth"
	"studyguru-quiz-service/internal/config"
	"studyguru-quiz-service/internal/domain"
	"studyguru-quiz-service/internal/infra/memory"
	pgstore "studyguru-quiz-service/internal/infra/postgres"
	rediscache "studyguru-quiz-service/internal/infra/redis"
)

// quizStore is the full set of reads and writes a backing store provides.
type quizStore interface {
	app.ShareFinder
	app.CreatorDirectory
	app.QuizSource
	app.OwnerLibrary
	app.ShareLister
	app.AttemptLister
}

// shareCache fronts share lookups and forgets the codes of deleted quizzes.
type shareCache interface {
	app.ShareFinder
	app.ShareEvictor
}

// backend bundles the adapters selected by the configuration.
type backend struct {
	store    quizStore
	shares   shareCache
	handoffs app.HandoffStore
	verifier *auth.Verifier
	timeout  time.Duration
	prompt   app.PromptConfig
	format   app.TimeFormat
	close    func()
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{
		timeout: config.TTLDuration(cfg.Admission.LookupTimeout, app.DefaultLookupTimeout),
		prompt:  promptFromConfig(cfg),
		format:  app.TimeFormat{Layout: cfg.Admission.TimeLayout, Location: cfg.Location()},
	}
	var closers []func()
	b.close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		closers = append(closers, pool.Close)
		b.store = pgstore.NewStore(pool)
	} else {
		log.Printf("postgres not configured: serving demo quizzes from memory")
		b.store = memory.NewStore(demoSeed(time.Now()))
	}

	shareTTL := config.TTLDuration(cfg.Cache.ShareTTL, 5*time.Minute)
	handoffTTL := config.TTLDuration(cfg.Handoff.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = client.Close() })
		b.shares = rediscache.NewShareCache(client, b.store, shareTTL)
		b.handoffs = rediscache.NewHandoffStore(client, handoffTTL)
	} else {
		b.shares = memory.NewShareCache(b.store, shareTTL)
		b.handoffs = memory.NewHandoffStore(handoffTTL)
	}

	if cfg.Auth.JWTSecret != "" {
		b.verifier = auth.NewVerifier(cfg.Auth.JWTSecret)
	}
	return b, nil
}

func promptFromConfig(cfg config.Config) app.PromptConfig {
	prompt := app.DefaultGuestPrompt()
	if v := cfg.Admission.Prompt.Title; v != "" {
		prompt.Title = v
	}
	if v := cfg.Admission.Prompt.Message; v != "" {
		prompt.Message = v
	}
	if v := cfg.Admission.Prompt.Placeholder; v != "" {
		prompt.Placeholder = v
	}
	return prompt
}

// demoSeed provides a handful of quizzes and share codes; swap it for Postgres in production.
//
//	123456 open, 222222 opens tomorrow, 333333 expired yesterday
func demoSeed(now time.Time) memory.Seed {
	rating := func(v float64) *float64 { return &v }
	tomorrow := now.Add(24 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)

	biology, algebra, poetry := uuid.NewString(), uuid.NewString(), uuid.NewString()
	openShare := uuid.NewString()
	return memory.Seed{
		Quizzes: []domain.Quiz{
			{ID: biology, Title: "Cell Biology Basics", Description: "Organelles and their jobs", Category: "Science", Difficulty: "Easy", Type: "MCQ",
				NumberOfQuestions: 10, CreatedBy: "ana@studyguru.dev", IsPublished: true, TotalAttempts: 42, AverageRating: rating(4.6), CreatedAt: now.Add(-72 * time.Hour)},
			{ID: algebra, Title: "Linear Equations", Description: "Solve for x", Category: "Math", Difficulty: "Medium", Type: "MCQ",
				NumberOfQuestions: 15, CreatedBy: "raj@studyguru.dev", IsPublished: true, TotalAttempts: 87, CreatedAt: now.Add(-48 * time.Hour)},
			{ID: poetry, Title: "Sonnet Forms", Description: "Petrarchan or Shakespearean?", Category: "Language", Difficulty: "Hard", Type: "True/False",
				NumberOfQuestions: 8, CreatedBy: "ana@studyguru.dev", IsPublished: true, TotalAttempts: 12, AverageRating: rating(3.8), CreatedAt: now.Add(-24 * time.Hour)},
		},
		Shares: []domain.ShareRecord{
			{ID: openShare, AccessCode: "123456", QuizID: biology, CreatedBy: "ana@studyguru.dev", CreatedAt: now.Add(-time.Hour)},
			{ID: uuid.NewString(), AccessCode: "222222", QuizID: algebra, StartAt: &tomorrow, CreatedBy: "raj@studyguru.dev", CreatedAt: now.Add(-time.Hour)},
			{ID: uuid.NewString(), AccessCode: "333333", QuizID: poetry, ExpiresAt: &yesterday, CreatedBy: "ana@studyguru.dev", CreatedAt: now.Add(-48 * time.Hour)},
		},
		Profiles: map[string]string{"ana@studyguru.dev": "Ana Lima"},
		Attempts: []domain.AttemptRecord{
			{ID: uuid.NewString(), SharedQuizID: openShare, QuizID: biology, FullName: "Priya", Score: 8, CreatedAt: now.Add(-30 * time.Minute)},
			{ID: uuid.NewString(), SharedQuizID: openShare, QuizID: biology, FullName: "Tom", Score: 6, CreatedAt: now.Add(-10 * time.Minute)},
		},
	}
}
