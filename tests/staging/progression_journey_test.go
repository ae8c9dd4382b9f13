//go:build staging

// End-to-end journey against a real PostgreSQL instance. Configure the
// database via the usual DB_* environment variables and run with
// `go test -tags staging ./tests/staging/...`. The suite creates and
// destroys its own user documents.
package staging

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchkit/progression/internal/challenge"
	"github.com/stretchkit/progression/internal/config"
	"github.com/stretchkit/progression/internal/domain"
	"github.com/stretchkit/progression/internal/event"
	"github.com/stretchkit/progression/internal/logger"
	"github.com/stretchkit/progression/internal/progression"
	"github.com/stretchkit/progression/internal/storage/postgres"
)

var svc progression.Service

func TestMain(m *testing.M) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(logger.NewConfig(cfg.LogLevel, cfg.LogFormat, "progression-engine", "staging", "staging", false))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.GetDBConnString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(pool); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	challengePool, err := challenge.LoadPool(cfg.ChallengePoolPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load challenge pool: %v\n", err)
		os.Exit(1)
	}

	svc = progression.NewService(postgres.NewStore(pool), event.NewMemoryBus(), challengePool, progression.Options{
		BoostMultiplier: cfg.BoostMultiplier,
		BoostDuration:   cfg.BoostDuration,
		CacheTTL:        cfg.CacheTTL,
		CacheSize:       cfg.CacheSize,
		StorageTimeout:  cfg.StorageTimeout,
	})

	os.Exit(m.Run())
}

func TestUserJourney(t *testing.T) {
	ctx := context.Background()
	userID := fmt.Sprintf("staging-%d", time.Now().UnixNano())
	defer func() {
		if err := svc.ResetAllData(ctx, userID); err != nil {
			t.Errorf("cleanup failed: %v", err)
		}
	}()

	// First routine: first-ever bonus and first achievement.
	result, err := svc.ProcessRoutineCompletion(ctx, userID, domain.RoutineCompleted{
		Area:            "back",
		DurationSeconds: 300,
		StretchCount:    4,
		CompletedAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("ProcessRoutineCompletion failed: %v", err)
	}
	if result.XPEarned <= 0 {
		t.Errorf("expected positive XP, got %d", result.XPEarned)
	}
	if result.CurrentStreak != 1 {
		t.Errorf("expected streak 1, got %d", result.CurrentStreak)
	}

	// Status functions reflect the persisted state.
	status, err := svc.GetStreakStatus(ctx, userID)
	if err != nil {
		t.Fatalf("GetStreakStatus failed: %v", err)
	}
	if !status.MaintainedToday {
		t.Error("expected the streak to be maintained today")
	}

	progress, err := svc.GetProgressToNextLevel(ctx, userID)
	if err != nil {
		t.Fatalf("GetProgressToNextLevel failed: %v", err)
	}
	if progress.TotalXP != result.XPEarned {
		t.Errorf("expected %d total XP, got %d", result.XPEarned, progress.TotalXP)
	}

	// A second same-day routine earns XP but not streak.
	again, err := svc.ProcessRoutineCompletion(ctx, userID, domain.RoutineCompleted{
		Area:            "neck",
		DurationSeconds: 120,
		StretchCount:    2,
		CompletedAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("second ProcessRoutineCompletion failed: %v", err)
	}
	if again.CurrentStreak != 1 {
		t.Errorf("same-day routine must not extend the streak, got %d", again.CurrentStreak)
	}

	doc, err := svc.GetProgress(ctx, userID)
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if doc.TotalRoutines != 2 {
		t.Errorf("expected 2 routines recorded, got %d", doc.TotalRoutines)
	}
	if len(doc.Challenges) == 0 {
		t.Error("expected current-window challenges to be generated")
	}
}

func TestResetDestroysDocument(t *testing.T) {
	ctx := context.Background()
	userID := fmt.Sprintf("staging-reset-%d", time.Now().UnixNano())

	if _, err := svc.ProcessRoutineCompletion(ctx, userID, domain.RoutineCompleted{
		DurationSeconds: 60,
		StretchCount:    1,
		CompletedAt:     time.Now(),
	}); err != nil {
		t.Fatalf("ProcessRoutineCompletion failed: %v", err)
	}

	if err := svc.ResetAllData(ctx, userID); err != nil {
		t.Fatalf("ResetAllData failed: %v", err)
	}

	doc, err := svc.GetProgress(ctx, userID)
	if err != nil {
		t.Fatalf("GetProgress after reset failed: %v", err)
	}
	if doc.TotalXP != 0 || doc.TotalRoutines != 0 {
		t.Errorf("expected first-launch defaults after reset, got %d XP / %d routines",
			doc.TotalXP, doc.TotalRoutines)
	}
}
