package progression_bench

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchkit/progression/internal/challenge"
	"github.com/stretchkit/progression/internal/domain"
	"github.com/stretchkit/progression/internal/event"
	"github.com/stretchkit/progression/internal/progression"
	"github.com/stretchkit/progression/internal/storage"
)

// --- Stubs (Zero-overhead collaborators for benchmarking) ---

// stubStore serves a pre-built document without JSON round-trips so the
// benchmark measures the orchestrator pipeline, not serialization.
type stubStore struct {
	doc *domain.UserProgress
}

func (s *stubStore) Load(ctx context.Context, userID string) (*domain.UserProgress, error) {
	// Fresh copy per load to allow safe mutation, like a real adapter.
	cp := *s.doc
	cp.UserID = userID
	return &cp, nil
}
func (s *stubStore) Save(ctx context.Context, doc *domain.UserProgress) error { return nil }
func (s *stubStore) Delete(ctx context.Context, userID string) error { return nil }
func (s *stubStore) Close() {}

func benchService(b *testing.B, store storage.Store) progression.Service {
	b.Helper()

	pool, err := challenge.LoadPool("")
	if err != nil {
		b.Fatalf("failed to load challenge pool: %v", err)
	}
	return progression.NewService(store, event.NewMemoryBus(), pool, progression.Options{})
}

func seededDoc() *domain.UserProgress {
	now := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	doc := domain.NewUserProgress("bench-user", now)
	doc.TotalXP = 1500
	doc.Level = 7
	doc.TotalRoutines = 40
	doc.TotalStretchSeconds = 40 * 600
	doc.Streak.CurrentStreak = 5
	doc.Streak.LongestStreak = 12
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		doc.Streak.RoutineDates = append(doc.Streak.RoutineDates, day.Format(domain.DateKeyFormat))
		doc.RoutineHistory = append(doc.RoutineHistory, domain.RoutineRecord{
			Date:            day.Format(domain.DateKeyFormat),
			DurationSeconds: 600,
			StretchCount:    5,
			CompletedAt:     day,
		})
	}
	return doc
}

func BenchmarkProcessRoutineCompletion(b *testing.B) {
	svc := benchService(b, &stubStore{doc: seededDoc()})
	ctx := context.Background()
	routine := domain.RoutineCompleted{
		Area:            "back",
		DurationSeconds: 600,
		StretchCount:    5,
		CompletedAt:     time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.ProcessRoutineCompletion(ctx, "bench-user", routine); err != nil {
			b.Fatalf("ProcessRoutineCompletion failed: %v", err)
		}
	}
}

func BenchmarkProcessRoutineCompletion_MemoryStore(b *testing.B) {
	// Full path including JSON serialization in the memory store.
	store := storage.NewMemoryStore()
	svc := benchService(b, store)
	ctx := context.Background()
	routine := domain.RoutineCompleted{
		Area:            "neck",
		DurationSeconds: 300,
		StretchCount:    4,
		CompletedAt:     time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.ProcessRoutineCompletion(ctx, "bench-user", routine); err != nil {
			b.Fatalf("ProcessRoutineCompletion failed: %v", err)
		}
	}
}

func BenchmarkGetStreakStatus(b *testing.B) {
	svc := benchService(b, &stubStore{doc: seededDoc()})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.GetStreakStatus(ctx, "bench-user"); err != nil {
			b.Fatalf("GetStreakStatus failed: %v", err)
		}
	}
}

func BenchmarkGetStreakStatus_Parallel(b *testing.B) {
	svc := benchService(b, &stubStore{doc: seededDoc()})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		i := 0
		for pb.Next() {
			userID := fmt.Sprintf("bench-user-%d", i%8)
			if _, err := svc.GetStreakStatus(ctx, userID); err != nil {
				b.Fatalf("GetStreakStatus failed: %v", err)
			}
			i++
		}
	})
}
