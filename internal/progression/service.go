// Package progression is the orchestrator that turns a routine completion
// into updated XP/level/streak/achievement/challenge/reward state. One call
// to a mutating operation is one logical transaction: load, mutate in
// memory, persist once, then emit events.
package progression

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stretchkit/progression/internal/achievement"
	"github.com/stretchkit/progression/internal/challenge"
	"github.com/stretchkit/progression/internal/domain"
	"github.com/stretchkit/progression/internal/event"
	"github.com/stretchkit/progression/internal/levels"
	"github.com/stretchkit/progression/internal/logger"
	"github.com/stretchkit/progression/internal/metrics"
	"github.com/stretchkit/progression/internal/reward"
	"github.com/stretchkit/progression/internal/storage"
	"github.com/stretchkit/progression/internal/streak"
	"github.com/stretchkit/progression/internal/xp"
)

// historyRetentionDays bounds the routine-history ledger challenges recompute
// from. Must cover the widest challenge window (one ISO week).
const historyRetentionDays = 14

// Service defines the progression engine business logic.
type Service interface {
	// Mutating operations (guarded per user)
	ProcessRoutineCompletion(ctx context.Context, userID string, routine domain.RoutineCompleted) (*domain.ProcessingResult, error)
	ApplyFlexSave(ctx context.Context, userID string) (*domain.StreakStatus, error)
	ClaimChallenge(ctx context.Context, userID, challengeID string) (int, error)
	ActivateXPBoost(ctx context.Context, userID string) (*domain.XPBoost, error)
	ResetAllData(ctx context.Context, userID string) error

	// Read-only status functions (never guarded, never mutate)
	GetProgress(ctx context.Context, userID string) (*domain.UserProgress, error)
	GetStreakStatus(ctx context.Context, userID string) (*domain.StreakStatus, error)
	GetProgressToNextLevel(ctx context.Context, userID string) (*domain.LevelProgress, error)
	CanAccessFeature(ctx context.Context, userID, featureID string) (bool, error)
	MeetsLevelRequirement(ctx context.Context, userID, featureID string) (bool, error)
	GetRequiredLevel(featureID string) int

	// Shutdown gracefully shuts down the service
	Shutdown(ctx context.Context) error
}

// Options tunes the service. Zero values fall back to defaults.
type Options struct {
	BoostMultiplier float64
	BoostDuration   time.Duration
	CacheTTL        time.Duration
	CacheSize       int
	StorageTimeout  time.Duration

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

func (o *Options) withDefaults() {
	if o.BoostMultiplier < 1 {
		o.BoostMultiplier = 2.0
	}
	if o.BoostDuration <= 0 {
		o.BoostDuration = 24 * time.Hour
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 30 * time.Second
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 1024
	}
	if o.StorageTimeout <= 0 {
		o.StorageTimeout = 5 * time.Second
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
}

type service struct {
	store storage.Store
	bus   event.Bus
	pool  *challenge.Pool
	cache *progressCache
	guard *inflightGuard
	opts  Options
	now   func() time.Time
}

// NewService creates a new progression service.
func NewService(store storage.Store, bus event.Bus, pool *challenge.Pool, opts Options) Service {
	opts.withDefaults()
	return &service{
		store: store,
		bus:   bus,
		pool:  pool,
		cache: newProgressCache(opts.CacheSize, opts.CacheTTL),
		guard: newInflightGuard(),
		opts:  opts,
		now:   opts.Clock,
	}
}

// ProcessRoutineCompletion runs the full pipeline for one completed routine:
// streak update, XP ledger, achievements, level/rewards, challenges, one
// atomic save, then events.
func (s *service) ProcessRoutineCompletion(ctx context.Context, userID string, routine domain.RoutineCompleted) (*domain.ProcessingResult, error) {
	ctx = ensureRequestID(ctx)
	log := logger.FromContext(ctx)

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if err := validateRoutine(routine); err != nil {
		return nil, err
	}

	if !s.guard.tryAcquire(userID) {
		metrics.ConcurrentRejections.Inc()
		return nil, domain.ErrConcurrentOperation
	}
	defer s.guard.release(userID)

	now := s.now()
	doc, err := s.loadForUpdate(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	streak.RefillIfNewMonth(&doc.Streak, now)

	firstEver := doc.TotalRoutines == 0

	// Streak first: the streak bonus feeds the ledger before the total is
	// finalized. The bonus is paid only when the streak actually moved, so a
	// repeat routine on a threshold day cannot earn it twice.
	rec := streak.RecordRoutine(&doc.Streak, routine.CompletedAt)

	ledger := xp.ComputeRoutineXP(routine, doc.Streak.CurrentStreak, rec.NewDay, firstEver, doc.XPBoost, now)
	breakdown := ledger.Breakdown
	earned := ledger.Total

	doc.TotalRoutines++
	doc.TotalStretchSeconds += routine.DurationSeconds
	if doc.FirstRoutineAt == nil {
		at := routine.CompletedAt
		doc.FirstRoutineAt = &at
	}
	doc.RoutineHistory = appendHistory(doc.RoutineHistory, routine, now)

	// Achievements evaluate against the post-routine stats; their bonuses
	// fold into the same ledger update.
	interimXP := doc.TotalXP + earned
	stats := domain.UserStats{
		TotalRoutines:       doc.TotalRoutines,
		TotalStretchSeconds: doc.TotalStretchSeconds,
		CurrentStreak:       doc.Streak.CurrentStreak,
		LongestStreak:       doc.Streak.LongestStreak,
		Level:               levels.Compute(interimXP),
		TotalXP:             interimXP,
	}
	newlyUnlocked := achievement.Evaluate(ctx, stats, doc.Achievements)
	achievementIDs := make([]string, 0, len(newlyUnlocked))
	for _, a := range newlyUnlocked {
		item := xp.AchievementLineItem(a, doc.XPBoost, now)
		breakdown = append(breakdown, item)
		earned += item.Amount
		at := now
		doc.Achievements[a.ID] = domain.AchievementState{Unlocked: true, UnlockedDate: &at}
		achievementIDs = append(achievementIDs, a.ID)
	}

	oldLevel := doc.Level
	doc.TotalXP += earned
	doc.Level = levels.Compute(doc.TotalXP)

	newRewards := reward.RefreshUnlocks(doc, doc.Level)
	rewardIDs := make([]string, 0, len(newRewards))
	for _, r := range newRewards {
		rewardIDs = append(rewardIDs, r.ID)
	}

	completedIDs := s.updateChallenges(doc, now)

	doc.UpdatedAt = now
	if err := s.save(ctx, doc); err != nil {
		// The in-memory result is discarded; the previous persisted state
		// remains authoritative and the caller should retry.
		return nil, err
	}

	metrics.RoutinesProcessed.Inc()
	metrics.XPAwarded.WithLabelValues("routine").Add(float64(earned))
	if len(achievementIDs) > 0 {
		metrics.AchievementsUnlocked.Add(float64(len(achievementIDs)))
	}
	if len(rewardIDs) > 0 {
		metrics.RewardsUnlocked.Add(float64(len(rewardIDs)))
	}

	// Events go out after the write; subscribers tolerate at-least-once
	// delivery and make no ordering assumptions relative to storage.
	if rec.StreakReset {
		s.publish(ctx, event.NewStreakBrokenEvent(userID, false, rec.PreviousStreak))
	}
	if doc.Level > oldLevel {
		metrics.LevelUps.Inc()
		s.publish(ctx, event.NewLevelUpEvent(userID, oldLevel, doc.Level))
	}
	for _, id := range rewardIDs {
		s.publish(ctx, event.NewRewardUnlockedEvent(userID, id))
	}
	for _, a := range newlyUnlocked {
		s.publish(ctx, event.NewAchievementUnlockedEvent(userID, a.ID, a.XPBonus))
	}
	for _, ch := range doc.Challenges {
		for _, id := range completedIDs {
			if ch.ID == id {
				s.publish(ctx, event.NewChallengeCompletedEvent(userID, ch))
			}
		}
	}

	log.Info("Routine completion processed",
		"user_id", userID,
		"xp_earned", earned,
		"level", doc.Level,
		"streak", doc.Streak.CurrentStreak)

	return &domain.ProcessingResult{
		XPEarned:             earned,
		Breakdown:            breakdown,
		OldLevel:             oldLevel,
		NewLevel:             doc.Level,
		LeveledUp:            doc.Level > oldLevel,
		CurrentStreak:        doc.Streak.CurrentStreak,
		UnlockedAchievements: achievementIDs,
		UnlockedRewards:      rewardIDs,
		CompletedChallenges:  completedIDs,
	}, nil
}

// ApplyFlexSave spends one flex save to cover yesterday's missed day while
// the streak is at risk. Concurrent calls cannot double-spend: the guard is
// taken before any suspension point.
func (s *service) ApplyFlexSave(ctx context.Context, userID string) (*domain.StreakStatus, error) {
	ctx = ensureRequestID(ctx)
	if !s.guard.tryAcquire(userID) {
		metrics.ConcurrentRejections.Inc()
		return nil, domain.ErrConcurrentOperation
	}
	defer s.guard.release(userID)

	now := s.now()
	doc, err := s.loadForUpdate(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	streak.RefillIfNewMonth(&doc.Streak, now)

	if err := streak.ApplyFlexSave(&doc.Streak, now); err != nil {
		return nil, err
	}

	doc.UpdatedAt = now
	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}

	metrics.FlexSavesApplied.Inc()
	s.publish(ctx, event.NewStreakSavedEvent(userID, doc.Streak.FlexSavesAvailable, doc.Streak.CurrentStreak))

	logger.FromContext(ctx).Info("Flex save applied",
		"user_id", userID,
		"remaining", doc.Streak.FlexSavesAvailable,
		"streak", doc.Streak.CurrentStreak)

	status := streak.Status(&doc.Streak, now)
	return &status, nil
}

// ClaimChallenge pays out a completed challenge exactly once. The claim flag
// and the XP are persisted in the same write, so a crash between them is
// impossible and a retry after AlreadyClaimed never double-awards.
func (s *service) ClaimChallenge(ctx context.Context, userID, challengeID string) (int, error) {
	ctx = ensureRequestID(ctx)
	if !s.guard.tryAcquire(userID) {
		metrics.ConcurrentRejections.Inc()
		return 0, domain.ErrConcurrentOperation
	}
	defer s.guard.release(userID)

	now := s.now()
	doc, err := s.loadForUpdate(ctx, userID, now)
	if err != nil {
		return 0, err
	}

	idx := -1
	for i := range doc.Challenges {
		if doc.Challenges[i].ID == challengeID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return 0, fmt.Errorf("%w: %s", domain.ErrChallengeNotFound, challengeID)
	}

	xpEarned, err := challenge.Claim(&doc.Challenges[idx])
	if err != nil {
		return 0, err
	}

	oldLevel := doc.Level
	doc.TotalXP += xpEarned
	doc.Level = levels.Compute(doc.TotalXP)
	newRewards := reward.RefreshUnlocks(doc, doc.Level)

	doc.UpdatedAt = now
	if err := s.save(ctx, doc); err != nil {
		return 0, err
	}

	metrics.ChallengesClaimed.Inc()
	metrics.XPAwarded.WithLabelValues("challenge").Add(float64(xpEarned))

	s.publish(ctx, event.NewChallengeClaimedEvent(userID, challengeID, xpEarned))
	if doc.Level > oldLevel {
		metrics.LevelUps.Inc()
		s.publish(ctx, event.NewLevelUpEvent(userID, oldLevel, doc.Level))
	}
	for _, r := range newRewards {
		metrics.RewardsUnlocked.Inc()
		s.publish(ctx, event.NewRewardUnlockedEvent(userID, r.ID))
	}

	logger.FromContext(ctx).Info("Challenge reward claimed",
		"user_id", userID,
		"challenge_id", challengeID,
		"xp", xpEarned)

	return xpEarned, nil
}

// ActivateXPBoost starts the time-limited XP multiplier. Gated on the
// xp_boost reward.
func (s *service) ActivateXPBoost(ctx context.Context, userID string) (*domain.XPBoost, error) {
	ctx = ensureRequestID(ctx)
	if !s.guard.tryAcquire(userID) {
		metrics.ConcurrentRejections.Inc()
		return nil, domain.ErrConcurrentOperation
	}
	defer s.guard.release(userID)

	now := s.now()
	doc, err := s.loadForUpdate(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	if !reward.IsUnlocked(doc, domain.RewardXPBoost) {
		return nil, domain.ErrBoostLocked
	}

	boost := &domain.XPBoost{
		Active:     true,
		Multiplier: s.opts.BoostMultiplier,
		ExpiresAt:  now.Add(s.opts.BoostDuration),
	}
	doc.XPBoost = boost

	doc.UpdatedAt = now
	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}

	s.publish(ctx, event.NewBoostActivatedEvent(userID, boost.Multiplier, boost.ExpiresAt.Unix()))
	return boost, nil
}

// ResetAllData destroys the aggregate (testing/support path).
func (s *service) ResetAllData(ctx context.Context, userID string) error {
	ctx = ensureRequestID(ctx)
	if !s.guard.tryAcquire(userID) {
		metrics.ConcurrentRejections.Inc()
		return domain.ErrConcurrentOperation
	}
	defer s.guard.release(userID)

	opCtx, cancel := context.WithTimeout(ctx, s.opts.StorageTimeout)
	defer cancel()

	// Capture the streak before the document is destroyed so subscribers
	// hear that the reset, not a lapse, ended it.
	previousStreak := 0
	switch doc, err := s.store.Load(opCtx, userID); {
	case err == nil:
		previousStreak = doc.Streak.CurrentStreak
	case isNotFound(err):
		// Nothing to announce; the delete below is a no-op.
	default:
		return err
	}

	if err := s.store.Delete(opCtx, userID); err != nil {
		return err
	}
	s.cache.Invalidate(userID)

	if previousStreak > 0 {
		s.publish(ctx, event.NewStreakBrokenEvent(userID, true, previousStreak))
	}

	logger.FromContext(ctx).Info("User progress reset", "user_id", userID)
	return nil
}

// GetProgress returns the current aggregate for display. Served from the TTL
// cache when fresh; never mutates.
func (s *service) GetProgress(ctx context.Context, userID string) (*domain.UserProgress, error) {
	return s.loadForRead(ctx, userID)
}

// GetStreakStatus reports the streak state machine's view of today without
// mutating anything. A pending monthly refill is reflected in the eligibility
// flag but persisted only by the next mutating operation.
func (s *service) GetStreakStatus(ctx context.Context, userID string) (*domain.StreakStatus, error) {
	doc, err := s.loadForRead(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	st := doc.Streak // copy; refill below must not touch the cached doc
	streak.RefillIfNewMonth(&st, now)
	status := streak.Status(&st, now)
	return &status, nil
}

// GetProgressToNextLevel reports XP progress within the current level.
func (s *service) GetProgressToNextLevel(ctx context.Context, userID string) (*domain.LevelProgress, error) {
	doc, err := s.loadForRead(ctx, userID)
	if err != nil {
		return nil, err
	}

	level, into, span := levels.ProgressToNext(doc.TotalXP)
	return &domain.LevelProgress{
		Level:       level,
		TotalXP:     doc.TotalXP,
		XPIntoLevel: into,
		XPForLevel:  span,
	}, nil
}

// CanAccessFeature reports whether the feature is available: persisted unlock
// or level gate satisfied.
func (s *service) CanAccessFeature(ctx context.Context, userID, featureID string) (bool, error) {
	doc, err := s.loadForRead(ctx, userID)
	if err != nil {
		return false, err
	}
	return reward.IsUnlocked(doc, featureID), nil
}

// MeetsLevelRequirement checks the level gate alone.
func (s *service) MeetsLevelRequirement(ctx context.Context, userID, featureID string) (bool, error) {
	doc, err := s.loadForRead(ctx, userID)
	if err != nil {
		return false, err
	}
	return reward.MeetsLevelRequirement(doc, featureID), nil
}

// GetRequiredLevel returns the level gate for a feature, 0 for unknown IDs.
func (s *service) GetRequiredLevel(featureID string) int {
	return reward.RequiredLevel(featureID)
}

// Shutdown flushes the resilient publisher when one is in use.
func (s *service) Shutdown(ctx context.Context) error {
	if p, ok := s.bus.(*event.ResilientPublisher); ok {
		return p.Shutdown(ctx)
	}
	return nil
}

// loadForUpdate fetches a fresh document from the store for mutation,
// bypassing the cache, creating first-launch defaults for unknown users and
// upgrading stale schemas.
func (s *service) loadForUpdate(ctx context.Context, userID string, now time.Time) (*domain.UserProgress, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.opts.StorageTimeout)
	defer cancel()

	doc, err := s.store.Load(opCtx, userID)
	switch {
	case err == nil:
	case isNotFound(err):
		doc = domain.NewUserProgress(userID, now)
	default:
		return nil, err
	}

	if err := upgradeDocument(doc, now); err != nil {
		return nil, err
	}
	return doc, nil
}

// loadForRead serves read-only callers, preferring the TTL cache.
func (s *service) loadForRead(ctx context.Context, userID string) (*domain.UserProgress, error) {
	if doc, ok := s.cache.Get(userID); ok {
		return doc, nil
	}

	doc, err := s.loadForUpdate(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	s.cache.Set(userID, doc)
	return doc, nil
}

// save persists the merged aggregate exactly once and invalidates the cache.
func (s *service) save(ctx context.Context, doc *domain.UserProgress) error {
	opCtx, cancel := context.WithTimeout(ctx, s.opts.StorageTimeout)
	defer cancel()

	if err := s.store.Save(opCtx, doc); err != nil {
		return err
	}
	s.cache.Invalidate(doc.UserID)
	return nil
}

// publish sends an event; delivery failures are the publisher's problem
// (retry/dead-letter), never the transaction's.
func (s *service) publish(ctx context.Context, evt event.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish event",
			"event_type", evt.Type,
			"error", err)
	}
}

// updateChallenges refreshes the challenge list (dropping expired instances,
// generating missing windows) and recomputes progress statelessly. Returns
// the IDs of challenges newly completed by this update.
func (s *service) updateChallenges(doc *domain.UserProgress, now time.Time) []string {
	challenges, _ := s.pool.Refresh(doc.Challenges, now)

	var completed []string
	for i := range challenges {
		wasCompleted := challenges[i].Completed
		challenges[i] = challenge.UpdateProgress(challenges[i], doc.RoutineHistory, doc.Streak)
		if challenges[i].Completed && !wasCompleted {
			completed = append(completed, challenges[i].ID)
		}
	}

	doc.Challenges = challenges
	return completed
}

// appendHistory records the routine and prunes entries beyond retention.
func appendHistory(history []domain.RoutineRecord, routine domain.RoutineCompleted, now time.Time) []domain.RoutineRecord {
	history = append(history, domain.RoutineRecord{
		Date:               routine.CompletedAt.Format(domain.DateKeyFormat),
		Area:               routine.Area,
		DurationSeconds:    routine.DurationSeconds,
		StretchCount:       routine.StretchCount,
		HasAdvancedStretch: routine.HasAdvancedStretch,
		CompletedAt:        routine.CompletedAt,
	})

	cutoff := now.AddDate(0, 0, -historyRetentionDays)
	pruned := history[:0:0]
	for _, r := range history {
		if r.CompletedAt.After(cutoff) {
			pruned = append(pruned, r)
		}
	}
	return pruned
}

// ensureRequestID stamps a request ID for tracing when the caller did not.
func ensureRequestID(ctx context.Context) context.Context {
	if _, ok := logger.RequestIDFromContext(ctx); ok {
		return ctx
	}
	return logger.WithRequestID(ctx, logger.GenerateRequestID())
}

// isNotFound distinguishes a missing document from a storage failure.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrUserProgressNotFound)
}
