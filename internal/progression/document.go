package progression

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stretchkit/progression/internal/domain"
	"github.com/stretchkit/progression/internal/reward"
	"github.com/stretchkit/progression/internal/streak"
)

var validate = validator.New()

// upgradeDocument brings a loaded document up to the current schema and
// rejects anything still inconsistent. Missing collections are filled with
// defaults here, at load time, never silently mid-computation.
func upgradeDocument(doc *domain.UserProgress, now time.Time) error {
	if doc.UserID == "" {
		return fmt.Errorf("%w: missing user_id", domain.ErrInvalidDocument)
	}

	if doc.SchemaVersion < domain.ProgressSchemaVersion {
		// v1 documents predate the routine-history ledger and the reward
		// level gates; both are reconstructible from defaults.
		doc.SchemaVersion = domain.ProgressSchemaVersion
	}

	if doc.Level < 1 {
		doc.Level = 1
	}
	if doc.Rewards == nil {
		doc.Rewards = make(map[string]domain.RewardState)
	}
	if doc.Achievements == nil {
		doc.Achievements = make(map[string]domain.AchievementState)
	}
	for _, r := range reward.Catalog {
		state, ok := doc.Rewards[r.ID]
		if !ok {
			doc.Rewards[r.ID] = domain.RewardState{LevelRequired: r.LevelRequired}
			continue
		}
		if state.LevelRequired == 0 {
			state.LevelRequired = r.LevelRequired
			doc.Rewards[r.ID] = state
		}
	}
	if doc.Streak.FlexSaveLastRefillMonth == "" {
		doc.Streak.FlexSaveLastRefillMonth = now.Format(domain.MonthTagFormat)
	}

	if err := streak.Validate(&doc.Streak); err != nil {
		return err
	}
	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	return nil
}

// validateRoutine rejects malformed inbound events before any state changes.
func validateRoutine(routine domain.RoutineCompleted) error {
	if err := validate.Struct(routine); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if routine.CompletedAt.IsZero() {
		return fmt.Errorf("%w: completed_at is required", domain.ErrInvalidInput)
	}
	return nil
}
