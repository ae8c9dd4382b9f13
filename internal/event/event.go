package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchkit/progression/internal/domain"
)

// Type represents the type of an event
type Type string

// Event represents a generic event emitted by the engine
type Event struct {
	Version string      `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// Engine event types
const (
	LevelUp             = Type(domain.EventTypeLevelUp)
	RewardUnlocked      = Type(domain.EventTypeRewardUnlocked)
	AchievementUnlocked = Type(domain.EventTypeAchievementUnlocked)
	StreakSaved         = Type(domain.EventTypeStreakSaved)
	StreakBroken        = Type(domain.EventTypeStreakBroken)
	ChallengeCompleted  = Type(domain.EventTypeChallengeCompleted)
	ChallengeClaimed    = Type(domain.EventTypeChallengeClaimed)
	BoostActivated      = Type(domain.EventTypeBoostActivated)
)

// Typed event payloads for type safety

// LevelUpPayloadV1 is the typed payload for level-up events
type LevelUpPayloadV1 struct {
	UserID   string `json:"user_id"`
	OldLevel int    `json:"old_level"`
	NewLevel int    `json:"new_level"`
}

// RewardUnlockedPayloadV1 is the typed payload for reward unlock events
type RewardUnlockedPayloadV1 struct {
	UserID   string `json:"user_id"`
	RewardID string `json:"reward_id"`
}

// AchievementUnlockedPayloadV1 is the typed payload for achievement unlock events
type AchievementUnlockedPayloadV1 struct {
	UserID        string `json:"user_id"`
	AchievementID string `json:"achievement_id"`
	XP            int    `json:"xp"`
}

// StreakSavedPayloadV1 is the typed payload for flex-save events
type StreakSavedPayloadV1 struct {
	UserID             string `json:"user_id"`
	FlexSaveApplied    bool   `json:"flex_save_applied"`
	FlexSavesRemaining int    `json:"flex_saves_remaining"`
	CurrentStreak      int    `json:"current_streak"`
}

// StreakBrokenPayloadV1 is the typed payload for streak-broken events
type StreakBrokenPayloadV1 struct {
	UserID         string `json:"user_id"`
	UserReset      bool   `json:"user_reset"`
	PreviousStreak int    `json:"previous_streak"`
}

// ChallengeCompletedPayloadV1 is the typed payload for challenge completion events
type ChallengeCompletedPayloadV1 struct {
	UserID      string `json:"user_id"`
	ChallengeID string `json:"challenge_id"`
	Type        string `json:"type"`
	RewardXP    int    `json:"reward_xp"`
}

// ChallengeClaimedPayloadV1 is the typed payload for challenge claim events
type ChallengeClaimedPayloadV1 struct {
	UserID      string `json:"user_id"`
	ChallengeID string `json:"challenge_id"`
	XPEarned    int    `json:"xp_earned"`
}

// BoostActivatedPayloadV1 is the typed payload for XP boost activation events
type BoostActivatedPayloadV1 struct {
	UserID     string  `json:"user_id"`
	Multiplier float64 `json:"multiplier"`
	ExpiresAt  int64   `json:"expires_at"`
}

// Type-safe event constructors

// NewLevelUpEvent creates a new level-up event
func NewLevelUpEvent(userID string, oldLevel, newLevel int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LevelUp,
		Payload: LevelUpPayloadV1{
			UserID:   userID,
			OldLevel: oldLevel,
			NewLevel: newLevel,
		},
	}
}

// NewRewardUnlockedEvent creates a new reward unlocked event
func NewRewardUnlockedEvent(userID, rewardID string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    RewardUnlocked,
		Payload: RewardUnlockedPayloadV1{
			UserID:   userID,
			RewardID: rewardID,
		},
	}
}

// NewAchievementUnlockedEvent creates a new achievement unlocked event
func NewAchievementUnlockedEvent(userID, achievementID string, xp int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    AchievementUnlocked,
		Payload: AchievementUnlockedPayloadV1{
			UserID:        userID,
			AchievementID: achievementID,
			XP:            xp,
		},
	}
}

// NewStreakSavedEvent creates a new streak saved event
func NewStreakSavedEvent(userID string, remaining, currentStreak int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    StreakSaved,
		Payload: StreakSavedPayloadV1{
			UserID:             userID,
			FlexSaveApplied:    true,
			FlexSavesRemaining: remaining,
			CurrentStreak:      currentStreak,
		},
	}
}

// NewStreakBrokenEvent creates a new streak broken event
func NewStreakBrokenEvent(userID string, userReset bool, previousStreak int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    StreakBroken,
		Payload: StreakBrokenPayloadV1{
			UserID:         userID,
			UserReset:      userReset,
			PreviousStreak: previousStreak,
		},
	}
}

// NewChallengeCompletedEvent creates a new challenge completed event
func NewChallengeCompletedEvent(userID string, ch domain.Challenge) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ChallengeCompleted,
		Payload: ChallengeCompletedPayloadV1{
			UserID:      userID,
			ChallengeID: ch.ID,
			Type:        ch.Type,
			RewardXP:    ch.RewardXP,
		},
	}
}

// NewChallengeClaimedEvent creates a new challenge claimed event
func NewChallengeClaimedEvent(userID, challengeID string, xpEarned int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ChallengeClaimed,
		Payload: ChallengeClaimedPayloadV1{
			UserID:      userID,
			ChallengeID: challengeID,
			XPEarned:    xpEarned,
		},
	}
}

// NewBoostActivatedEvent creates a new XP boost activated event
func NewBoostActivatedEvent(userID string, multiplier float64, expiresAt int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    BoostActivated,
		Payload: BoostActivatedPayloadV1{
			UserID:     userID,
			Multiplier: multiplier,
			ExpiresAt:  expiresAt,
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers. Handlers run synchronously;
// a handler error does not stop delivery to the remaining handlers.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d handler(s) failed for event %s: %v", len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
