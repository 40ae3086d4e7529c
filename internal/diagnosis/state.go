package diagnosis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smukkama/agrisense/internal/protocol"
)

// State represents the alert state of one subject and condition
type State struct {
	Status      string    `json:"status"` // CLEAR, PENDING_ALERT, ALERTING
	BreachStart time.Time `json:"breach_start"`
	LastChecked time.Time `json:"last_checked"`
	BreachValue float64   `json:"breach_value"`
	Breaches    int       `json:"breaches"`
	AlertID     int64     `json:"alert_id,omitempty"`
}

const (
	StateClear   = "CLEAR"
	StatePending = "PENDING_ALERT"
	StateActive  = "ALERTING"
)

// StateTTL expires states of subjects that stopped reporting
const StateTTL = 7 * 24 * time.Hour

func stateKey(subject string, cond protocol.Condition) string {
	return fmt.Sprintf("diagnosis_state:%s:%s", subject, cond)
}

func latestKey(subject string) string {
	return fmt.Sprintf("diagnosis_latest:%s", subject)
}

// StateManager keeps alert states and latest summaries in Redis
type StateManager struct {
	redis *redis.Client
}

// NewStateManager creates a new state manager
func NewStateManager(redisClient *redis.Client) *StateManager {
	return &StateManager{redis: redisClient}
}

// GetState retrieves the alert state; a missing key is CLEAR
func (sm *StateManager) GetState(ctx context.Context, subject string, cond protocol.Condition) (*State, error) {
	data, err := sm.redis.Get(ctx, stateKey(subject, cond)).Result()
	if err == redis.Nil {
		return &State{Status: StateClear}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state from Redis: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &state, nil
}

// SetState saves the alert state
func (sm *StateManager) SetState(ctx context.Context, subject string, cond protocol.Condition, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := sm.redis.Set(ctx, stateKey(subject, cond), data, StateTTL).Err(); err != nil {
		return fmt.Errorf("failed to set state in Redis: %w", err)
	}
	return nil
}

// DeleteState removes the alert state (returns to CLEAR)
func (sm *StateManager) DeleteState(ctx context.Context, subject string, cond protocol.Condition) error {
	return sm.redis.Del(ctx, stateKey(subject, cond)).Err()
}

// SetLatest stores the most recent diagnosis of a subject
func (sm *StateManager) SetLatest(ctx context.Context, summary *Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := sm.redis.Set(ctx, latestKey(summary.Subject), data, StateTTL).Err(); err != nil {
		return fmt.Errorf("failed to set summary in Redis: %w", err)
	}
	return nil
}

// GetLatest returns the most recent diagnosis of a subject, or nil
func (sm *StateManager) GetLatest(ctx context.Context, subject string) (*Summary, error) {
	data, err := sm.redis.Get(ctx, latestKey(subject)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary from Redis: %w", err)
	}

	var summary Summary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &summary, nil
}

// GetAllStates returns every stored alert state keyed by subject:condition
func (sm *StateManager) GetAllStates(ctx context.Context) (map[string]*State, error) {
	states := make(map[string]*State)

	iter := sm.redis.Scan(ctx, 0, "diagnosis_state:*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := sm.redis.Get(ctx, key).Result()
		if err != nil {
			continue
		}

		var state State
		if err := json.Unmarshal([]byte(data), &state); err != nil {
			continue
		}
		states[strings.TrimPrefix(key, "diagnosis_state:")] = &state
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan states: %w", err)
	}

	return states, nil
}
