// Package diagnosis scores incoming readings and raises an alert when a
// subject (a zone or a water source) stays in breach of a condition for
// a number of consecutive readings. The alert clears on the first
// reading that no longer breaches.
package diagnosis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smukkama/agrisense/internal/database"
	"github.com/smukkama/agrisense/internal/protocol"
)

// StateStore keeps per-subject alert state
type StateStore interface {
	GetState(ctx context.Context, subject string, cond protocol.Condition) (*State, error)
	SetState(ctx context.Context, subject string, cond protocol.Condition, state *State) error
	DeleteState(ctx context.Context, subject string, cond protocol.Condition) error
	SetLatest(ctx context.Context, summary *Summary) error
}

// AlertLog records raised and cleared alerts
type AlertLog interface {
	InsertAlertLog(ctx context.Context, alert *database.AlertLog) error
	UpdateAlertLogCleared(ctx context.Context, alertID int64, endTime time.Time) error
}

// Publisher sends encoded notifications
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Evaluator runs the alert state machine CLEAR -> PENDING_ALERT -> ALERTING
type Evaluator struct {
	states        StateStore
	log           AlertLog
	publisher     Publisher
	confirmations int
}

// NewEvaluator creates an evaluator that raises an alert after
// confirmations consecutive breaching readings
func NewEvaluator(states StateStore, log AlertLog, publisher Publisher, confirmations int) *Evaluator {
	if confirmations < 1 {
		confirmations = 1
	}
	return &Evaluator{
		states:        states,
		log:           log,
		publisher:     publisher,
		confirmations: confirmations,
	}
}

// Evaluate scores one reading message and advances its alert states.
// Weather readings carry no alert conditions.
func (e *Evaluator) Evaluate(ctx context.Context, msg *protocol.ReadingMessage) error {
	var (
		checks  []Check
		summary *Summary
		err     error
	)
	switch msg.Kind {
	case protocol.KindSoil:
		checks, summary, err = CheckSoil(*msg.Soil)
	case protocol.KindWater:
		checks, summary, err = CheckWater(*msg.Water)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	if err := e.states.SetLatest(ctx, summary); err != nil {
		return err
	}

	subject := msg.Key()
	at := msg.Timestamp()
	for _, c := range checks {
		if err := e.evaluateCheck(ctx, subject, msg.Kind, c, at); err != nil {
			fmt.Printf("Failed to evaluate %s for %s: %v\n", c.Condition, subject, err)
		}
	}
	return nil
}

func (e *Evaluator) evaluateCheck(ctx context.Context, subject string, kind protocol.Kind, c Check, at time.Time) error {
	state, err := e.states.GetState(ctx, subject, c.Condition)
	if err != nil {
		return err
	}

	if c.Breached {
		return e.handleBreach(ctx, subject, kind, c, state, at)
	}
	return e.handleNoBreach(ctx, subject, kind, c, state, at)
}

func (e *Evaluator) handleBreach(ctx context.Context, subject string, kind protocol.Kind, c Check, state *State, at time.Time) error {
	switch state.Status {
	case StateClear:
		state = &State{
			Status:      StatePending,
			BreachStart: at,
			LastChecked: at,
			BreachValue: c.Value,
			Breaches:    1,
		}
		if state.Breaches >= e.confirmations {
			return e.raiseAlert(ctx, subject, kind, c, state, at)
		}
		return e.states.SetState(ctx, subject, c.Condition, state)

	case StatePending:
		state.Breaches++
		state.LastChecked = at
		state.BreachValue = c.Value
		if state.Breaches >= e.confirmations {
			return e.raiseAlert(ctx, subject, kind, c, state, at)
		}
		return e.states.SetState(ctx, subject, c.Condition, state)

	case StateActive:
		state.Breaches++
		state.LastChecked = at
		return e.states.SetState(ctx, subject, c.Condition, state)
	}

	return nil
}

func (e *Evaluator) handleNoBreach(ctx context.Context, subject string, kind protocol.Kind, c Check, state *State, at time.Time) error {
	switch state.Status {
	case StatePending:
		// breach ended before the alert was confirmed
		return e.states.DeleteState(ctx, subject, c.Condition)

	case StateActive:
		return e.clearAlert(ctx, subject, kind, c, state, at)
	}

	return nil
}

func (e *Evaluator) raiseAlert(ctx context.Context, subject string, kind protocol.Kind, c Check, state *State, at time.Time) error {
	fmt.Printf("🚨 ALERT RAISED: %s %s (value=%.2f, severity=%s)\n", subject, c.Condition, c.Value, c.Severity)

	details, err := json.Marshal(c.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal alert details: %w", err)
	}
	entry := &database.AlertLog{
		Subject:     subject,
		Kind:        string(kind),
		Condition:   string(c.Condition),
		Severity:    c.Severity,
		BreachValue: c.Value,
		Details:     string(details),
		StartTime:   state.BreachStart,
		Status:      database.AlertStatusActive,
	}
	if err := e.log.InsertAlertLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert alert log: %w", err)
	}

	state.Status = StateActive
	state.AlertID = entry.AlertID
	if err := e.states.SetState(ctx, subject, c.Condition, state); err != nil {
		return err
	}

	return e.sendNotification(ctx, &protocol.AlertNotification{
		Type:        protocol.AlertTypeRaised,
		Subject:     subject,
		Kind:        kind,
		Condition:   c.Condition,
		Severity:    c.Severity,
		Value:       c.Value,
		Details:     c.Details,
		ReadingTime: at,
		StartTime:   state.BreachStart,
		AlertID:     entry.AlertID,
	})
}

func (e *Evaluator) clearAlert(ctx context.Context, subject string, kind protocol.Kind, c Check, state *State, at time.Time) error {
	fmt.Printf("✅ ALERT CLEARED: %s %s\n", subject, c.Condition)

	if state.AlertID > 0 {
		if err := e.log.UpdateAlertLogCleared(ctx, state.AlertID, at); err != nil {
			return fmt.Errorf("failed to update alert log: %w", err)
		}
	}

	if err := e.states.DeleteState(ctx, subject, c.Condition); err != nil {
		return err
	}

	return e.sendNotification(ctx, &protocol.AlertNotification{
		Type:        protocol.AlertTypeCleared,
		Subject:     subject,
		Kind:        kind,
		Condition:   c.Condition,
		Severity:    c.Severity,
		Value:       c.Value,
		ReadingTime: at,
		StartTime:   state.BreachStart,
		AlertID:     state.AlertID,
	})
}

func (e *Evaluator) sendNotification(ctx context.Context, n *protocol.AlertNotification) error {
	data, err := protocol.EncodeAlertNotification(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	key := fmt.Sprintf("%s-%s", n.Subject, n.Condition)
	return e.publisher.Publish(ctx, key, data)
}
