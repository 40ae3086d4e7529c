package diagnosis

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/smukkama/agrisense/internal/database"
	"github.com/smukkama/agrisense/internal/protocol"
	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/zone"
)

type fakeStates struct {
	states map[string]State
	latest map[string]*Summary
}

func newFakeStates() *fakeStates {
	return &fakeStates{states: map[string]State{}, latest: map[string]*Summary{}}
}

func (f *fakeStates) GetState(ctx context.Context, subject string, cond protocol.Condition) (*State, error) {
	s, ok := f.states[stateKey(subject, cond)]
	if !ok {
		return &State{Status: StateClear}, nil
	}
	return &s, nil
}

func (f *fakeStates) SetState(ctx context.Context, subject string, cond protocol.Condition, state *State) error {
	f.states[stateKey(subject, cond)] = *state
	return nil
}

func (f *fakeStates) DeleteState(ctx context.Context, subject string, cond protocol.Condition) error {
	delete(f.states, stateKey(subject, cond))
	return nil
}

func (f *fakeStates) SetLatest(ctx context.Context, summary *Summary) error {
	f.latest[summary.Subject] = summary
	return nil
}

func (f *fakeStates) GetAllStates(ctx context.Context) (map[string]*State, error) {
	out := make(map[string]*State, len(f.states))
	for key, s := range f.states {
		out[strings.TrimPrefix(key, "diagnosis_state:")] = &s
	}
	return out, nil
}

func (f *fakeStates) GetLatest(ctx context.Context, subject string) (*Summary, error) {
	return f.latest[subject], nil
}

type fakeLog struct {
	nextID  int64
	entries map[int64]*database.AlertLog
}

func (l *fakeLog) InsertAlertLog(ctx context.Context, a *database.AlertLog) error {
	l.nextID++
	a.AlertID = l.nextID
	if l.entries == nil {
		l.entries = map[int64]*database.AlertLog{}
	}
	l.entries[a.AlertID] = a
	return nil
}

func (l *fakeLog) UpdateAlertLogCleared(ctx context.Context, id int64, end time.Time) error {
	a := l.entries[id]
	a.Status = database.AlertStatusCleared
	a.EndTime = &end
	return nil
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []*protocol.AlertNotification
}

func (p *fakePublisher) Publish(ctx context.Context, key string, value []byte) error {
	n, err := protocol.DecodeAlertNotification(value)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.sent = append(p.sent, n)
	p.mu.Unlock()
	return nil
}

func (p *fakePublisher) byCondition(cond protocol.Condition) []*protocol.AlertNotification {
	var out []*protocol.AlertNotification
	for _, n := range p.sent {
		if n.Condition == cond {
			out = append(out, n)
		}
	}
	return out
}

var (
	run = uuid.New()
	t0  = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
)

func soilAt(hour int, nitrogen float64) *protocol.ReadingMessage {
	return protocol.NewSoilMessage(run, hour, reading.SoilReading{
		Timestamp:       t0.Add(time.Duration(hour) * time.Hour),
		ZoneID:          zone.Zone2,
		SoilType:        zone.Clay,
		Nitrogen:        reading.Float(nitrogen),
		Phosphorus:      reading.Float(45),
		Potassium:       60,
		PH:              6.5,
		OrganicMatter:   3.5,
		Moisture:        30,
		SoilTemperature: 24,
		EC:              reading.Float(1.2),
	})
}

func TestEvaluator_RaiseAndClear(t *testing.T) {
	states, log, pub := newFakeStates(), &fakeLog{}, &fakePublisher{}
	e := NewEvaluator(states, log, pub, 2)
	ctx := context.Background()
	cond := protocol.ConditionCriticalDeficiency

	if err := e.Evaluate(ctx, soilAt(0, 30)); err != nil {
		t.Fatal(err)
	}
	s, _ := states.GetState(ctx, "Zone_2", cond)
	if s.Status != StatePending || s.Breaches != 1 {
		t.Fatalf("Expected pending state after first breach, got %+v", s)
	}
	if len(pub.byCondition(cond)) != 0 {
		t.Fatal("Alert raised before it was confirmed")
	}

	if err := e.Evaluate(ctx, soilAt(1, 25)); err != nil {
		t.Fatal(err)
	}
	raised := pub.byCondition(cond)
	if len(raised) != 1 || raised[0].Type != protocol.AlertTypeRaised {
		t.Fatalf("Expected one raised alert, got %+v", raised)
	}
	if raised[0].Value != 25 || !raised[0].StartTime.Equal(t0) || raised[0].AlertID == 0 {
		t.Errorf("Unexpected alert %+v", raised[0])
	}
	if diff := cmp.Diff([]string{"Nitrogen 25 (Critical)"}, raised[0].Details); diff != "" {
		t.Errorf("Details mismatch:\n%s", diff)
	}

	if err := e.Evaluate(ctx, soilAt(2, 85)); err != nil {
		t.Fatal(err)
	}
	all := pub.byCondition(cond)
	if len(all) != 2 || all[1].Type != protocol.AlertTypeCleared || all[1].AlertID != raised[0].AlertID {
		t.Fatalf("Expected a matching clear notification, got %+v", all)
	}
	entry := log.entries[raised[0].AlertID]
	if entry.Details != `["Nitrogen 25 (Critical)"]` {
		t.Errorf("Expected JSON details in the alert log, got %s", entry.Details)
	}
	if entry.Status != database.AlertStatusCleared || !entry.EndTime.Equal(t0.Add(2*time.Hour)) {
		t.Errorf("Alert log not cleared: %+v", entry)
	}
	if s, _ := states.GetState(ctx, "Zone_2", cond); s.Status != StateClear {
		t.Errorf("Expected CLEAR after recovery, got %s", s.Status)
	}
}

func TestEvaluator_PendingResetsWithoutAlert(t *testing.T) {
	states, pub := newFakeStates(), &fakePublisher{}
	e := NewEvaluator(states, &fakeLog{}, pub, 3)
	ctx := context.Background()

	e.Evaluate(ctx, soilAt(0, 30))
	e.Evaluate(ctx, soilAt(1, 30))
	e.Evaluate(ctx, soilAt(2, 85))
	e.Evaluate(ctx, soilAt(3, 30))

	if n := len(pub.byCondition(protocol.ConditionCriticalDeficiency)); n != 0 {
		t.Errorf("Expected no alerts, got %d", n)
	}
	s, _ := states.GetState(ctx, "Zone_2", protocol.ConditionCriticalDeficiency)
	if s.Breaches != 1 {
		t.Errorf("Breach count should restart after recovery, got %d", s.Breaches)
	}
}

func TestEvaluator_UnsuitableWater(t *testing.T) {
	states, pub := newFakeStates(), &fakePublisher{}
	e := NewEvaluator(states, &fakeLog{}, pub, 1)

	msg := protocol.NewWaterMessage(run, 0, reading.WaterReading{
		Timestamp: t0, SourceType: reading.Borewell, PH: 5.5, TDS: 2500,
		Chloride: 100, Sulfate: 100, Nitrate: 5, QualityGrade: reading.GradeD,
	})
	if err := e.Evaluate(context.Background(), msg); err != nil {
		t.Fatal(err)
	}

	sent := pub.byCondition(protocol.ConditionUnsuitableWater)
	if len(sent) != 1 || sent[0].Subject != "Borewell" || sent[0].Severity != "D" {
		t.Fatalf("Expected an immediate alert for Borewell, got %+v", sent)
	}
	want := []string{"ph (5.5) below minimum (6)", "tds_ppm (2500ppm) exceeds limit (2000ppm)"}
	if diff := cmp.Diff(want, sent[0].Details); diff != "" {
		t.Errorf("Issues mismatch:\n%s", diff)
	}

	latest := states.latest["Borewell"]
	if latest == nil || latest.Suitability.Suitable || !latest.Checks[string(protocol.ConditionUnsuitableWater)] {
		t.Errorf("Latest summary not stored: %+v", latest)
	}
}

func TestEvaluator_IgnoresWeather(t *testing.T) {
	states, pub := newFakeStates(), &fakePublisher{}
	e := NewEvaluator(states, &fakeLog{}, pub, 1)

	msg := protocol.NewWeatherMessage(run, 0, reading.WeatherReading{Timestamp: t0, Temperature: 45})
	if err := e.Evaluate(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	if len(pub.sent) != 0 || len(states.latest) != 0 {
		t.Error("Weather readings should not be diagnosed")
	}
}

func TestCheckSoil_Summary(t *testing.T) {
	checks, summary, err := CheckSoil(*soilAt(0, 85).Soil)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range checks {
		if c.Breached {
			t.Errorf("Balanced soil should not breach %s", c.Condition)
		}
	}
	if summary.Subject != "Zone_2" || summary.Health == nil || summary.ReadingTime != "2024-06-01 08:00:00" {
		t.Errorf("Unexpected summary %+v", summary)
	}
}
