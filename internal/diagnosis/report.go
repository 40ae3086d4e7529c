package diagnosis

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/smukkama/agrisense/internal/protocol"
)

// StateReader lists stored alert states and the latest summaries
type StateReader interface {
	GetAllStates(ctx context.Context) (map[string]*State, error)
	GetLatest(ctx context.Context, subject string) (*Summary, error)
}

// AlertingSubject is a subject with at least one raised alert
type AlertingSubject struct {
	Subject    string
	Conditions []protocol.Condition
	Latest     *Summary
}

// Report is a snapshot of every tracked alert state
type Report struct {
	Tracked  int
	Pending  int
	Alerting []AlertingSubject
}

// BuildReport groups raised alerts by subject, in subject order, along
// with the latest diagnosis of each alerting subject
func BuildReport(ctx context.Context, r StateReader) (*Report, error) {
	states, err := r.GetAllStates(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Tracked: len(states)}
	alerting := map[string][]protocol.Condition{}
	for key, s := range states {
		switch s.Status {
		case StatePending:
			report.Pending++
		case StateActive:
			i := strings.LastIndex(key, ":")
			if i < 0 {
				continue
			}
			subject := key[:i]
			alerting[subject] = append(alerting[subject], protocol.Condition(key[i+1:]))
		}
	}

	subjects := make([]string, 0, len(alerting))
	for subject := range alerting {
		subjects = append(subjects, subject)
	}
	slices.Sort(subjects)

	for _, subject := range subjects {
		latest, err := r.GetLatest(ctx, subject)
		if err != nil {
			return nil, fmt.Errorf("failed to load latest diagnosis of %s: %w", subject, err)
		}
		conds := alerting[subject]
		slices.Sort(conds)
		report.Alerting = append(report.Alerting, AlertingSubject{
			Subject:    subject,
			Conditions: conds,
			Latest:     latest,
		})
	}

	return report, nil
}
