package protocol

import (
	"encoding/json"
	"time"
)

// Condition names an agronomic alert condition
type Condition string

const (
	ConditionCriticalDeficiency Condition = "critical_deficiency"
	ConditionPoorHealth         Condition = "poor_health"
	ConditionUnsuitableWater    Condition = "unsuitable_water"
)

// AlertNotification is the message format for alert notifications
type AlertNotification struct {
	Type        string    `json:"type"` // ALERT_RAISED, ALERT_CLEARED
	Subject     string    `json:"subject"`
	Kind        Kind      `json:"kind"`
	Condition   Condition `json:"condition"`
	Severity    string    `json:"severity"`
	Value       float64   `json:"value"`
	Details     []string  `json:"details,omitempty"`
	ReadingTime time.Time `json:"reading_time"`
	StartTime   time.Time `json:"start_time"`
	AlertID     int64     `json:"alert_id,omitempty"`
}

const (
	AlertTypeRaised  = "ALERT_RAISED"
	AlertTypeCleared = "ALERT_CLEARED"
)

// EncodeAlertNotification encodes an AlertNotification to JSON
func EncodeAlertNotification(alert *AlertNotification) ([]byte, error) {
	return json.Marshal(alert)
}

// DecodeAlertNotification decodes JSON to AlertNotification
func DecodeAlertNotification(data []byte) (*AlertNotification, error) {
	var alert AlertNotification
	if err := json.Unmarshal(data, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}
