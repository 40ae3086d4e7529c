package notification

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"
	"time"

	"github.com/smukkama/agrisense/internal/protocol"
	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/pkg/config"
)

var conditionTitles = map[protocol.Condition]string{
	protocol.ConditionCriticalDeficiency: "Critical nutrient deficiency",
	protocol.ConditionPoorHealth:         "Poor soil health",
	protocol.ConditionUnsuitableWater:    "Water unsuitable for irrigation",
}

// Title returns the human readable name of a condition
func Title(c protocol.Condition) string {
	if t, ok := conditionTitles[c]; ok {
		return t
	}
	return string(c)
}

var funcs = template.FuncMap{
	"title": Title,
	"when":  func(t time.Time) string { return t.Format(reading.TimestampLayout) },
	"num":   reading.FormatFloat,
}

var raisedTemplate = template.Must(template.New("raised").Funcs(funcs).Parse(`
AgriSense Alert Raised
======================

Subject: {{.Subject}} ({{.Kind}})
Condition: {{title .Condition}}
Severity: {{.Severity}}
Value: {{num .Value}}
Breach Start: {{when .StartTime}}
Reading Time: {{when .ReadingTime}}
Alert ID: {{.AlertID}}
{{if .Details}}
Findings:
{{range .Details}}  - {{.}}
{{end}}{{end}}
Please inspect {{.Subject}} and apply the recommended treatment.

---
AgriSense Notification System
`))

var clearedTemplate = template.Must(template.New("cleared").Funcs(funcs).Parse(`
AgriSense Alert Cleared
=======================

Subject: {{.Subject}} ({{.Kind}})
Condition: {{title .Condition}}
Alert ID: {{.AlertID}}
Cleared At: {{when .ReadingTime}}

The latest reading of {{.Subject}} no longer shows this condition.

---
AgriSense Notification System
`))

// EmailNotifier sends email notifications
type EmailNotifier struct {
	config *config.SMTPConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg *config.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{config: cfg, send: smtp.SendMail}
}

// Render returns the subject line and body of an alert email
func Render(n *protocol.AlertNotification) (string, string, error) {
	var (
		subject string
		tmpl    *template.Template
	)
	switch n.Type {
	case protocol.AlertTypeRaised:
		subject = fmt.Sprintf("🚨 AgriSense Alert RAISED - %s, %s", Title(n.Condition), n.Subject)
		tmpl = raisedTemplate
	case protocol.AlertTypeCleared:
		subject = fmt.Sprintf("✅ AgriSense Alert CLEARED - %s, %s", Title(n.Condition), n.Subject)
		tmpl = clearedTemplate
	default:
		return "", "", fmt.Errorf("unknown notification type: %s", n.Type)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, n); err != nil {
		return "", "", fmt.Errorf("failed to render email template: %w", err)
	}
	return subject, buf.String(), nil
}

// SendAlertNotification sends an email for an alert notification
func (e *EmailNotifier) SendAlertNotification(n *protocol.AlertNotification) error {
	subject, body, err := Render(n)
	if err != nil {
		return err
	}
	return e.sendEmail(subject, body)
}

func (e *EmailNotifier) sendEmail(subject, body string) error {
	// Skip sending if SMTP is not configured
	if e.config.Username == "" || e.config.Password == "" {
		fmt.Printf("SMTP not configured, skipping email:\nSubject: %s\n%s\n", subject, body)
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.config.From)
	fmt.Fprintf(&msg, "To: %s\r\n", e.config.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	if err := e.send(addr, auth, e.config.From, []string{e.config.To}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	fmt.Printf("Email sent successfully: %s\n", subject)
	return nil
}

// TestConnection tests the SMTP connection
func (e *EmailNotifier) TestConnection() error {
	if e.config.Username == "" {
		return fmt.Errorf("SMTP not configured")
	}

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	fmt.Println("SMTP connection test successful")
	return nil
}
