package notify

import (
	"fmt"
	"log"
	"strings"
	"text/template"

	gomail "gopkg.in/gomail.v2"

	"meetScribe/config"
	"meetScribe/core"
)

var summaryTemplate = template.Must(template.New("summary").Parse(
	`Hi,

Here is the summary for "{{.Title}}":

{{.Summary}}
{{if .KeyPoints}}
Key points:
{{range .KeyPoints}}  - {{.}}
{{end}}{{end}}{{if .ActionItems}}
Action items:
{{range .ActionItems}}  - {{.}}
{{end}}{{end}}
Recorded automatically by meetScribe.
`))

// Notifier emails meeting summaries to attendees. When SMTP is not
// configured it degrades to a logged no-op rather than failing the
// pipeline.
type Notifier struct {
	dialer  *gomail.Dialer
	from    string
	enabled bool
}

func New(cfg *config.Config) *Notifier {
	if !cfg.HasSMTP() {
		log.Printf("[Notify] SMTP not configured, summary emails disabled")
		return &Notifier{enabled: false}
	}
	return &Notifier{
		dialer:  gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:    cfg.SMTPFrom,
		enabled: true,
	}
}

// SendSummary delivers one summary email per meeting, addressed to every
// attendee with an email address.
func (n *Notifier) SendSummary(meeting core.Meeting, attendees []core.Attendee, result core.SummaryResult) error {
	recipients := make([]string, 0, len(attendees))
	for _, a := range attendees {
		if a.Email != "" {
			recipients = append(recipients, a.Email)
		}
	}
	if len(recipients) == 0 {
		log.Printf("[Notify] meeting %s has no attendee emails, skipping", meeting.ID)
		return nil
	}
	if !n.enabled {
		log.Printf("[Notify] would send summary for meeting %s to %d attendees (SMTP disabled)",
			meeting.ID, len(recipients))
		return nil
	}

	body, err := renderBody(meeting.Title, result)
	if err != nil {
		return fmt.Errorf("render summary email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", fmt.Sprintf("Meeting summary: %s", meeting.Title))
	msg.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send summary email: %w", err)
	}
	log.Printf("[Notify] summary for meeting %s sent to %d attendees", meeting.ID, len(recipients))
	return nil
}

func renderBody(title string, result core.SummaryResult) (string, error) {
	var b strings.Builder
	err := summaryTemplate.Execute(&b, struct {
		Title       string
		Summary     string
		KeyPoints   []string
		ActionItems []string
	}{title, result.Summary, result.KeyPoints, result.ActionItems})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
