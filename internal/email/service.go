// Package email sends review workflow notifications over SMTP.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// Service provides email sending
type Service struct {
	config Config
	server string
	auth   smtp.Auth
}

// Delivery is the per-recipient outcome of a notification batch.
type Delivery struct {
	Email string `json:"email"`
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

func NewService(config Config) *Service {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)

	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
	}
}

// IsConfigured returns true if email is configured
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// ApprovalRequestData fills the approval-request template.
type ApprovalRequestData struct {
	AppName      string
	ApproverName string
	Title        string
	Version      int
	ReviewerName string
	ApprovalURL  string
}

// DecisionNoticeData fills the decision-confirmation template.
type DecisionNoticeData struct {
	AppName      string
	ReviewerName string
	Title        string
	Version      int
	ApproverName string
	Decision     string
	Comments     string
}

// SendApprovalRequest emails one approver their review link.
func (s *Service) SendApprovalRequest(to string, data ApprovalRequestData) error {
	if data.AppName == "" {
		data.AppName = s.config.FromName
	}
	subject := fmt.Sprintf("Approval requested: %s (v%d)", data.Title, data.Version)
	html, err := renderTemplate(approvalRequestTemplate, data)
	if err != nil {
		return fmt.Errorf("render approval request template: %w", err)
	}
	return s.sendHTML([]string{to}, subject, html)
}

// SendDecisionNotice emails the reviewer when an approver decides.
func (s *Service) SendDecisionNotice(to string, data DecisionNoticeData) error {
	if data.AppName == "" {
		data.AppName = s.config.FromName
	}
	subject := fmt.Sprintf("Review %s: %s (v%d)", data.Decision, data.Title, data.Version)
	html, err := renderTemplate(decisionNoticeTemplate, data)
	if err != nil {
		return fmt.Errorf("render decision notice template: %w", err)
	}
	return s.sendHTML([]string{to}, subject, html)
}

func (s *Service) sendHTML(to []string, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	boundary := "boundary-lexrev"

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&msg, "\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "Please view this email in an HTML-capable email client.\r\n")
	fmt.Fprintf(&msg, "\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", htmlBody)
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg.Bytes())
}

func renderTemplate(tmpl string, data any) (string, error) {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const approvalRequestTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Approval requested</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #1a4480; padding-bottom: 10px; margin-bottom: 20px; }
        .button { display: inline-block; padding: 12px 24px; background: #1a4480; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
        .link { word-break: break-all; color: #1a4480; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Hi {{.ApproverName}},</h2>

    <p>{{.ReviewerName}} requested your approval on the legal review of
    <strong>{{.Title}}</strong> (version {{.Version}}).</p>

    <p>
        <a href="{{.ApprovalURL}}" class="button">Open Review</a>
    </p>

    <p>Or copy and paste this link into your browser:</p>
    <p class="link">{{.ApprovalURL}}</p>

    <p>This link expires in 24 hours. A new request re-activates it.</p>

    <div class="footer">
        <p>You received this email because you were named as an approver on this review.</p>
    </div>
</body>
</html>`

const decisionNoticeTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Review decision</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #1a4480; padding-bottom: 10px; margin-bottom: 20px; }
        .decision { background: #f4f6f8; padding: 12px; border-radius: 4px; margin: 20px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Hi {{.ReviewerName}},</h2>

    <p>{{.ApproverName}} has <strong>{{.Decision}}</strong> the legal review of
    <strong>{{.Title}}</strong> (version {{.Version}}).</p>

    <div class="decision">
        <strong>Comments:</strong>
        <p>{{.Comments}}</p>
    </div>

    <div class="footer">
        <p>You received this email because you are the reviewer of this document.</p>
    </div>
</body>
</html>`
