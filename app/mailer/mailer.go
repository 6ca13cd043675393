package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
	texttemplate "text/template"

	"github.com/lysyi3m/oss-radar/app/database"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// EmailData feeds the report templates.
type EmailData struct {
	Title   string
	Date    string
	Entries []database.ReportEntry
}

// Mailer renders report emails and delivers them over SMTP. A mailer with an
// empty host is disabled: Send becomes a no-op so runs without SMTP
// configured still complete.
type Mailer struct {
	host       string
	port       string
	user       string
	password   string
	from       string
	recipients []string

	htmlTmpl *template.Template
	textTmpl *texttemplate.Template
}

func NewMailer(host, port, user, password, from string, recipients []string) (*Mailer, error) {
	htmlTmpl, err := template.ParseFS(templateFS, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML template: %w", err)
	}
	textTmpl, err := texttemplate.ParseFS(templateFS, "templates/report.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text template: %w", err)
	}

	return &Mailer{
		host:       host,
		port:       port,
		user:       user,
		password:   password,
		from:       from,
		recipients: recipients,
		htmlTmpl:   htmlTmpl,
		textTmpl:   textTmpl,
	}, nil
}

// Enabled reports whether the mailer has an SMTP host to deliver through.
func (m *Mailer) Enabled() bool {
	return m.host != "" && m.from != "" && len(m.recipients) > 0
}

// Render produces the HTML and plaintext bodies for a report.
func (m *Mailer) Render(data EmailData) (string, string, error) {
	var html bytes.Buffer
	if err := m.htmlTmpl.Execute(&html, data); err != nil {
		return "", "", fmt.Errorf("failed to render HTML body: %w", err)
	}

	var text bytes.Buffer
	if err := m.textTmpl.Execute(&text, data); err != nil {
		return "", "", fmt.Errorf("failed to render text body: %w", err)
	}

	return html.String(), text.String(), nil
}

// Send renders the report and delivers it to every recipient. Delivery is
// retried once on failure.
func (m *Mailer) Send(subject string, data EmailData) error {
	if !m.Enabled() {
		slog.Info("Mailer disabled, skipping delivery", "subject", subject)
		return nil
	}

	html, text, err := m.Render(data)
	if err != nil {
		return err
	}

	msg, err := m.buildMessage(subject, html, text)
	if err != nil {
		return err
	}

	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}

	err = smtp.SendMail(addr, auth, m.from, m.recipients, msg)
	if err != nil {
		slog.Warn("Mail delivery failed, retrying once", "error", err)
		err = smtp.SendMail(addr, auth, m.from, m.recipients, msg)
	}
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	slog.Info("Report email sent", "subject", subject, "recipients", len(m.recipients))
	return nil
}

// buildMessage assembles a multipart/alternative MIME message with the
// plaintext part first so clients fall back gracefully.
func (m *Mailer) buildMessage(subject, html, text string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", m.from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(m.recipients, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", writer.Boundary())

	textPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": []string{"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create text part: %w", err)
	}
	if _, err := textPart.Write([]byte(text)); err != nil {
		return nil, fmt.Errorf("failed to write text part: %w", err)
	}

	htmlPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": []string{"text/html; charset=utf-8"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTML part: %w", err)
	}
	if _, err := htmlPart.Write([]byte(html)); err != nil {
		return nil, fmt.Errorf("failed to write HTML part: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize message: %w", err)
	}

	return buf.Bytes(), nil
}
