package services

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"strings"

	"alfredoptarigan/jobpost-ats/internal/models"
)

const (
	TemplateApplicationConfirmation = "application-confirmation"
	TemplateStatusUpdate            = "status-update"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(
	template.New("emails").
		Funcs(template.FuncMap{"upper": strings.ToUpper}).
		ParseFS(templateFS, "templates/*.html"),
)

// Notifier renders applicant emails and hands them to the Mailer.
type Notifier interface {
	Send(ctx context.Context, req models.SendEmailRequest) (json.RawMessage, error)
	SendApplicationConfirmation(ctx context.Context, app *models.Application, job *models.Job) error
	SendStatusUpdate(ctx context.Context, app *models.Application, jobTitle string) error
}

type notifier struct {
	mailer Mailer
	from   string
}

func NewNotifier(mailer Mailer, from string) Notifier {
	return &notifier{mailer: mailer, from: from}
}

func (n *notifier) Send(ctx context.Context, req models.SendEmailRequest) (json.RawMessage, error) {
	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Template) == "" {
		return nil, ErrMissingFields
	}

	html, err := RenderEmail(req.Template, req.Props)
	if err != nil {
		return nil, err
	}

	return n.mailer.Send(ctx, OutboundEmail{
		From:    n.from,
		To:      req.To,
		Subject: req.Subject,
		HTML:    html,
	})
}

func (n *notifier) SendApplicationConfirmation(ctx context.Context, app *models.Application, job *models.Job) error {
	_, err := n.Send(ctx, models.SendEmailRequest{
		To:       app.Email,
		Subject:  fmt.Sprintf("Application Received - %s at %s", job.Title, job.CompanyName),
		Template: TemplateApplicationConfirmation,
		Props: map[string]any{
			"applicantName": app.FullName,
			"jobTitle":      job.Title,
			"companyName":   job.CompanyName,
		},
	})
	if err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	log.Printf("✅ Confirmation email sent application_id=%s\n", app.ID)
	return nil
}

func (n *notifier) SendStatusUpdate(ctx context.Context, app *models.Application, jobTitle string) error {
	_, err := n.Send(ctx, models.SendEmailRequest{
		To:       app.Email,
		Subject:  fmt.Sprintf("Application Status Update - %s", jobTitle),
		Template: TemplateStatusUpdate,
		Props: map[string]any{
			"applicantName": app.FullName,
			"jobTitle":      jobTitle,
			"status":        string(app.Status),
		},
	})
	if err != nil {
		return fmt.Errorf("send status email: %w", err)
	}
	log.Printf("✅ Status update email sent application_id=%s status=%s\n", app.ID, app.Status)
	return nil
}

// RenderEmail renders a named template. Props values are stringified; missing
// ones render empty.
func RenderEmail(name string, props map[string]any) (string, error) {
	var fields []string
	switch name {
	case TemplateApplicationConfirmation:
		fields = []string{"applicantName", "jobTitle", "companyName"}
	case TemplateStatusUpdate:
		fields = []string{"applicantName", "jobTitle", "status"}
	default:
		return "", ErrUnknownTemplate
	}

	data := make(map[string]string, len(fields))
	for _, f := range fields {
		data[f] = ""
		if v, ok := props[f]; ok && v != nil {
			data[f] = fmt.Sprint(v)
		}
	}

	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
