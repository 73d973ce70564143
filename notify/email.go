// Package notify sends operational notifications after scheduled
// imports.
package notify

import (
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	log "github.com/sirupsen/logrus"

	"dealradar/importer"
)

// Notifier emails bulk-import summaries through SendGrid. A nil
// Notifier (no API key or recipient configured) is a no-op.
type Notifier struct {
	apiKey  string
	toEmail string
}

func NewNotifier(apiKey, toEmail string) *Notifier {
	if apiKey == "" || toEmail == "" {
		return nil
	}
	return &Notifier{apiKey: apiKey, toEmail: toEmail}
}

// SendImportSummary mails the outcome of one scheduled import run.
func (n *Notifier) SendImportSummary(s importer.Summary) error {
	if n == nil {
		return nil
	}

	subject := fmt.Sprintf("Deal import: %d new, %d updated, %d failed", s.Created, s.Updated, s.Failed)
	text := fmt.Sprintf(
		"Import run finished at %s.\n\nURLs processed: %d\nNew products: %d\nUpdated products: %d\nFailures: %d\nDuration: %s\n",
		s.Finished.Format("2006-01-02 15:04:05 UTC"),
		s.Total, s.Created, s.Updated, s.Failed,
		s.Finished.Sub(s.Started).Round(time.Second),
	)

	from := mail.NewEmail("DealRadar", "no-reply@dealradar.app")
	to := mail.NewEmail("", n.toEmail)
	message := mail.NewSingleEmail(from, subject, to, text, "")
	client := sendgrid.NewSendClient(n.apiKey)

	response, err := client.Send(message)
	if err != nil {
		log.WithFields(log.Fields{"to": n.toEmail, "error": err}).Error("failed to send summary email")
		return err
	}
	if response.StatusCode >= 400 {
		log.WithFields(log.Fields{"status": response.StatusCode, "body": response.Body}).Error("sendgrid rejected summary email")
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	log.WithField("to", n.toEmail).Info("import summary emailed")
	return nil
}
