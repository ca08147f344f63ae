package services

import (
	"fmt"
	"strings"

	"fiber-mes/config"
	"fiber-mes/models"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// StockAlertNotifier mails the configured recipients when materials fall to
// or under their minimum threshold after a batch deduction.
type StockAlertNotifier struct {
	Host       string
	Port       int
	Sender     string
	Password   string
	Recipients []string
	Log        *logrus.Logger
}

// NewStockAlertNotifier builds a notifier from the loaded config. Returns nil
// when mailing is not configured; the batch service treats a nil notifier as
// disabled.
func NewStockAlertNotifier(log *logrus.Logger) *StockAlertNotifier {
	if config.SMTPHost == "" || len(config.AlertRecipients) == 0 {
		return nil
	}
	return &StockAlertNotifier{
		Host:       config.SMTPHost,
		Port:       config.SMTPPort,
		Sender:     config.SMTPSender,
		Password:   config.SMTPPassword,
		Recipients: config.AlertRecipients,
		Log:        log,
	}
}

func (n *StockAlertNotifier) NotifyLowStock(materials []models.Material) {
	if len(materials) == 0 {
		return
	}

	var body strings.Builder
	body.WriteString("<p>The following materials are at or below their minimum threshold:</p>")
	body.WriteString("<table border='1' cellpadding='4'><tr><th>Code</th><th>Name</th><th>Current Qty</th><th>Threshold</th><th>Unit</th></tr>")
	for _, m := range materials {
		body.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			m.Code, m.Name, m.CurrentQty.String(), m.MinThreshold.String(), m.Unit))
	}
	body.WriteString("</table>")

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.Sender)
	msg.SetHeader("To", n.Recipients...)
	msg.SetHeader("Subject", fmt.Sprintf("Low stock alert: %d material(s) below threshold", len(materials)))
	msg.SetBody("text/html", body.String())

	dialer := gomail.NewDialer(n.Host, n.Port, n.Sender, n.Password)
	if err := dialer.DialAndSend(msg); err != nil && n.Log != nil {
		config.LogError(n.Log, "stock_alert", "NotifyLowStock", "send mail", nil, err)
	}
}
