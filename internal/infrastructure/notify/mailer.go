package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/garikaib/rates-scrapper/internal/application"
	"github.com/garikaib/rates-scrapper/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	gomail "gopkg.in/gomail.v2"
)

const defaultSMTPPort = 587

// Mailer sends the post-capture summary over SMTP. Delivery is off unless
// Enabled, Host and User are all set; an unconfigured Notify is a no-op, not
// an error, so the pipeline never fails on a box without mail settings.
type Mailer struct {
	Enabled bool
	Host    string
	Port    int // defaults to 587
	User    string
	Pass    string
	From    string // defaults to User
	To      string // defaults to User
	Log     *zap.Logger

	// Send overrides delivery. When nil the mailer dials Host:Port and
	// relies on the server advertising STARTTLS.
	Send func(msg *gomail.Message) error
	// Now overrides the clock stamped into the subject and footer.
	Now func() time.Time
}

var _ application.Notifier = (*Mailer)(nil)

// Configured reports whether the mailer has enough settings to deliver.
func (m *Mailer) Configured() bool {
	return m.Enabled && m.Host != "" && m.User != ""
}

// Notify mails a plain-text summary of the captured quotations.
func (m *Mailer) Notify(ctx context.Context, exchange domain.ExchangeQuotation, gold *domain.GoldQuotation) error {
	if !m.Configured() {
		m.logger().Debug("notify.disabled")
		return nil
	}

	from := m.From
	if from == "" {
		from = m.User
	}
	to := m.To
	if to == "" {
		to = m.User
	}
	now := m.now()

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "RBZ Rates Updated - "+now.Format(domain.DayFormat))
	msg.SetBody("text/plain", summaryBody(exchange, gold, now))

	if err := m.deliver(msg); err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	m.logger().Info("notify.sent", zap.String("to", to), zap.String("rate_date", domain.FormatDay(exchange.RateDate)))
	return nil
}

func (m *Mailer) deliver(msg *gomail.Message) error {
	if m.Send != nil {
		return m.Send(msg)
	}
	port := m.Port
	if port <= 0 {
		port = defaultSMTPPort
	}
	return gomail.NewDialer(m.Host, port, m.User, m.Pass).DialAndSend(msg)
}

func (m *Mailer) logger() *zap.Logger {
	if m.Log != nil {
		return m.Log
	}
	return zap.NewNop()
}

func (m *Mailer) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// summaryBody renders the mail body. Exchange rates print at full precision;
// gold prices print with thousands separators and two decimals, only for the
// currencies actually captured.
func summaryBody(exchange domain.ExchangeQuotation, gold *domain.GoldQuotation, now time.Time) string {
	pr := message.NewPrinter(language.English)
	lines := []string{"RBZ Rates have been successfully scraped and stored.\n"}

	lines = append(lines,
		"Exchange Rates:",
		"  Date: "+domain.FormatDay(exchange.RateDate),
		"  USD/ZWG Bid: "+formatRate(exchange.Bid),
		"  USD/ZWG Ask: "+formatRate(exchange.Ask),
		"  USD/ZWG Avg: "+formatRate(exchange.Mid),
		"",
	)

	if gold != nil {
		lines = append(lines, "Gold Coin Prices (1oz):", "  Date: "+domain.FormatDay(gold.RateDate))
		if gold.USD != nil {
			lines = append(lines, pr.Sprintf("  USD: $%.2f", *gold.USD))
		}
		if gold.ZWG != nil {
			lines = append(lines, pr.Sprintf("  ZWG: %.2f", *gold.ZWG))
		}
		if gold.ZAR != nil {
			lines = append(lines, pr.Sprintf("  ZAR: R%.2f", *gold.ZAR))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "\nScraped at: "+now.Format("2006-01-02 15:04:05"))
	return strings.Join(lines, "\n")
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
