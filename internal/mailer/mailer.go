// Package mailer sends the transactional and report mails the site
// produces. With mail disabled in config, sends are logged and
// dropped so the calling flows behave identically in development.
package mailer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"

	"github.com/halewell/halewell/internal/config"
	"github.com/halewell/halewell/internal/gen"
	"github.com/halewell/halewell/internal/observability"
	"github.com/halewell/halewell/internal/store"
)

// Mailer delivers mail over SMTP. It satisfies blog.Notifier.
type Mailer struct {
	cfg config.MailConfig
	log zerolog.Logger

	// send is swappable for tests.
	send func(msg *gomail.Message) error
}

func New(cfg config.MailConfig, log zerolog.Logger) *Mailer {
	m := &Mailer{
		cfg: cfg,
		log: log.With().Str("component", "mailer").Logger(),
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	m.send = func(msg *gomail.Message) error { return dialer.DialAndSend(msg) }
	return m
}

// deliver builds and sends one message. Disabled mail logs the
// subject and succeeds.
func (m *Mailer) deliver(kind, to, subject, body string) error {
	if !m.cfg.Enabled {
		m.log.Info().Str("kind", kind).Str("to", to).Str("subject", subject).
			Msg("mail disabled, dropping message")
		observability.RecordMail(kind, true)
		return nil
	}
	if strings.TrimSpace(to) == "" {
		observability.RecordMail(kind, false)
		return fmt.Errorf("mailer: %s: no recipient configured", kind)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.send(msg); err != nil {
		observability.RecordMail(kind, false)
		return fmt.Errorf("mailer: %s: %w", kind, err)
	}
	m.log.Debug().Str("kind", kind).Str("to", to).Msg("mail sent")
	observability.RecordMail(kind, true)
	return nil
}

// ContactReceived relays a stored contact submission to the admin
// address.
func (m *Mailer) ContactReceived(msg store.ContactMessage) error {
	body := fmt.Sprintf("New contact message\n\nFrom: %s <%s>\nSubject: %s\n\n%s\n",
		msg.Name, msg.Email, msg.Subject, msg.Body)
	return m.deliver("contact", m.cfg.AdminTo, "Contact form: "+msg.Subject, body)
}

// SubscriberJoined welcomes a new or reactivated newsletter
// subscriber.
func (m *Mailer) SubscriberJoined(email string) error {
	body := "Thanks for subscribing to the Halewell newsletter.\n\n" +
		"You'll get our latest wellness guides as they publish. " +
		"You can unsubscribe at any time from any issue.\n"
	return m.deliver("welcome", email, "Welcome to Halewell", body)
}

// RunReport mails the outcome of a generation batch to the admin.
func (m *Mailer) RunReport(summary gen.RunSummary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Content generation run %s\n\n",
		summary.FinishedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Requested: %d\nCreated: %d\nDuplicates skipped: %d\nFailed: %d\n\n",
		summary.Requested, summary.Created, summary.Duplicates, summary.Failed)
	for _, r := range summary.Results {
		fmt.Fprintf(&b, "- [%s] %s (%s)", r.Outcome, r.Selection.Topic, r.Selection.Category)
		if r.Slug != "" {
			fmt.Fprintf(&b, " -> %s", r.Slug)
		}
		if r.Reason != "" {
			fmt.Fprintf(&b, ": %s", r.Reason)
		}
		b.WriteString("\n")
	}

	subject := fmt.Sprintf("Generation run: %d created, %d skipped, %d failed",
		summary.Created, summary.Duplicates, summary.Failed)
	return m.deliver("run_report", m.cfg.AdminTo, subject, b.String())
}

// DiversityReport mails the weekly content diversity analysis.
func (m *Mailer) DiversityReport(report gen.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Content diversity, last %d days\n\n", report.PeriodDays)
	fmt.Fprintf(&b, "Pieces generated: %d\n", report.TotalContent)
	fmt.Fprintf(&b, "Diversity score: %.2f (category %.2f, topic %.2f)\n",
		report.Metrics.Overall, report.Metrics.CategoryDiversity, report.Metrics.TopicDiversity)
	fmt.Fprintf(&b, "Categories used: %d of %d\n\n",
		report.Metrics.CategoriesUsed, report.Metrics.TotalCategories)

	if len(report.CategoryUsage) > 0 {
		b.WriteString("Usage by category:\n")
		for _, name := range sortedKeys(report.CategoryUsage) {
			fmt.Fprintf(&b, "  %-20s %d\n", name, report.CategoryUsage[name])
		}
		b.WriteString("\n")
	}
	if len(report.TopKeywords) > 0 {
		b.WriteString("Top keywords: ")
		for i, kw := range report.TopKeywords {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s (%d)", kw.Keyword, kw.Count)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Suggested next category: %s\n", report.SuggestedCategory)
	if len(report.LeastUsed) > 0 {
		fmt.Fprintf(&b, "Least used: %s\n", strings.Join(report.LeastUsed, ", "))
	}

	subject := fmt.Sprintf("Weekly diversity report: score %.2f", report.Metrics.Overall)
	return m.deliver("diversity_report", m.cfg.AdminTo, subject, b.String())
}

// Failure notifies the admin that a scheduled job errored.
func (m *Mailer) Failure(job string, err error) error {
	body := fmt.Sprintf("Scheduled job %q failed at %s:\n\n%v\n",
		job, time.Now().Format(time.RFC3339), err)
	return m.deliver("failure", m.cfg.AdminTo, "Job failed: "+job, body)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
