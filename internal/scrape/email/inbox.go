// Package email reads LinkedIn job-alert mails from an IMAP mailbox.
package email

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

type Settings struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Mailbox    string
	SubjectAny []string
	Since      time.Time
	Max        int
}

// Alert is one processed mail and the listing cards found in it. Jobs may be
// empty; the mail is still marked seen.
type Alert struct {
	UID      imap.UID
	Subject  string
	From     string
	Received time.Time
	Jobs     []AlertJob
}

// Inbox is the mailbox side of the email source.
type Inbox interface {
	Alerts(ctx context.Context) ([]Alert, error)
	MarkSeen(ctx context.Context, uids []imap.UID) error
	Close() error
}

type IMAPInbox struct {
	c *imapclient.Client
	s Settings
}

// Open logs in and selects the mailbox. The connection lives until Close or
// until ctx is done.
func Open(ctx context.Context, s Settings) (*IMAPInbox, error) {
	if strings.TrimSpace(s.Host) == "" {
		return nil, fmt.Errorf("imap host is required")
	}
	port := s.Port
	if port == 0 {
		port = 993
	}
	if s.Mailbox == "" {
		s.Mailbox = "INBOX"
	}
	addr := net.JoinHostPort(s.Host, strconv.Itoa(port))

	c, err := dialAndLogin(ctx, addr, s.Host, s.Username, s.Password)
	if err != nil {
		return nil, err
	}
	if _, err := c.Select(s.Mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		logoutAndClose(c)
		return nil, fmt.Errorf("imap select %q: %w", s.Mailbox, err)
	}
	return &IMAPInbox{c: c, s: s}, nil
}

func (b *IMAPInbox) Alerts(ctx context.Context) ([]Alert, error) {
	msgs, err := fetchUnseen(ctx, b.c, b.s.Since, b.s.Max)
	if err != nil {
		return nil, err
	}
	alerts := Alerts(msgs, b.s.SubjectAny)
	log.Printf("[email] mailbox=%s unseen=%d alerts=%d", b.s.Mailbox, len(msgs), len(alerts))
	return alerts, nil
}

func (b *IMAPInbox) MarkSeen(_ context.Context, uids []imap.UID) error {
	return markSeen(b.c, uids)
}

func (b *IMAPInbox) Close() error {
	logoutAndClose(b.c)
	return nil
}

// Alerts keeps messages whose subject contains one of subjectAny (all messages
// when it is empty) and parses the listing cards out of them.
func Alerts(msgs []Message, subjectAny []string) []Alert {
	var out []Alert
	for _, m := range msgs {
		p := parseRFC822(m.Raw)
		subject := p.Subject
		if subject == "" {
			subject = decodeHeader(m.Subject)
		}
		if len(subjectAny) > 0 && !containsAnyFold(subject, subjectAny) {
			continue
		}
		from := m.From
		if from == "" {
			from = p.From
		}

		a := Alert{UID: m.UID, Subject: subject, From: from, Received: m.Date}
		body := p.HTML
		if body == "" {
			body = p.Plain
		}
		if LooksLikeAlert(from, subject, body) {
			jobs, err := ParseLinkedInAlert(body)
			if err != nil {
				log.Printf("[email] parse failed uid=%d subject=%q err=%v", m.UID, subject, err)
			}
			a.Jobs = jobs
		}
		out = append(out, a)
	}
	return out
}

// AgePhrase turns a receive time into the relative phrase the freshness gate
// understands. Unknown times give "" (fresh).
func AgePhrase(received, now time.Time) string {
	if received.IsZero() {
		return ""
	}
	age := now.Sub(received)
	if age < 24*time.Hour {
		h := int(age.Hours())
		if h < 0 {
			h = 0
		}
		return fmt.Sprintf("%d hours ago", h)
	}
	return fmt.Sprintf("%d days ago", int(age.Hours()/24))
}

func containsAnyFold(s string, needles []string) bool {
	ls := strings.ToLower(s)
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(ls, n) {
			return true
		}
	}
	return false
}
