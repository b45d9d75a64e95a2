package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// Message is a fetched mail with its full RFC822 bytes.
type Message struct {
	UID     imap.UID
	From    string
	Subject string
	Date    time.Time
	Raw     []byte
}

func tlsConfig(host string) *tls.Config {
	return &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host}
}

// dialAndLogin connects over TLS and logs in. The connection is closed when ctx ends.
func dialAndLogin(ctx context.Context, addr, host, username, password string) (*imapclient.Client, error) {
	if username == "" || password == "" {
		return nil, errors.New("imap username/password is required")
	}
	c, err := imapclient.DialTLS(addr, &imapclient.Options{TLSConfig: tlsConfig(host)})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls %s: %w", addr, err)
	}
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()
	if err := c.Login(username, password).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return c, nil
}

// fetchUnseen returns up to max unseen messages received since the cutoff,
// newest first. BODY.PEEK[] keeps them unseen until markSeen.
func fetchUnseen(ctx context.Context, c *imapclient.Client, since time.Time, max int) ([]Message, error) {
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   since,
	}
	data, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search: %w", err)
	}
	uids := data.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if max > 0 && len(uids) > max {
		uids = uids[:max]
	}

	body := &imap.FetchItemBodySection{Specifier: imap.PartSpecifierNone, Peek: true}
	cmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{body},
	})
	defer func() { _ = cmd.Close() }()

	out := make([]Message, 0, len(uids))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		md := cmd.Next()
		if md == nil {
			break
		}
		buf, err := md.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch: %w", err)
		}

		m := Message{UID: buf.UID}
		if env := buf.Envelope; env != nil {
			m.Subject = env.Subject
			m.Date = env.Date
			m.From = joinAddrs(env.From)
		}
		if b := buf.FindBodySection(body); b != nil {
			m.Raw = append([]byte(nil), b...)
		}
		if m.Date.IsZero() && len(m.Raw) > 0 {
			m.Date = headerDate(m.Raw)
		}
		out = append(out, m)
	}
	if err := cmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

// markSeen flags processed alerts so the next poll skips them.
func markSeen(c *imapclient.Client, uids []imap.UID) error {
	if len(uids) == 0 {
		return nil
	}
	cmd := c.Store(imap.UIDSetNum(uids...), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("imap store seen: %w", err)
	}
	return nil
}

func logoutAndClose(c *imapclient.Client) {
	if c == nil {
		return
	}
	if err := c.Logout().Wait(); err != nil {
		log.Printf("[email] logout err=%v", err)
	}
	_ = c.Close()
}

func joinAddrs(addrs []imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for i := range addrs {
		a := strings.TrimSpace(addrs[i].Addr())
		if a == "" {
			a = strings.TrimSpace(addrs[i].Name)
		}
		if a != "" {
			parts = append(parts, a)
		}
	}
	return strings.Join(parts, ", ")
}

func headerDate(raw []byte) time.Time {
	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		return time.Time{}
	}
	t, err := mail.ParseDate(msg.Header.Get("Date"))
	if err != nil {
		return time.Time{}
	}
	return t
}
