package ingest

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"jobradar-engine/internal/config"
)

const maxAlertMessages = 50

// MailSource pulls job-alert emails from an IMAP mailbox and turns the job
// cards in their HTML bodies into raw payload items for the normalizer.
type MailSource struct {
	cfg      config.Email
	password string
}

func NewMailSource(cfg config.Email, password string) *MailSource {
	return &MailSource{cfg: cfg, password: password}
}

func (s *MailSource) Name() string        { return "email" }
func (s *MailSource) DisplayName() string { return "Job alert mailbox" }
func (s *MailSource) BaseURL() string {
	return fmt.Sprintf("imaps://%s:%d", s.cfg.IMAPHost, s.cfg.IMAPPort)
}

func (s *MailSource) Fetch(ctx context.Context) ([]map[string]any, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.IMAPHost, s.cfg.IMAPPort)

	c, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: s.cfg.IMAPHost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}
	defer func() { _ = c.Close() }()

	// Best-effort close on context cancel so a hung server can't outlive
	// the per-source timeout.
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(s.cfg.Username, s.password).Wait(); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}
	defer func() { _ = c.Logout().Wait() }()

	if _, err := c.Select(s.cfg.Mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %s: %w", s.cfg.Mailbox, err)
	}

	cutoff := time.Now().AddDate(0, 0, -s.cfg.MaxDaysOld)
	searchData, err := c.UIDSearch(&imap.SearchCriteria{Since: cutoff}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	// newest first
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if len(uids) > maxAlertMessages {
		uids = uids[:maxAlertMessages]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	var out []map[string]any
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		subject := ""
		if buf.Envelope != nil {
			subject = buf.Envelope.Subject
		}
		if !s.subjectMatches(subject) {
			continue
		}

		body := buf.FindBodySection(bodyAll)
		if len(body) == 0 {
			continue
		}
		html, err := htmlPart(body)
		if err != nil || html == "" {
			continue
		}
		out = append(out, extractAlertItems(html)...)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

func (s *MailSource) subjectMatches(subject string) bool {
	if len(s.cfg.SearchSubjectAny) == 0 {
		return true
	}
	low := strings.ToLower(subject)
	for _, want := range s.cfg.SearchSubjectAny {
		if strings.Contains(low, strings.ToLower(want)) {
			return true
		}
	}
	return false
}

// htmlPart extracts the HTML body from a raw RFC822 message. Alert emails
// are HTML; plain-text-only messages are skipped.
func htmlPart(raw []byte) (string, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(msg.Body)
	if err != nil {
		return "", err
	}
	body := string(b)

	if strings.Contains(strings.ToLower(msg.Header.Get("Content-Type")), "text/html") {
		return body, nil
	}
	// multipart: take the chunk that looks like HTML
	if i := strings.Index(strings.ToLower(body), "<html"); i >= 0 {
		return body[i:], nil
	}
	if strings.Contains(body, "<a ") {
		return body, nil
	}
	return "", nil
}
