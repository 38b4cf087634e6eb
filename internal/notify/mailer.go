// Package notify sends guest and staff emails through SMTP from a small
// background worker pool, so request handlers never wait on the mail relay.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iliyamo/pousada-reservation/internal/config"
)

// Mail is one message with an HTML body and a plain text fallback.
type Mail struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a Mail.
type Sender interface {
	Send(ctx context.Context, m Mail) error
}

// Mailer is an SMTP Sender. Without SMTP_HOST and SMTP_FROM it only logs
// what it would have sent.
type Mailer struct {
	cfg config.MailConfig
	log *zap.Logger
}

func NewMailer(cfg config.MailConfig, log *zap.Logger) *Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mailer{cfg: cfg, log: log}
}

// Send delivers m over SMTP. SMTP_SECURE selects implicit TLS (port 465);
// otherwise STARTTLS is used when the server offers it.
func (s *Mailer) Send(ctx context.Context, m Mail) error {
	if !s.cfg.Enabled() {
		s.log.Info("[EMAIL] Would send", zap.Strings("to", m.To), zap.String("subject", m.Subject))
		return nil
	}
	if len(m.To) == 0 {
		return errors.New("mail without recipients")
	}

	from, err := mail.ParseAddress(s.cfg.From)
	if err != nil {
		return errors.Wrap(err, "parse SMTP_FROM")
	}
	raw, err := buildMessage(s.cfg.From, m, "pousada-"+uuid.NewString(), time.Now())
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrap(err, "dial smtp")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
	if s.cfg.Secure {
		conn = tls.Client(conn, tlsCfg)
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "smtp handshake")
	}
	defer c.Close()

	if !s.cfg.Secure {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsCfg); err != nil {
				return errors.Wrap(err, "starttls")
			}
		}
	}
	if s.cfg.User != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)); err != nil {
				return errors.Wrap(err, "smtp auth")
			}
		}
	}
	if err := c.Mail(from.Address); err != nil {
		return errors.Wrap(err, "smtp MAIL FROM")
	}
	for _, to := range m.To {
		if err := c.Rcpt(to); err != nil {
			return errors.Wrapf(err, "smtp RCPT TO %s", to)
		}
	}
	w, err := c.Data()
	if err != nil {
		return errors.Wrap(err, "smtp DATA")
	}
	if _, err := w.Write(raw); err != nil {
		return errors.Wrap(err, "write message")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "finish message")
	}
	return c.Quit()
}

// buildMessage renders a multipart/alternative message with quoted-printable
// text and HTML parts.
func buildMessage(from string, m Mail, boundary string, now time.Time) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary)

	parts := []struct{ ctype, body string }{
		{"text/plain", m.Text},
		{"text/html", m.HTML},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: %s; charset=UTF-8\r\n", p.ctype)
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		qp := quotedprintable.NewWriter(&b)
		if _, err := qp.Write([]byte(p.body)); err != nil {
			return nil, errors.Wrap(err, "encode body")
		}
		if err := qp.Close(); err != nil {
			return nil, errors.Wrap(err, "encode body")
		}
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes(), nil
}
