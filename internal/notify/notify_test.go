package notify

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/pousada-reservation/internal/config"
	"github.com/iliyamo/pousada-reservation/internal/model"
)

type captureSender struct {
	mu    sync.Mutex
	mails []Mail
	gate  chan struct{}
}

func (s *captureSender) Send(ctx context.Context, m Mail) error {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mails = append(s.mails, m)
	return nil
}

func (s *captureSender) all() []Mail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Mail(nil), s.mails...)
}

type staticSettings map[string]string

func (s staticSettings) Values(context.Context) (map[string]string, error) { return s, nil }

type failingSettings struct{}

func (failingSettings) Values(context.Context) (map[string]string, error) {
	return nil, errors.New("db down")
}

func sampleReservation() model.Reservation {
	return model.Reservation{
		ID:           "RSV20250042",
		GuestName:    "Maria <b>Silva</b>",
		ContactEmail: "maria@example.com",
		RoomName:     "Suíte Premium",
		CheckIn:      time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:     time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		Guests:       2,
		TotalPrice:   1100,
		Status:       model.StatusPending,
	}
}

func TestNotifier_SendsAndDrains(t *testing.T) {
	sender := &captureSender{}
	n := New(sender, staticSettings{"pousada_name": "Pousada Teste", "contact_phone": "21 90000-0000"}, Options{
		Workers: 2, Queue: 8, NotifyTo: "staff@example.com",
	})

	r := sampleReservation()
	n.ReservationCreated(r)
	r.Status = model.StatusConfirmed
	n.StatusChanged(r)
	n.MessageReceived(model.ContactMessage{Sender: "João", Email: "joao@example.com", Subject: "Pets", Content: "Aceitam pets?"})
	require.NoError(t, n.Close())

	mails := sender.all()
	require.Len(t, mails, 3)

	bySubject := map[string]Mail{}
	for _, m := range mails {
		bySubject[m.Subject] = m
	}
	confirm, ok := bySubject["✅ Confirmação de Reserva #RSV20250042 - Pousada Teste"]
	require.True(t, ok)
	require.Equal(t, []string{"maria@example.com"}, confirm.To)
	require.Contains(t, confirm.HTML, "R$ 1100.00")
	require.Contains(t, confirm.HTML, "10/06/2025")
	require.Contains(t, confirm.HTML, "<strong>🌙 Noites:</strong> 2</li>")
	require.Contains(t, confirm.Text, "Noites: 2\n")
	require.Contains(t, confirm.HTML, "21 90000-0000")
	require.Contains(t, confirm.HTML, "Maria &lt;b&gt;Silva&lt;/b&gt;")

	status, ok := bySubject["✅ Reserva confirmada #RSV20250042 - Pousada Teste"]
	require.True(t, ok)
	require.Contains(t, status.HTML, "Sua reserva está confirmada!")
	require.Contains(t, status.HTML, "CONFIRMADA")

	contact, ok := bySubject["Nova mensagem: Pets"]
	require.True(t, ok)
	require.Equal(t, []string{"staff@example.com"}, contact.To)

	// closed notifier drops instead of panicking
	n.ReservationCreated(r)
	require.Equal(t, int64(1), n.Dropped())
}

func TestNotifier_DropsWhenQueueFull(t *testing.T) {
	sender := &captureSender{gate: make(chan struct{})}
	n := New(sender, nil, Options{Workers: 1, Queue: 1, Timeout: time.Second})

	for i := 0; i < 4; i++ {
		n.ReservationCreated(sampleReservation())
	}
	require.GreaterOrEqual(t, n.Dropped(), int64(2))

	close(sender.gate)
	require.NoError(t, n.Close())
	require.Equal(t, int64(4), int64(len(sender.all()))+n.Dropped())
}

func TestNotifier_SettingsFailureUsesDefaults(t *testing.T) {
	sender := &captureSender{}
	n := New(sender, failingSettings{}, Options{})
	n.ReservationCreated(sampleReservation())
	require.NoError(t, n.Close())

	mails := sender.all()
	require.Len(t, mails, 1)
	require.True(t, strings.HasSuffix(mails[0].Subject, "Recanto MD Olavio"))
}

func TestNotifier_NoStaffAddress(t *testing.T) {
	sender := &captureSender{}
	n := New(sender, nil, Options{})
	n.MessageReceived(model.ContactMessage{Subject: "Oi"})
	require.NoError(t, n.Close())
	require.Empty(t, sender.all())
}

func TestBuildMessage(t *testing.T) {
	raw, err := buildMessage("Pousada <reservas@example.com>", Mail{
		To:      []string{"maria@example.com"},
		Subject: "✅ Confirmação",
		HTML:    "<p>Olá</p>",
		Text:    "Olá",
	}, "b1", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	msg := string(raw)
	require.Contains(t, msg, "From: Pousada <reservas@example.com>\r\n")
	require.Contains(t, msg, "To: maria@example.com\r\n")
	require.Contains(t, msg, "Subject: =?utf-8?q?")
	require.Contains(t, msg, `Content-Type: multipart/alternative; boundary="b1"`)
	require.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8")
	require.Contains(t, msg, "Content-Type: text/html; charset=UTF-8")
	require.Contains(t, msg, "Ol=C3=A1")
	require.True(t, strings.HasSuffix(msg, "--b1--\r\n"))
}

func TestMailer_DisabledOnlyLogs(t *testing.T) {
	m := NewMailer(config.MailConfig{}, nil)
	require.NoError(t, m.Send(context.Background(), Mail{To: []string{"x@example.com"}, Subject: "s"}))
}
