package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/pousada-reservation/internal/model"
)

// Inn holds the contact details printed in every email. Values come from
// pousada_settings.
type Inn struct {
	Name     string
	Email    string
	Phone    string
	WhatsApp string
}

var defaultInn = Inn{
	Name:     "Recanto MD Olavio",
	Email:    "recantomdolavio@gmail.com",
	Phone:    "21 971864896",
	WhatsApp: "(21) 971864896",
}

func innFromSettings(values map[string]string) Inn {
	inn := defaultInn
	if v := values["pousada_name"]; v != "" {
		inn.Name = v
	}
	if v := values["contact_email"]; v != "" {
		inn.Email = v
	}
	if v := values["contact_phone"]; v != "" {
		inn.Phone = v
		inn.WhatsApp = v
	}
	return inn
}

var statusText = map[string]string{
	model.StatusConfirmed: "confirmada",
	model.StatusCancelled: "cancelada",
	model.StatusPending:   "pendente",
	model.StatusCompleted: "concluída",
}

var statusEmoji = map[string]string{
	model.StatusConfirmed: "✅",
	model.StatusCancelled: "❌",
	model.StatusPending:   "⏳",
	model.StatusCompleted: "🏁",
}

var funcs = template.FuncMap{
	"date":  func(t time.Time) string { return t.Format("02/01/2006") },
	"money": func(v float64) string { return fmt.Sprintf("R$ %.2f", v) },
	"upper": strings.ToUpper,
}

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(funcs).Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #8B4513;">🏨 Obrigado por escolher o {{.Inn.Name}}!</h2>
  <p>Sua reserva foi recebida e está sendo processada.</p>
  <div style="background-color: #f5f5f5; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #8B4513; margin-top: 0;">📋 Detalhes da Reserva:</h3>
    <ul style="list-style: none; padding: 0;">
      <li><strong>🆔 Número da Reserva:</strong> {{.R.ID}}</li>
      <li><strong>👤 Hóspede:</strong> {{.R.GuestName}}</li>
      <li><strong>🏠 Acomodação:</strong> {{.R.RoomName}}</li>
      <li><strong>📅 Check-in:</strong> {{date .R.CheckIn}}</li>
      <li><strong>📅 Check-out:</strong> {{date .R.CheckOut}}</li>
      <li><strong>🌙 Noites:</strong> {{.R.Nights}}</li>
      <li><strong>👥 Hóspedes:</strong> {{.R.Guests}}</li>
      <li><strong>💰 Total:</strong> {{money .R.TotalPrice}}</li>
    </ul>
  </div>
  <p><strong>🔔 Próximos passos:</strong></p>
  <p>Em breve entraremos em contato através do WhatsApp <strong>{{.Inn.WhatsApp}}</strong> para confirmar sua reserva e fornecer mais detalhes.</p>
  <p style="color: #666; font-size: 12px; margin-top: 30px;">Este é um e-mail automático. Guarde este número da reserva para referência futura.</p>
</div>`))

var statusTmpl = template.Must(template.New("status").Funcs(funcs).Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #8B4513;">{{.Emoji}} Atualização da sua Reserva</h2>
  <p>Sua reserva <strong>#{{.R.ID}}</strong> foi <strong>{{.Text}}</strong>.</p>
  <div style="background-color: #f5f5f5; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #8B4513; margin-top: 0;">📋 Detalhes:</h3>
    <ul style="list-style: none; padding: 0;">
      <li><strong>🏠 Acomodação:</strong> {{.R.RoomName}}</li>
      <li><strong>📅 Check-in:</strong> {{date .R.CheckIn}}</li>
      <li><strong>📅 Check-out:</strong> {{date .R.CheckOut}}</li>
      <li><strong>📱 Status:</strong> {{upper .Text}}</li>
    </ul>
  </div>
  {{- if eq .R.Status "confirmed"}}
  <p><strong>🎉 Sua reserva está confirmada!</strong><br/>Aguardamos você no {{.Inn.Name}}!</p>
  {{- else if eq .R.Status "cancelled"}}
  <p>Sua reserva foi cancelada. Se tiver dúvidas, entre em contato conosco.</p>
  {{- else}}
  <p>Sua reserva está em análise. Em breve confirmaremos os detalhes.</p>
  {{- end}}
  <p style="color: #666; font-size: 12px; margin-top: 30px;">WhatsApp: {{.Inn.Phone}} | Email: {{.Inn.Email}}</p>
</div>`))

var contactTmpl = template.Must(template.New("contact").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #8B4513;">✉️ Nova mensagem pelo site</h2>
  <ul style="list-style: none; padding: 0;">
    <li><strong>De:</strong> {{.M.Sender}} &lt;{{.M.Email}}&gt;</li>
    <li><strong>Assunto:</strong> {{.M.Subject}}</li>
  </ul>
  <p style="white-space: pre-wrap;">{{.M.Content}}</p>
</div>`))

func confirmationMail(inn Inn, r model.Reservation) (Mail, error) {
	html, err := render(confirmationTmpl, struct {
		Inn Inn
		R   model.Reservation
	}{inn, r})
	if err != nil {
		return Mail{}, err
	}
	text := fmt.Sprintf("Obrigado por escolher o %s!\n\nReserva: %s\nHóspede: %s\nAcomodação: %s\nCheck-in: %s\nCheck-out: %s\nNoites: %d\nHóspedes: %d\nTotal: R$ %.2f\n\nEm breve entraremos em contato pelo WhatsApp %s.\n",
		inn.Name, r.ID, r.GuestName, r.RoomName, r.CheckIn.Format("02/01/2006"), r.CheckOut.Format("02/01/2006"), r.Nights(), r.Guests, r.TotalPrice, inn.WhatsApp)
	return Mail{
		To:      []string{r.ContactEmail},
		Subject: fmt.Sprintf("✅ Confirmação de Reserva #%s - %s", r.ID, inn.Name),
		HTML:    html,
		Text:    text,
	}, nil
}

func statusMail(inn Inn, r model.Reservation) (Mail, error) {
	txt, ok := statusText[r.Status]
	if !ok {
		txt = r.Status
	}
	emoji := statusEmoji[r.Status]
	html, err := render(statusTmpl, struct {
		Inn   Inn
		R     model.Reservation
		Text  string
		Emoji string
	}{inn, r, txt, emoji})
	if err != nil {
		return Mail{}, err
	}
	return Mail{
		To:      []string{r.ContactEmail},
		Subject: strings.TrimSpace(fmt.Sprintf("%s Reserva %s #%s - %s", emoji, txt, r.ID, inn.Name)),
		HTML:    html,
		Text:    fmt.Sprintf("Sua reserva #%s foi %s.\n\nWhatsApp: %s | Email: %s\n", r.ID, txt, inn.Phone, inn.Email),
	}, nil
}

func contactMail(to string, m model.ContactMessage) (Mail, error) {
	html, err := render(contactTmpl, struct{ M model.ContactMessage }{m})
	if err != nil {
		return Mail{}, err
	}
	return Mail{
		To:      []string{to},
		Subject: "Nova mensagem: " + m.Subject,
		HTML:    html,
		Text:    fmt.Sprintf("De: %s <%s>\nAssunto: %s\n\n%s\n", m.Sender, m.Email, m.Subject, m.Content),
	}, nil
}

func render(t *template.Template, data any) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", errors.Wrapf(err, "render %s", t.Name())
	}
	return b.String(), nil
}
