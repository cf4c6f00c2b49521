package mailer

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

// Mailer отправляет одноразовые коды через внешний SMTP-шлюз.
// Доставка best-effort: ошибка отправки не трогает уже сохранённый код.
type Mailer struct {
	dialer  *gomail.Dialer
	from    string
	timeout time.Duration
}

func New(host string, port int, username, password, from string, timeout time.Duration) *Mailer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Mailer{
		dialer:  gomail.NewDialer(host, port, username, password),
		from:    from,
		timeout: timeout,
	}
}

// SendOTP — письмо с кодом. Вызов ограничен таймаутом; вызывающий код
// не должен держать блокировок хранилища на время отправки.
func (m *Mailer) SendOTP(email, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Your OTP Verification Code")
	msg.SetBody("text/html", fmt.Sprintf(
		"<h2>Your OTP Code</h2>"+
			"<p>Your verification code is <strong>%s</strong>.</p>"+
			"<p>This OTP is valid for <strong>5 minutes</strong>.</p>", code))

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		return err
	case <-time.After(m.timeout):
		return fmt.Errorf("smtp send to %s timed out after %s", email, m.timeout)
	}
}
