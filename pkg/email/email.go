package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/Bekarys04/CollabTask_Manager/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Sender sends plain text email over SMTP. Deliveries go through a
// circuit breaker so a misbehaving mail server fails fast instead of
// stalling registration and reset requests.
type Sender struct {
	host     string
	port     string
	from     string
	password string
	breaker  *gobreaker.CircuitBreaker
}

// NewSender builds a Sender from config.
func NewSender(cfg *config.Config) *Sender {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logrus.Infof("Circuit breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	return &Sender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPSender,
		password: cfg.SMTPPassword,
		breaker:  breaker,
	}
}

// Send sends a plain text email using SMTP.
func (s *Sender) Send(to, subject, body string) error {
	msg := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	_, err := s.breaker.Execute(func() (interface{}, error) {
		auth := smtp.PlainAuth("", s.from, s.password, s.host)
		address := s.host + ":" + s.port
		return nil, smtp.SendMail(address, auth, s.from, []string{to}, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}
