package services

import (
	"fmt"
	"net/smtp"
	"os"
	"time"
)

type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

func NewEmailService() *EmailService {
	return &EmailService{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		user:     os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASS"),
		from:     os.Getenv("EMAIL_FROM"),
	}
}

func (s *EmailService) SendEmail(to []string, subject, body string) error {
	if s.host == "" || s.port == "" || s.user == "" || s.password == "" {
		return fmt.Errorf("SMTP credentials not fully configured")
	}

	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	message := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", to[0], subject, body))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	err := smtp.SendMail(addr, auth, s.from, to, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendReceipt emails a tenant after a rent charge settles.
func (s *EmailService) SendReceipt(to, tenantName string, amount float64, dueDate time.Time) error {
	subject := fmt.Sprintf("Rent payment received for %s", dueDate.Format("January 2006"))
	body := fmt.Sprintf(
		"Hi %s,\n\nWe received your rent payment of $%.2f for the cycle due %s.\n\nThank you!",
		tenantName, amount, dueDate.Format("January 2, 2006"))
	return s.SendEmail([]string{to}, subject, body)
}

// SendPaymentReminder emails a tenant about an upcoming or overdue charge.
func (s *EmailService) SendPaymentReminder(to, tenantName string, amount float64, dueDate time.Time, payURL string) error {
	subject := fmt.Sprintf("Rent of $%.2f due %s", amount, dueDate.Format("January 2"))
	body := fmt.Sprintf(
		"Hi %s,\n\nYour rent payment of $%.2f is due on %s.\n\nPay online: %s\n",
		tenantName, amount, dueDate.Format("January 2, 2006"), payURL)
	return s.SendEmail([]string{to}, subject, body)
}
