package email

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// Service sends transactional mail over plain SMTP. All settings come from
// the environment so the binary works without a mail server in development
// (sends just fail and get logged).
type Service struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewService() *Service {
	return &Service{
		host: os.Getenv("SMTP_HOST"),
		port: os.Getenv("SMTP_PORT"),
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: os.Getenv("SMTP_FROM"),
	}
}

func (s *Service) send(to, subject, body string) error {
	if s.host == "" {
		return fmt.Errorf("SMTP_HOST not configured")
	}
	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := s.host + ":" + s.port
	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	return smtp.SendMail(addr, auth, s.from, []string{to}, msg)
}

// SendVerification mails the address-confirmation link for a new account.
func (s *Service) SendVerification(to, name, token string) error {
	domain := os.Getenv("DOMAIN")
	link := fmt.Sprintf("%s/api/auth/confirm/%s", domain, token)

	subject := "【ぎかいウォッチ】メールアドレスの確認"
	body := name + " 様\r\n\r\n" +
		"ご登録ありがとうございます。\r\n" +
		"以下のリンクをクリックしてメールアドレスを確認してください。\r\n\r\n" +
		link + "\r\n\r\n" +
		"このメールに心当たりがない場合は破棄してください。\r\n"

	err := s.send(to, subject, body)
	if err != nil {
		log.Printf("Error sending verification email to %s: %v", to, err)
	}
	return err
}
