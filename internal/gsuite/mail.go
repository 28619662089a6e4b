package gsuite

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// MailSender implements grooming.MailSender by sending through the user's
// connected Gmail account.
type MailSender struct {
	accounts *Accounts
}

// NewMailSender creates a new Gmail-backed mail sender
func NewMailSender(accounts *Accounts) *MailSender {
	return &MailSender{accounts: accounts}
}

// Send delivers one HTML email from the user's Gmail account. A user with
// no connected account surfaces grooming.ErrNoCredential.
func (s *MailSender) Send(ctx context.Context, userID, to, subject, htmlBody string) error {
	tokenSource, err := s.accounts.TokenSource(ctx, userID, gmail.GmailSendScope)
	if err != nil {
		return err
	}

	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return fmt.Errorf("failed to create gmail service: %w", err)
	}

	var message strings.Builder
	message.WriteString("To: " + to + "\r\n")
	message.WriteString("Subject: " + subject + "\r\n")
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	_, err = service.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(message.String())),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
