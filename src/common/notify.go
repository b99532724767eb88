package common

import (
	"context"
	"log"
	"os"

	"tixgate/src/db"
	"tixgate/src/lib"
	"tixgate/src/lib/mailer"
	"tixgate/src/models"
)

type Notification struct {
	UserID  uint
	Subject string
	Body    string
}

// Notifier delivers a message on a best effort basis. Implementations must
// not block the caller and must never fail an issuance; a lost notification
// is a log line, not an error.
type Notifier interface {
	Notify(ctx context.Context, n *Notification)
}

type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, n *Notification) {}

// MailNotifier resolves the user's address and hands the message to the
// mailer queue.
type MailNotifier struct{}

func (MailNotifier) Notify(ctx context.Context, n *Notification) {
	go func() {
		var user models.User
		d := db.GetDb()
		if err := d.
			Model(&models.User{}).
			Select("id", "email", "name").
			Where("id = ?", n.UserID).
			First(&user).
			Error; err != nil {
			log.Printf("[notify] Could not resolve user %d: %s\n", n.UserID, err.Error())
			return
		}
		if err := mailer.NewMailerMessage(&lib.SendMailInput{
			From:     os.Getenv("SMTP_FROM"),
			FromName: "noreply",
			To:       []string{user.Email},
			Subject:  n.Subject,
			Body:     n.Body,
			Html:     false,
		}); err != nil {
			log.Printf("[notify] Could not queue mail for user %d: %s\n", n.UserID, err.Error())
		}
	}()
}
