package common

import (
	"context"
	"log"
	"os"

	"tixgate/src/config"
	"tixgate/src/lib"
	awslib "tixgate/src/lib/aws"
	"tixgate/src/lib/gateway"
	"tixgate/src/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/tidwall/gjson"
)

// PendingReconciliationsConsumer drains the retry queue fed by poll loops
// that exhausted their attempt budget. Each message gets one more bounded
// reconciliation pass; still undecided orders go back to the queue through
// SQS redelivery.
func PendingReconciliationsConsumer(cfg *config.Config, gw gateway.Client, store *SessionStore, issuer *Issuer) {
	qname := cfg.ReconcileQueue
	c := awslib.NewSQSConsumer(qname, func(body string) {
		if !gjson.Valid(body) {
			log.Printf("[%s]: Received invalid json body. Aborting", qname)
			return
		}
		sessionID := gjson.Get(body, "session_id").String()
		reference := gjson.Get(body, "reference").String()
		if sessionID == "" || reference == "" {
			log.Printf("[%s]: Message is missing session_id or reference. Aborting", qname)
			return
		}
		session, err := store.GetSession(sessionID)
		if err != nil {
			log.Printf("[%s]: Could not load session %s: %s\n", qname, sessionID, err.Error())
			return
		}
		if session.Status.Terminal() {
			return
		}
		r := NewReconciler(gw, cfg.ReconcileMaxAttempts, cfg.ReconcileDelay)
		result, err := r.Run(context.Background(), reference)
		if err != nil {
			// The poll request failed, not the payment. Leave the session
			// pending; redelivery gets another look once the gateway is
			// reachable again.
			log.Printf("[%s]: Reconciliation for %s aborted: %s\n", qname, reference, err.Error())
			return
		}
		if result.NeedsReconciliation {
			log.Printf("[%s]: Order %s still pending after %d attempts\n", qname, reference, result.Attempts)
			return
		}
		switch result.State {
		case gateway.StateCompleted:
			if _, err := issuer.Issue(context.Background(), &IssueParams{
				PaymentReference: reference,
				EventID:          session.EventID,
				UserID:           session.UserID,
				PassID:           session.PassID,
				Quantity:         session.Quantity,
				AmountTotalCents: session.AmountCents,
				Method:           session.Method,
			}); err != nil {
				log.Printf("[%s]: Issuance for %s failed: %s\n", qname, reference, err.Error())
				return
			}
			if err := store.UpdateStatus(sessionID, types.SESSION_COMPLETED); err != nil {
				log.Printf("[%s]: Could not update session %s: %s\n", qname, sessionID, err.Error())
			}
		case gateway.StateFailed:
			if err := store.UpdateStatus(sessionID, types.SESSION_FAILED); err != nil {
				log.Printf("[%s]: Could not update session %s: %s\n", qname, sessionID, err.Error())
			}
		}
	})
	c.Listen()
}

// MailerConsumer moves queued emails to their transport: SMTP when running
// locally off the Kafka topic, SES off SQS everywhere else.
func MailerConsumer(cfg *config.Config) {
	handler := func(body string) {
		if !gjson.Valid(body) {
			log.Println("[mailer]: Received invalid json body. Aborting")
			return
		}
		to := []string{}
		for _, r := range gjson.Get(body, "to").Array() {
			to = append(to, r.String())
		}
		if len(to) == 0 {
			log.Println("[mailer]: Message has no recipients. Aborting")
			return
		}
		subject := gjson.Get(body, "subject").String()
		mailBody := gjson.Get(body, "body").String()
		from := gjson.Get(body, "from").String()
		if os.Getenv("API_ENV") == "local" {
			if err := lib.SendMail(&lib.SendMailInput{
				From:     from,
				FromName: gjson.Get(body, "from-name").String(),
				To:       to,
				Subject:  subject,
				Body:     mailBody,
				Html:     gjson.Get(body, "html").Bool(),
			}); err != nil {
				log.Printf("[mailer]: Error sending mail: %s\n", err.Error())
			}
			return
		}
		awslib.SESSendMessage(aws.String(from), &sestypes.Destination{
			ToAddresses: to,
		}, &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Html: &sestypes.Content{Data: aws.String(mailBody)},
			},
		})
	}
	if os.Getenv("API_ENV") == "local" {
		lib.KafkaConsume("mailer", cfg.EmailQueue, handler)
		return
	}
	c := awslib.NewSQSConsumer(cfg.EmailQueue, handler)
	c.Listen()
}
