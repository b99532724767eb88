package main

import (
	"io"
	"log"
	"net/http"

	"tixgate/src/common"
	"tixgate/src/lib/gateway"
	"tixgate/src/types"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

// paymentWebhookRoute receives confirmations from the gateway. The raw body
// is authenticated before anything else happens; a bad signature leaves no
// trace in the database.
func paymentWebhookRoute(g *gin.Engine, p *pipeline) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/payment", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		signature := ctx.GetHeader(gateway.SignatureHeader)
		if err := gateway.VerifySignature(p.cfg.WebhookSecret, payload, signature); err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.JSON(types.ErrorStatus(err), gin.H{"error": "invalid signature"})
			return
		}
		body := string(payload)
		if !gjson.Valid(body) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		reference := gjson.Get(body, "paymentReference").String()
		eventId := gjson.Get(body, "eventId").Uint()
		userId := gjson.Get(body, "userId").Uint()
		quantity := gjson.Get(body, "quantity").Uint()
		amount := gjson.Get(body, "amount").Int()
		var passId *uint
		if pid := gjson.Get(body, "passId"); pid.Exists() {
			v := uint(pid.Uint())
			passId = &v
		}
		tickets, err := p.issuer.Issue(ctx, &common.IssueParams{
			PaymentReference: reference,
			EventID:          uint(eventId),
			UserID:           uint(userId),
			PassID:           passId,
			Quantity:         uint(quantity),
			AmountTotalCents: amount,
			Method:           types.METHOD_CHECKOUT,
		})
		if err != nil {
			log.Printf("[webhook] Issuance for [%s] failed: %s\n", reference, err.Error())
			ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		if sessionId := gjson.Get(body, "sessionId").String(); sessionId != "" {
			if err := p.sessions.UpdateStatus(sessionId, types.SESSION_COMPLETED); err != nil {
				log.Printf("[webhook] Could not update session %s: %s\n", sessionId, err.Error())
			}
		}
		ctx.JSON(http.StatusOK, gin.H{"tickets": len(tickets)})
	})
	return apiv1
}
