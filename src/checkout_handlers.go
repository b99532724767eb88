package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tixgate/src/common"
	"tixgate/src/config"
	"tixgate/src/db"
	"tixgate/src/lib"
	"tixgate/src/lib/gateway"
	"tixgate/src/models"
	"tixgate/src/types"

	"github.com/gin-gonic/gin"
)

func checkoutHandlers(g *gin.RouterGroup, p *pipeline) *gin.RouterGroup {
	g.
		POST("/checkout", func(ctx *gin.Context) {
			var body types.CreateCheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			var selectedDate *time.Time
			if body.SelectedDate != "" {
				parsed, err := time.Parse(config.TIME_PARSE_FORMAT, body.SelectedDate)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid selected_date"})
					return
				}
				selectedDate = &parsed
			}
			var couponCode *string
			if body.CouponCode != "" {
				couponCode = &body.CouponCode
			}
			method := types.PaymentMethod(body.Method)
			if method == "" {
				method = types.METHOD_CHECKOUT
			}
			var event models.Event
			db := db.GetDb()
			if err := db.
				Model(&models.Event{}).
				Where("id = ?", body.EventID).
				First(&event).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			session, err := p.sessions.CreateSession(&common.CreateSessionParams{
				SessionID:    body.SessionID,
				UserID:       userId,
				EventID:      body.EventID,
				PassID:       body.PassID,
				Quantity:     body.Quantity,
				AmountCents:  body.AmountCents,
				Method:       method,
				SelectedDate: selectedDate,
				CouponCode:   couponCode,
			})
			if err != nil {
				log.Printf("Error creating payment session: %s\n", err.Error())
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			order, err := p.gateway.CreateOrder(ctx, &gateway.CreateOrderParams{
				Reference:   session.SessionID,
				Description: event.Title,
				AmountCents: body.AmountCents,
				Quantity:    body.Quantity,
				SuccessURL:  p.cfg.AppHost + "/checkout/success",
				CancelURL:   p.cfg.AppHost + "/checkout/cancel",
				Metadata:    map[string]string{"session_id": session.SessionID},
			})
			if err != nil {
				log.Printf("Error creating gateway order: %s\n", err.Error())
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			md := types.JSONB{"gateway_reference": order.Reference, "gateway": p.gateway.Name()}
			if err := db.
				Model(&models.PaymentSession{}).
				Where("session_id = ?", session.SessionID).
				Update("metadata", &md).
				Error; err != nil {
				log.Printf("Error storing gateway reference for %s: %s\n", session.SessionID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not record gateway order"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"session_id":   session.SessionID,
				"reference":    order.Reference,
				"checkout_url": order.CheckoutURL,
				"meta":         order.Meta,
				"expires_at":   session.ExpiresAt,
			})
		}).
		GET("/checkout/:sessionId", func(ctx *gin.Context) {
			var params types.SessionURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			session, err := p.sessions.GetSession(params.SessionID)
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if session.UserID != userId {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": session})
		}).
		POST("/checkout/:sessionId/reconcile", func(ctx *gin.Context) {
			var params types.SessionURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			session, err := p.sessions.GetSession(params.SessionID)
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			if session.Status.Terminal() {
				ctx.JSON(http.StatusOK, gin.H{"status": session.Status})
				return
			}
			reference := gatewayReference(session)
			if reference == "" {
				ctx.JSON(http.StatusConflict, gin.H{"error": "session has no gateway order"})
				return
			}
			r := common.NewReconciler(p.gateway, p.cfg.ReconcileMaxAttempts, p.cfg.ReconcileDelay)
			result, err := r.Run(ctx, reference)
			if err != nil {
				// A failed poll request says nothing about the payment
				// itself. The session stays pending until the gateway
				// reports a terminal state.
				log.Printf("Reconciliation for [%s] aborted: %s\n", reference, err.Error())
				enqueueReconciliation(p.cfg, session.SessionID, reference)
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			if result.NeedsReconciliation {
				enqueueReconciliation(p.cfg, session.SessionID, reference)
				ctx.JSON(http.StatusAccepted, gin.H{
					"status":               session.Status,
					"attempts":             result.Attempts,
					"needs_reconciliation": true,
				})
				return
			}
			switch result.State {
			case gateway.StateCompleted:
				tickets, err := p.issuer.Issue(ctx, &common.IssueParams{
					PaymentReference: reference,
					EventID:          session.EventID,
					UserID:           session.UserID,
					PassID:           session.PassID,
					Quantity:         session.Quantity,
					AmountTotalCents: session.AmountCents,
					Method:           session.Method,
				})
				if err != nil {
					ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
					return
				}
				if err := p.sessions.UpdateStatus(session.SessionID, types.SESSION_COMPLETED); err != nil {
					log.Printf("Error updating session %s: %s\n", session.SessionID, err.Error())
				}
				ctx.JSON(http.StatusOK, gin.H{"status": types.SESSION_COMPLETED, "tickets": tickets})
			case gateway.StateFailed:
				if err := p.sessions.UpdateStatus(session.SessionID, types.SESSION_FAILED); err != nil {
					log.Printf("Error updating session %s: %s\n", session.SessionID, err.Error())
				}
				ctx.JSON(http.StatusOK, gin.H{"status": types.SESSION_FAILED})
			}
		})
	return g
}

func gatewayReference(session *models.PaymentSession) string {
	if session.Metadata == nil {
		return ""
	}
	ref, _ := (*session.Metadata)["gateway_reference"].(string)
	return ref
}

func enqueueReconciliation(cfg *config.Config, sessionID, reference string) {
	if cfg.ReconcileQueue == "" {
		return
	}
	body, err := json.Marshal(map[string]string{
		"session_id": sessionID,
		"reference":  reference,
	})
	if err != nil {
		return
	}
	go func() {
		if err := lib.SQSProduceMessage(cfg.ReconcileQueue, string(body)); err != nil {
			log.Printf("Error queueing reconciliation for %s: %s\n", sessionID, err.Error())
		}
	}()
}

