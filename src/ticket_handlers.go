package main

import (
	"errors"
	"log"
	"net/http"

	"tixgate/src/common"
	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"
	"tixgate/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func ticketHandlers(g *gin.RouterGroup, p *pipeline) *gin.RouterGroup {
	g.
		GET("/tickets", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var tickets []models.Ticket
			db := db.GetDb()
			if err := db.
				Model(&models.Ticket{}).
				Where("user_id = ?", userId).
				Order("purchased_at desc").
				Find(&tickets).
				Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tickets})
		}).
		GET("/tickets/:id/code", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			var ticket models.Ticket
			db := db.GetDb()
			if err := db.
				Where("id = ? AND user_id = ?", params.ID, userId).
				First(&ticket).
				Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			if ticket.Status != types.TICKET_VALID {
				ctx.JSON(http.StatusConflict, gin.H{"error": "ticket is not valid"})
				return
			}
			filepath, err := utils.RenderTicketCode(ticket.Serial)
			if err != nil {
				log.Printf("Could not render code for ticket %d: %s\n", ticket.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.File(filepath)
		}).
		POST("/tickets/redeem", func(ctx *gin.Context) {
			if ctx.GetString("role") != "admin" {
				ctx.Status(http.StatusForbidden)
				return
			}
			var body types.RedeemTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			serial, err := utils.DecodeTicketCode(body.Code)
			if err != nil {
				log.Printf("Could not decode ticket code: %s\n", err.Error())
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid ticket code"})
				return
			}
			var ticket models.Ticket
			d := db.GetDb()
			err = d.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Where("serial = ?", *serial).
					First(&ticket).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return &types.NotFoundError{Resource: "ticket", ID: *serial}
					}
					return err
				}
				res := tx.
					Model(&models.Ticket{}).
					Where("id = ? AND status = ?", ticket.ID, types.TICKET_VALID).
					Update("status", types.TICKET_USED)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return &types.ConflictError{Reason: "ticket has already been used or refunded"}
				}
				ticket.Status = types.TICKET_USED
				return nil
			})
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		}).
		POST("/tickets/:id/refund", func(ctx *gin.Context) {
			if ctx.GetString("role") != "admin" {
				ctx.Status(http.StatusForbidden)
				return
			}
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var ticket models.Ticket
			d := db.GetDb()
			err := d.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Where("id = ?", params.ID).
					First(&ticket).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return &types.NotFoundError{Resource: "ticket", ID: params.ID}
					}
					return err
				}
				if ticket.Status != types.TICKET_VALID {
					return &types.ConflictError{Reason: "ticket cannot be refunded"}
				}
				if err := tx.
					Model(&models.Ticket{}).
					Where("id = ?", ticket.ID).
					Update("status", types.TICKET_REFUNDED).
					Error; err != nil {
					return err
				}
				if ticket.PassID != nil {
					if err := common.ReleaseInventoryTx(tx, *ticket.PassID, 1); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			if err := p.gateway.InitiateRefund(ctx, ticket.PaymentReference, ticket.AmountCents); err != nil {
				log.Printf("Refund for ticket %d could not be initiated: %s\n", ticket.ID, err.Error())
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"status": types.TICKET_REFUNDED})
		})
	return g
}
