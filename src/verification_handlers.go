package main

import (
	"errors"
	"log"
	"net/http"

	"tixgate/src/common"
	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// verificationHandlers covers the manual bank transfer path. Submitting a
// slip only files a request; a reviewer's approval is what feeds the issuer.
func verificationHandlers(g *gin.RouterGroup, p *pipeline) *gin.RouterGroup {
	g.
		POST("/verifications", func(ctx *gin.Context) {
			var body types.CreateVerificationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			var slipNote *string
			if body.SlipNote != "" {
				slipNote = &body.SlipNote
			}
			req := models.PaymentVerificationRequest{
				Reference:   uuid.New(),
				EventID:     body.EventID,
				UserID:      userId,
				Quantity:    body.Quantity,
				AmountCents: body.AmountCents,
				SlipNote:    slipNote,
				Status:      types.VERIFICATION_PENDING,
			}
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				var count int64
				if err := tx.Model(&models.Event{}).Where("id = ?", body.EventID).Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					return &types.NotFoundError{Resource: "event", ID: body.EventID}
				}
				return tx.Create(&req).Error
			}); err != nil {
				log.Printf("Error creating verification request: %s\n", err.Error())
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": req})
		}).
		GET("/verifications", func(ctx *gin.Context) {
			if ctx.GetString("role") != "admin" {
				ctx.Status(http.StatusForbidden)
				return
			}
			var requests []models.PaymentVerificationRequest
			db := db.GetDb()
			if err := db.
				Where("status = ?", types.VERIFICATION_PENDING).
				Order("created_at asc").
				Find(&requests).
				Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": requests})
		}).
		PUT("/verifications/:id/approve", func(ctx *gin.Context) {
			reviewVerification(ctx, p, types.VERIFICATION_APPROVED)
		}).
		PUT("/verifications/:id/reject", func(ctx *gin.Context) {
			reviewVerification(ctx, p, types.VERIFICATION_REJECTED)
		})
	return g
}

func reviewVerification(ctx *gin.Context, p *pipeline, decision types.VerificationStatus) {
	if ctx.GetString("role") != "admin" {
		ctx.Status(http.StatusForbidden)
		return
	}
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.Status(http.StatusBadRequest)
		return
	}
	reviewerId := ctx.GetUint("id")
	var req models.PaymentVerificationRequest
	d := db.GetDb()
	err := d.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("id = ?", params.ID).
			First(&req).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &types.NotFoundError{Resource: "verification request", ID: params.ID}
			}
			return err
		}
		if req.Status != types.VERIFICATION_PENDING {
			return &types.ConflictError{Reason: "request has already been reviewed"}
		}
		res := tx.
			Model(&models.PaymentVerificationRequest{}).
			Where("id = ? AND status = ?", params.ID, types.VERIFICATION_PENDING).
			Updates(map[string]any{
				"status":      decision,
				"reviewed_by": reviewerId,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &types.ConflictError{Reason: "request has already been reviewed"}
		}
		return nil
	})
	if err != nil {
		ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	if decision == types.VERIFICATION_REJECTED {
		ctx.JSON(http.StatusOK, gin.H{"status": decision})
		return
	}
	tickets, err := p.issuer.Issue(ctx, &common.IssueParams{
		PaymentReference: req.Reference.String(),
		EventID:          req.EventID,
		UserID:           req.UserID,
		Quantity:         req.Quantity,
		AmountTotalCents: req.AmountCents,
		Method:           types.METHOD_MANUAL,
	})
	if err != nil {
		log.Printf("Issuance for verification [%s] failed: %s\n", req.Reference, err.Error())
		ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": decision, "tickets": tickets})
}
