package main

import (
	"log"
	"net/http"

	"tixgate/src/common"
	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"

	"github.com/gin-gonic/gin"
)

func waitlistHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/waitlist", func(ctx *gin.Context) {
			var body types.JoinWaitlistRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			var count int64
			db := db.GetDb()
			if err := db.Model(&models.Event{}).Where("id = ?", body.EventID).Count(&count).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if count == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			entry, err := common.JoinWaitingList(userId, body.EventID, body.PassID)
			if err != nil {
				log.Printf("Error joining waiting list: %s\n", err.Error())
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": entry})
		}).
		GET("/waitlist", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var entries []models.WaitingListEntry
			db := db.GetDb()
			if err := db.
				Where("user_id = ?", userId).
				Order("created_at desc").
				Find(&entries).
				Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": entries})
		})
	return g
}
