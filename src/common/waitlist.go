package common

import (
	"errors"
	"log"
	"time"

	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"

	"gorm.io/gorm"
)

// JoinWaitingList files a waiting entry for the user. A user holds at most
// one live entry per event; joining twice returns the existing one.
func JoinWaitingList(userID, eventID uint, passID *uint) (*models.WaitingListEntry, error) {
	d := db.GetDb()
	var entry models.WaitingListEntry
	err := d.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("user_id = ? AND event_id = ?", userID, eventID).
			Where("status IN ?", []types.WaitingStatus{types.WAITING_LISTED, types.WAITING_OFFERED}).
			First(&entry).
			Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		entry = models.WaitingListEntry{
			UserID:  userID,
			EventID: eventID,
			PassID:  passID,
			Status:  types.WAITING_LISTED,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarkOffered moves a waiting entry to offered with a deadline. Only the
// allocator calls this when capacity frees up.
func MarkOffered(entryID uint, offerWindow time.Duration) error {
	d := db.GetDb()
	deadline := time.Now().Add(offerWindow)
	res := d.
		Model(&models.WaitingListEntry{}).
		Where("id = ? AND status = ?", entryID, types.WAITING_LISTED).
		Updates(map[string]any{
			"status":           types.WAITING_OFFERED,
			"offer_expires_at": deadline,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &types.ConflictError{Reason: "entry is not in the waiting state"}
	}
	return nil
}

// PromoteWaitingTx closes out the user's live entry for the event after a
// purchase. Issuance is the only caller; entries belonging to other users or
// other events are never touched.
func PromoteWaitingTx(tx *gorm.DB, userID, eventID uint) error {
	res := tx.
		Model(&models.WaitingListEntry{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Where("status IN ?", []types.WaitingStatus{types.WAITING_LISTED, types.WAITING_OFFERED}).
		Update("status", types.WAITING_PURCHASED)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("[waitlist] promoted %d entries for user %d on event %d\n", res.RowsAffected, userID, eventID)
	}
	return nil
}

// ExpireOverdueOffers is the periodic sweep for offers nobody accepted.
func ExpireOverdueOffers() (int64, error) {
	d := db.GetDb()
	res := d.
		Model(&models.WaitingListEntry{}).
		Where("status = ?", types.WAITING_OFFERED).
		Where("offer_expires_at < ?", time.Now()).
		Update("status", types.WAITING_EXPIRED)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
