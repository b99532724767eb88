package common

import (
	"errors"
	"log"

	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"

	"gorm.io/gorm"
)

const reserveMaxAttempts = 5

var (
	ErrOversold            = &types.ConflictError{Reason: "not enough passes remaining"}
	ErrInventoryContention = &types.ConflictError{Reason: "inventory busy, try again"}
)

func ReserveInventory(passID, qty uint) error {
	return ReserveInventoryTx(db.GetDb(), passID, qty)
}

// ReserveInventoryTx bumps sold_quantity by qty without ever exceeding
// total_quantity. The update is conditional on the count read beforehand, so
// a concurrent writer shows up as zero rows affected and we re-read. After
// reserveMaxAttempts lost races the caller gets ErrInventoryContention.
func ReserveInventoryTx(tx *gorm.DB, passID, qty uint) error {
	for attempt := 0; attempt < reserveMaxAttempts; attempt++ {
		var pass models.Pass
		if err := tx.
			Model(&models.Pass{}).
			Where("id = ?", passID).
			First(&pass).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &types.NotFoundError{Resource: "pass", ID: passID}
			}
			return err
		}
		if qty > pass.Remaining() {
			return ErrOversold
		}
		res := tx.
			Model(&models.Pass{}).
			Where("id = ? AND sold_quantity = ?", passID, pass.SoldQuantity).
			Where("sold_quantity + ? <= total_quantity", qty).
			Update("sold_quantity", gorm.Expr("sold_quantity + ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
		log.Printf("[inventory] lost update race on pass %d, attempt %d\n", passID, attempt+1)
	}
	return ErrInventoryContention
}

func ReleaseInventory(passID, qty uint) error {
	return ReleaseInventoryTx(db.GetDb(), passID, qty)
}

// ReleaseInventoryTx is the compensation path for failed or refunded
// purchases. It never drives sold_quantity below zero.
func ReleaseInventoryTx(tx *gorm.DB, passID, qty uint) error {
	res := tx.
		Model(&models.Pass{}).
		Where("id = ? AND sold_quantity >= ?", passID, qty).
		Update("sold_quantity", gorm.Expr("sold_quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &types.ConflictError{Reason: "release would underflow sold count"}
	}
	return nil
}
