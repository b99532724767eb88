package models

import "tixgate/src/types"

type User struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `gorm:"uniqueIndex" json:"email,omitempty"`
	UID   string `json:"uid,omitempty"`
	Role  string `gorm:"default:'user'" json:"role,omitempty"`

	types.Timestamps
}
