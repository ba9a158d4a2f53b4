package db

import "gorm.io/gorm"

// Student belongs to exactly one parent account. Students are managed by
// admins; parents only read their own.
type Student struct {
	gorm.Model
	Name       string `gorm:"not null"`
	ClassGrade string
	ParentID   uint  `gorm:"index"`
	Parent     *User `gorm:"foreignKey:ParentID"`
}
