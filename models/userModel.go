package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username           string      `json:"username" binding:"required" gorm:"size:150;uniqueIndex"`
	Email              string      `json:"email" binding:"required,email" gorm:"size:254;uniqueIndex"`
	FirstName          string      `json:"firstName"`
	LastName           string      `json:"lastName"`
	Phone              string      `json:"phone" gorm:"size:20"`
	Password           string      `json:"password" binding:"required,min=8"`
	Role               string      `json:"role"`
	IsActive           bool        `json:"isActive" gorm:"default:true"`
	PasswordResetToken string      `json:"-"`
	Profile            UserProfile `json:"profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type LoginData struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type UserProfile struct {
	gorm.Model
	UserID                 uint   `json:"userId" gorm:"uniqueIndex"`
	Phone                  string `json:"phone" gorm:"size:20"`
	Address                string `json:"address"`
	City                   string `json:"city" gorm:"size:100"`
	PostalCode             string `json:"postalCode" gorm:"size:20"`
	Country                string `json:"country" gorm:"size:100"`
	NewsletterSubscription bool   `json:"newsletterSubscription" gorm:"default:true"`
}
