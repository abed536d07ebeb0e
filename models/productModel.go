package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Category struct {
	gorm.Model
	Name        string    `json:"name" binding:"required" gorm:"size:100;uniqueIndex"`
	Slug        string    `json:"slug" binding:"required" gorm:"size:100;uniqueIndex"`
	Description string    `json:"description"`
	ImageUrl    string    `json:"imageUrl"`
	Products    []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

type ProductImage struct {
	gorm.Model
	ProductID  uint   `json:"productId" binding:"required"`
	Url        string `json:"url" binding:"required"`
	AltText    string `json:"altText"`
	IsFeatured bool   `json:"isFeatured"`
}

type Product struct {
	gorm.Model
	Name          string              `json:"name" binding:"required" gorm:"size:200;index"`
	Slug          string              `json:"slug" binding:"required" gorm:"size:200;uniqueIndex"`
	Description   string              `json:"description" binding:"required"`
	Price         decimal.Decimal     `json:"price" gorm:"type:decimal(10,2);index"`
	DiscountPrice decimal.NullDecimal `json:"discountPrice" gorm:"type:decimal(10,2)"`
	CategoryID    uint                `json:"categoryId" binding:"required" gorm:"index"`
	ImageUrl      string              `json:"imageUrl"`
	Stock         int                 `json:"stock"`
	IsAvailable   bool                `json:"isAvailable" gorm:"default:true"`
	Brand         string              `json:"brand" gorm:"size:100"`
	Weight        decimal.NullDecimal `json:"weight" gorm:"type:decimal(6,2)"`
	Dimensions    string              `json:"dimensions" gorm:"size:50"`
	MetaTitle     string              `json:"metaTitle" gorm:"size:200"`
	MetaDesc      string              `json:"metaDescription"`
	Tags          datatypes.JSON      `json:"tags"`
	Images        []ProductImage      `json:"images,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// FinalPrice returns the discount price when one is set, the base price otherwise.
func (p *Product) FinalPrice() decimal.Decimal {
	if p.DiscountPrice.Valid {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

func (p *Product) HasDiscount() bool {
	return p.DiscountPrice.Valid
}
