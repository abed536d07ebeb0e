package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is owned by exactly one identity: an authenticated user or an
// anonymous session key. Resolve logic guarantees one of the two is set.
type Cart struct {
	gorm.Model
	UserID     *uint      `json:"userId" gorm:"uniqueIndex"`
	SessionKey *string    `json:"sessionKey" gorm:"size:40;uniqueIndex"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

type CartItem struct {
	gorm.Model
	CartID    uint    `json:"cartId" gorm:"uniqueIndex:idx_cart_product"`
	ProductID uint    `json:"productId" gorm:"uniqueIndex:idx_cart_product"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

// TotalPrice is always derived from the loaded items, never stored.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice())
	}
	return total
}

func (c *Cart) TotalItems() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (item *CartItem) TotalPrice() decimal.Decimal {
	return item.Product.FinalPrice().Mul(decimal.NewFromInt(int64(item.Quantity)))
}
