package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

const (
	PaymentMethodCreditCard     = "credit_card"
	PaymentMethodPaypal         = "paypal"
	PaymentMethodBankTransfer   = "bank_transfer"
	PaymentMethodCashOnDelivery = "cash_on_delivery"
)

// ValidOrderStatus reports whether s is a known status value. Transitions
// between statuses are not guarded; any status may be assigned over any other.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodPaypal,
		PaymentMethodBankTransfer, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

type Order struct {
	gorm.Model
	UserID            uint            `json:"userId" gorm:"index"`
	OrderNumber       string          `json:"orderNumber" gorm:"size:20;uniqueIndex"`
	Status            string          `json:"status" gorm:"size:20;default:pending"`
	PaymentMethod     string          `json:"paymentMethod" gorm:"size:20"`
	PaymentStatus     string          `json:"paymentStatus" gorm:"size:20"`
	PaymentTrackingId string          `json:"paymentTrackingId"`
	TotalAmount       decimal.Decimal `json:"totalAmount" gorm:"type:decimal(10,2)"`
	ShippingAddress   string          `json:"shippingAddress"`
	BillingAddress    string          `json:"billingAddress"`
	Notes             string          `json:"notes"`
	Items             []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem freezes a purchased line. Price is copied from the product's
// final price at checkout time and is never recomputed afterwards.
type OrderItem struct {
	gorm.Model
	OrderID     uint            `json:"orderId"`
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName" gorm:"size:200"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
}

func (item *OrderItem) TotalPrice() decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
}
