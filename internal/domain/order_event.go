package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderPaid          = "order.paid"
)

type OrderCreatedEvent struct {
	OrderID     uint64          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	OwnerID     string          `json:"ownerId"`
	ItemCount   int             `json:"itemCount"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID     uint64      `json:"orderId"`
	OrderNumber string      `json:"orderNumber"`
	From        OrderStatus `json:"from"`
	To          OrderStatus `json:"to"`
	IsPaid      bool        `json:"isPaid"`
	ChangedAt   time.Time   `json:"changedAt"`
}

type OrderPaidEvent struct {
	OrderID       uint64          `json:"orderId"`
	OrderNumber   string          `json:"orderNumber"`
	OwnerID       string          `json:"ownerId"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	PaymentID     string          `json:"paymentId"`
	Total         decimal.Decimal `json:"total"`
	PaidAt        time.Time       `json:"paidAt"`
}

func NewOrderPaidEvent(o *Order) OrderPaidEvent {
	e := OrderPaidEvent{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		OwnerID:       o.OwnerID,
		PaymentMethod: o.PaymentMethod,
		PaymentID:     o.PaymentResult.ID,
		Total:         o.Total,
	}
	if o.PaidAt != nil {
		e.PaidAt = *o.PaidAt
	}
	return e
}

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return OrderCreatedEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		OwnerID:     o.OwnerID,
		ItemCount:   n,
		Total:       o.Total,
		CreatedAt:   o.CreatedAt,
	}
}
