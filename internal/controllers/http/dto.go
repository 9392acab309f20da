package http

import (
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/services"

	"github.com/shopspring/decimal"
)

type AddItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=9999"`
}

type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,max=9999"`
}

type GuestLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type MergeCartRequest struct {
	Token string             `json:"token"`
	Lines []GuestLineRequest `json:"lines" binding:"dive"`
}

func (r MergeCartRequest) toService() services.MergeRequest {
	lines := make([]domain.GuestLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, domain.GuestLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return services.MergeRequest{Token: r.Token, Lines: lines}
}

type ShippingAddressRequest struct {
	FullName   string `json:"fullName" binding:"required,max=128"`
	Phone      string `json:"phone" binding:"required,max=32"`
	Street     string `json:"street" binding:"required,max=256"`
	City       string `json:"city" binding:"required,max=128"`
	State      string `json:"state" binding:"required,max=128"`
	PostalCode string `json:"postalCode" binding:"required,max=32"`
	Country    string `json:"country" binding:"required,max=64"`
}

type CreateOrderRequest struct {
	ShippingAddress *ShippingAddressRequest `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                  `json:"paymentMethod" binding:"required"`
	Notes           string                  `json:"notes" binding:"max=1000"`
}

func (r CreateOrderRequest) toCheckout(ownerID string) domain.Checkout {
	a := r.ShippingAddress
	return domain.Checkout{
		OwnerID: ownerID,
		ShippingAddress: domain.ShippingAddress{
			FullName:   a.FullName,
			Phone:      a.Phone,
			Street:     a.Street,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
		},
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		Notes:         r.Notes,
	}
}

type UpdateStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"trackingNumber"`
}

type PayOrderRequest struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"updateTime"`
	EmailAddress string `json:"emailAddress"`
}

type CartLineResponse struct {
	LineID    string `json:"lineId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Total     string `json:"total"`
}

// CartResponse carries the derived totals next to the lines so clients never
// compute money themselves.
type CartResponse struct {
	OwnerID      string             `json:"ownerId"`
	Lines        []CartLineResponse `json:"lines"`
	TotalItems   int                `json:"totalItems"`
	Subtotal     string             `json:"subtotal"`
	ShippingCost string             `json:"shippingCost"`
	Tax          string             `json:"tax"`
	Total        string             `json:"total"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

func toCartResponse(c *domain.Cart) CartResponse {
	lines := make([]CartLineResponse, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, CartLineResponse{
			LineID:    l.LineID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: money(l.UnitPrice),
			Total:     money(l.Total()),
		})
	}
	t := domain.ComputeTotals(c.Lines)
	return CartResponse{
		OwnerID:      c.OwnerID,
		Lines:        lines,
		TotalItems:   c.TotalItems(),
		Subtotal:     money(t.Subtotal),
		ShippingCost: money(t.ShippingCost),
		Tax:          money(t.Tax),
		Total:        money(t.Total),
		UpdatedAt:    c.UpdatedAt,
	}
}

type OrderLineResponse struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

type OrderResponse struct {
	ID              uint64                 `json:"id"`
	OrderNumber     string                 `json:"orderNumber"`
	OwnerID         string                 `json:"ownerId"`
	Lines           []OrderLineResponse    `json:"lines"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   domain.PaymentMethod   `json:"paymentMethod"`
	PaymentResult   domain.PaymentResult   `json:"paymentResult"`
	Subtotal        string                 `json:"subtotal"`
	ShippingCost    string                 `json:"shippingCost"`
	Tax             string                 `json:"tax"`
	Total           string                 `json:"total"`
	Status          domain.OrderStatus     `json:"status"`
	IsPaid          bool                   `json:"isPaid"`
	PaidAt          *time.Time             `json:"paidAt,omitempty"`
	IsDelivered     bool                   `json:"isDelivered"`
	DeliveredAt     *time.Time             `json:"deliveredAt,omitempty"`
	TrackingNumber  string                 `json:"trackingNumber,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Image:     l.Image,
			UnitPrice: money(l.UnitPrice),
			Quantity:  l.Quantity,
		})
	}
	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		OwnerID:         o.OwnerID,
		Lines:           lines,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		PaymentResult:   o.PaymentResult,
		Subtotal:        money(o.Subtotal),
		ShippingCost:    money(o.ShippingCost),
		Tax:             money(o.Tax),
		Total:           money(o.Total),
		Status:          o.Status,
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		TrackingNumber:  o.TrackingNumber,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderResponses(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
