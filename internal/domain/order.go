package domain

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// CanTransition reports whether an order in status from may move to to.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", errors.Errorf("unknown order status %q", s)
}

type PaymentMethod string

const (
	PaymentStripe PaymentMethod = "stripe"
	PaymentPayPal PaymentMethod = "paypal"
	PaymentCOD    PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentStripe, PaymentPayPal, PaymentCOD:
		return true
	}
	return false
}

type ShippingAddress struct {
	FullName   string `json:"fullName" gorm:"size:128"`
	Phone      string `json:"phone" gorm:"size:32"`
	Street     string `json:"street" gorm:"size:256"`
	City       string `json:"city" gorm:"size:128"`
	State      string `json:"state" gorm:"size:128"`
	PostalCode string `json:"postalCode" gorm:"size:32"`
	Country    string `json:"country" gorm:"size:64"`
}

// Complete reports whether every address field is filled in.
func (a ShippingAddress) Complete() bool {
	for _, f := range []string{a.FullName, a.Phone, a.Street, a.City, a.State, a.PostalCode, a.Country} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

type PaymentResult struct {
	ID           string `json:"id" gorm:"size:128"`
	Status       string `json:"status" gorm:"size:64"`
	UpdateTime   string `json:"updateTime" gorm:"size:64"`
	EmailAddress string `json:"emailAddress" gorm:"size:256"`
}

// OrderLine is frozen at creation: the captured cart price plus the product
// display fields as they were at that moment.
type OrderLine struct {
	ID        uint64          `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64          `json:"-" gorm:"not null;index"`
	ProductID string          `json:"productId" gorm:"size:64;not null"`
	Name      string          `json:"name" gorm:"size:200;not null"`
	Image     string          `json:"image" gorm:"size:512"`
	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"type:decimal(12,2);not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
}

type Order struct {
	ID              uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderNumber     string          `json:"orderNumber" gorm:"size:32;not null;uniqueIndex"`
	OwnerID         string          `json:"ownerId" gorm:"size:64;not null;index:idx_orders_owner_created,priority:1"`
	Lines           []OrderLine     `json:"lines" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:ship_"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" gorm:"type:enum('stripe','paypal','cod');not null"`
	PaymentResult   PaymentResult   `json:"paymentResult" gorm:"embedded;embeddedPrefix:payment_"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	ShippingCost    decimal.Decimal `json:"shippingCost" gorm:"type:decimal(12,2);not null"`
	Tax             decimal.Decimal `json:"tax" gorm:"type:decimal(12,2);not null"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:enum('pending','processing','shipped','delivered','cancelled');default:'pending';index"`
	IsPaid          bool            `json:"isPaid" gorm:"not null;default:false"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	IsDelivered     bool            `json:"isDelivered" gorm:"not null;default:false"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	TrackingNumber  string          `json:"trackingNumber" gorm:"size:64"`
	Notes           string          `json:"notes" gorm:"size:1000"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"autoCreateTime;index:idx_orders_owner_created,priority:2"`
	UpdatedAt       time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Checkout carries what the buyer supplies on top of the cart contents.
type Checkout struct {
	OwnerID         string
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	Notes           string
}

// NewOrderFromCart builds a pending order from a cart snapshot. Every line's
// product must still be active; prices come from the cart lines and are not
// re-read. products is keyed by product id. The order number is left for the
// caller to assign.
func NewOrderFromCart(cart *Cart, products map[string]*Product, in Checkout, now time.Time) (*Order, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines := make([]OrderLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		p := products[l.ProductID]
		if !p.Available() {
			return nil, errors.Wrapf(ErrUnavailableProduct, "product %s", l.ProductID)
		}
		lines = append(lines, OrderLine{
			ProductID: l.ProductID,
			Name:      p.Name,
			Image:     p.Image,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}

	totals := ComputeTotals(cart.Lines)
	return &Order{
		OwnerID:         in.OwnerID,
		Lines:           lines,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Subtotal:        totals.Subtotal,
		ShippingCost:    totals.ShippingCost,
		Tax:             totals.Tax,
		Total:           totals.Total,
		Status:          StatusPending,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (o *Order) Totals() Totals {
	return Totals{
		Subtotal:     o.Subtotal,
		ShippingCost: o.ShippingCost,
		Tax:          o.Tax,
		Total:        o.Total,
	}
}

// TransitionTo moves the order along its lifecycle. Reaching delivered also
// stamps the delivery fields.
func (o *Order) TransitionTo(to OrderStatus, now time.Time) error {
	if !CanTransition(o.Status, to) {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", o.Status, to)
	}
	o.Status = to
	o.UpdatedAt = now
	if to == StatusDelivered {
		o.IsDelivered = true
		o.DeliveredAt = &now
	}
	return nil
}

func (o *Order) Cancel(now time.Time) error {
	return o.TransitionTo(StatusCancelled, now)
}

// MarkPaid records a successful payment. Paying twice is a no-op; a
// cancelled order cannot be paid.
func (o *Order) MarkPaid(result PaymentResult, now time.Time) error {
	if o.Status == StatusCancelled {
		return errors.Wrap(ErrInvalidTransition, "cancelled order cannot be paid")
	}
	if o.IsPaid {
		return nil
	}
	o.IsPaid = true
	o.PaidAt = &now
	o.PaymentResult = result
	o.UpdatedAt = now
	return nil
}
