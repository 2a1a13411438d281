package bookings

import "time"

// Initial payment choices on the booking form
const (
	PayInFull    = "full"
	PayPartially = "partial"
)

// CreateBookingRequest is posted by the public portal, as JSON or as a form
type CreateBookingRequest struct {
	CustomerName         string `json:"customerName" form:"customerName" validate:"required,max=255"`
	CustomerEmail        string `json:"customerEmail" form:"customerEmail" validate:"required,email,max=255"`
	CustomerPhone        string `json:"customerPhone" form:"customerPhone" validate:"omitempty,max=50"`
	NumberOfGuests       int    `json:"numberOfGuests" form:"numberOfGuests" validate:"required,min=1"`
	PaymentMethod        string `json:"paymentMethod" form:"paymentMethod" validate:"required,oneof=full partial"`
	PartialPaymentAmount int64  `json:"partialPaymentAmount" form:"partialPaymentAmount" validate:"required_if=PaymentMethod partial,omitempty,gt=0"`
}

// RecordPaymentRequest records money received against a booking
type RecordPaymentRequest struct {
	PaymentMethod string `json:"paymentMethod" form:"paymentMethod" validate:"required,oneof=cash card bank_transfer online"`
	Amount        int64  `json:"amount" form:"amount" validate:"required,gt=0"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" form:"reason" validate:"max=1000"`
}

type BookingResponse struct {
	ID                 string            `json:"id"`
	Reference          string            `json:"reference"`
	EventID            string            `json:"event_id"`
	CustomerName       string            `json:"customer_name"`
	CustomerEmail      string            `json:"customer_email"`
	CustomerPhone      string            `json:"customer_phone,omitempty"`
	NumberOfGuests     int               `json:"number_of_guests"`
	TotalAmount        int64             `json:"total_amount"`
	AmountPaid         int64             `json:"amount_paid"`
	RemainingAmount    int64             `json:"remaining_amount"`
	PaymentStatus      PaymentStatus     `json:"payment_status"`
	Status             Status            `json:"status"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	CompletedAt        *time.Time        `json:"completed_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	Payments           []PaymentResponse `json:"payments,omitempty"`
}

type PaymentResponse struct {
	ID        string    `json:"id"`
	Reference string    `json:"reference"`
	BookingID string    `json:"booking_id"`
	Amount    int64     `json:"amount"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type PaymentResult struct {
	Booking BookingResponse `json:"booking"`
	Payment PaymentResponse `json:"payment"`
}

type AvailabilityResponse struct {
	EventID   string `json:"event_id"`
	Capacity  int    `json:"capacity"`
	Booked    int    `json:"booked"`
	Remaining int    `json:"remaining"`
}

// ToResponse converts Booking to BookingResponse
func (b *Booking) ToResponse() BookingResponse {
	resp := BookingResponse{
		ID:                 b.ID.String(),
		Reference:          b.Reference,
		EventID:            b.EventID.String(),
		CustomerName:       b.CustomerName,
		CustomerEmail:      b.CustomerEmail,
		CustomerPhone:      b.CustomerPhone,
		NumberOfGuests:     b.NumberOfGuests,
		TotalAmount:        b.TotalAmount,
		AmountPaid:         b.AmountPaid,
		RemainingAmount:    b.RemainingAmount,
		PaymentStatus:      b.PaymentStatus,
		Status:             b.Status,
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		CompletedAt:        b.CompletedAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
	for i := range b.Payments {
		resp.Payments = append(resp.Payments, b.Payments[i].ToResponse())
	}
	return resp
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	return PaymentResponse{
		ID:        p.ID.String(),
		Reference: p.Reference,
		BookingID: p.BookingID.String(),
		Amount:    p.Amount,
		Method:    p.Method,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	}
}
