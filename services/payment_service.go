package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/kendall-kelly/restaurant-pos/models"
	"github.com/kendall-kelly/restaurant-pos/utils"
	"github.com/shopspring/decimal"
)

// GenericPaymentFailure is shown when the backend gives no reason
const GenericPaymentFailure = "payment failed"

// CardDetails are validated locally only; the flow is simulated and the
// card number is never sent to the backend.
type CardDetails struct {
	Number string `json:"card_number" validate:"required,card16"`
	Holder string `json:"card_holder" validate:"required"`
	Expiry string `json:"expiry" validate:"required"`
	CVV    string `json:"cvv" validate:"required,cvv_digits,min=3,max=4"`
}

// PaymentRequest is a payment attempt for one order
type PaymentRequest struct {
	Method         string          `json:"payment_method"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
	Card           *CardDetails    `json:"card,omitempty"`
}

// PaymentError is a backend refusal of a payment, with its message verbatim
type PaymentError struct {
	StatusCode int
	Message    string
}

func (e *PaymentError) Error() string {
	return e.Message
}

// NormalizePaymentMethod maps cash/card/qr in any case to the backend tag
func NormalizePaymentMethod(method string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "cash":
		return models.PaymentCash, true
	case "card", "credit", "debit":
		return models.PaymentCard, true
	case "qr", "qris":
		return models.PaymentQR, true
	}
	return "", false
}

// NormalizeCardNumber strips spaces and dashes
func NormalizeCardNumber(number string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(number)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NewPaymentValidator returns a validator with the card rules registered
func NewPaymentValidator() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("card16", func(fl validatorv10.FieldLevel) bool {
		n := NormalizeCardNumber(fl.Field().String())
		return len(n) == 16 && isDigits(n)
	})
	_ = v.RegisterValidation("cvv_digits", func(fl validatorv10.FieldLevel) bool {
		return isDigits(fl.Field().String())
	})

	return v
}

var cardMessages = map[string]string{
	"card16":     "card number must be exactly 16 digits",
	"cvv_digits": "cvv must be 3 or 4 digits",
	"min":        "cvv must be 3 or 4 digits",
	"max":        "cvv must be 3 or 4 digits",
}

// toValidationError reports the first failing field
func toValidationError(err error) error {
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return &ValidationError{Field: "payment", Message: err.Error()}
	}
	fe := ve[0]
	msg, ok := cardMessages[fe.Tag()]
	if !ok {
		msg = fe.Field() + " is required"
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}

// PaymentService validates and completes payments
type PaymentService struct {
	client    *BackendClient
	orders    *OrderService
	receipts  *ReceiptService
	publisher StatusPublisher
	validate  *validatorv10.Validate
	now       func() time.Time
}

// NewPaymentService creates a payment processor. receipts may be nil when
// no journal is configured.
func NewPaymentService(client *BackendClient, receipts *ReceiptService, publisher StatusPublisher) *PaymentService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &PaymentService{
		client:    client,
		orders:    NewOrderService(client),
		receipts:  receipts,
		publisher: publisher,
		validate:  NewPaymentValidator(),
		now:       time.Now,
	}
}

// Validate checks a payment request against an order without side effects.
// It returns the normalized method tag.
func (s *PaymentService) Validate(order *models.Order, req PaymentRequest) (string, error) {
	method, ok := NormalizePaymentMethod(req.Method)
	if !ok {
		return "", &ValidationError{Field: "payment_method", Message: "payment method must be cash, card or qr"}
	}

	switch method {
	case models.PaymentCash:
		total := OrderTotal(order)
		if req.AmountTendered.LessThan(total) {
			return "", &ValidationError{
				Field:   "amount_tendered",
				Message: fmt.Sprintf("amount tendered %s is less than the total %s", utils.FormatPrice(req.AmountTendered), utils.FormatPrice(total)),
			}
		}
	case models.PaymentCard:
		if req.Card == nil {
			return "", &ValidationError{Field: "card_number", Message: "card_number is required"}
		}
		if err := s.validate.Struct(req.Card); err != nil {
			return "", toValidationError(err)
		}
	}
	return method, nil
}

type paymentBody struct {
	PaymentMethod string      `json:"payment_method"`
	AmountPaid    json.Number `json:"amount_paid"`
}

// Process validates the request, completes the payment on the backend and
// returns the receipt. Nothing is sent when validation fails; on a backend
// failure the order stays PENDING_PAYMENT.
func (s *PaymentService) Process(ctx context.Context, order *models.Order, req PaymentRequest) (*models.Receipt, error) {
	if order == nil {
		return nil, &ValidationError{Field: "order", Message: "order is required"}
	}
	if order.Status != models.StatusPendingPayment {
		return nil, &InvalidTransitionError{
			OrderID: order.ID,
			From:    order.Status,
			Action:  models.ActionCompletePayment,
			Message: "order is not awaiting payment",
		}
	}

	method, err := s.Validate(order, req)
	if err != nil {
		return nil, err
	}

	total := OrderTotal(order)
	tendered := total
	if method == models.PaymentCash {
		tendered = utils.RoundMoney(req.AmountTendered)
	}

	id := orderIDString(order.ID)
	body := paymentBody{PaymentMethod: method, AmountPaid: json.Number(tendered.StringFixed(utils.MinorUnitPlaces))}
	if err := s.client.do(ctx, "POST", "/orders/"+id+"/payment", body, nil); err != nil {
		var be *BackendError
		if errors.As(err, &be) {
			if be.StatusCode == http.StatusNotFound {
				return nil, &NotFoundError{Resource: "order", ID: id}
			}
			msg := be.Message
			if msg == "" {
				msg = GenericPaymentFailure
			}
			return nil, &PaymentError{StatusCode: be.StatusCode, Message: msg}
		}
		return nil, err
	}

	paid, err := s.orders.GetOrder(ctx, order.ID)
	if err != nil {
		// the backend accepted the payment; fall back to the local copy for the receipt
		log.Printf("warning: order %d paid but could not be reloaded: %v", order.ID, err)
		local := *order
		local.Status = models.StatusCompleted
		paid = &local
	}
	if paid.Status != models.StatusCompleted {
		log.Printf("warning: order %d paid but backend reports %s", order.ID, paid.Status)
	}

	receipt := BuildReceipt(paid, method, total, tendered, req.Card, s.now().UTC())
	publishQuietly(ctx, s.publisher, StatusEvent{
		OrderID: paid.ID,
		Status:  models.StatusCompleted.String(),
		Action:  string(models.ActionCompletePayment),
		At:      receipt.PaidAt,
	})

	if s.receipts != nil {
		if err := s.receipts.Record(ctx, receipt); err != nil {
			log.Printf("warning: receipt for order %d not journaled: %v", order.ID, err)
		}
	}
	return receipt, nil
}

// BuildReceipt projects a paid order into a receipt. Change is only given for cash.
func BuildReceipt(order *models.Order, method string, total, tendered decimal.Decimal, card *CardDetails, paidAt time.Time) *models.Receipt {
	change := decimal.Zero
	if method == models.PaymentCash {
		change = utils.RoundMoney(tendered.Sub(total))
	}

	receipt := &models.Receipt{
		OrderID:       order.ID,
		TableNumber:   order.TableNumber,
		CustomerName:  order.CustomerName,
		PaymentMethod: method,
		Total:         total,
		Tendered:      tendered,
		Change:        change,
		Items:         order.Items,
		OrderedAt:     order.OrderedAt,
		PaidAt:        paidAt,
	}
	if method == models.PaymentCard && card != nil {
		n := NormalizeCardNumber(card.Number)
		if len(n) >= 4 {
			receipt.CardLastFour = n[len(n)-4:]
		}
	}
	return receipt
}
