package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	sq "github.com/square/square-go-sdk"
	"gorm.io/gorm"

	"github.com/selimbouaziz/ateliera-backend/pkg/db"
	"github.com/selimbouaziz/ateliera-backend/pkg/db/models"
	"github.com/selimbouaziz/ateliera-backend/pkg/enums"
	pkgerrors "github.com/selimbouaziz/ateliera-backend/pkg/errors"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
	"github.com/selimbouaziz/ateliera-backend/pkg/pagination"
	"github.com/selimbouaziz/ateliera-backend/pkg/square"
	"github.com/selimbouaziz/ateliera-backend/pkg/types"
)

const (
	contactActor       = "Admin"
	defaultContactNote = "Initial contact made with customer"
	recentOrdersLimit  = 5
)

// EventPublisher delivers order lifecycle events. Publish failures never
// fail the originating request.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error
}

// PaymentGateway captures an online payment for an order.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, params square.PaymentCreateParams) (*sq.Payment, error)
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (*models.Order, error)
	AddContact(ctx context.Context, orderID uuid.UUID, input AddContactInput) (*models.Order, error)
	List(ctx context.Context, params pagination.Params) (*OrderList, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListByStatus(ctx context.Context, status string) (*StatusList, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	CapturePayment(ctx context.Context, orderID uuid.UUID, sourceID string) (*models.Order, error)
}

type service struct {
	repo      Repository
	publisher EventPublisher
	payments  PaymentGateway
	logg      *logger.Logger
	now       func() time.Time
}

// allowedTransitions is the forward lifecycle graph. Cancellation is
// reachable from every non-terminal state; delivered and cancelled admit
// no exits. Same-status updates are accepted everywhere so a repeated
// contacted update keeps appending history.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPendingContact:   {enums.OrderStatusContacted, enums.OrderStatusCancelled},
	enums.OrderStatusContacted:        {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:        {enums.OrderStatusPreparing, enums.OrderStatusCancelled},
	enums.OrderStatusPreparing:        {enums.OrderStatusReadyForShipping, enums.OrderStatusCancelled},
	enums.OrderStatusReadyForShipping: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:          {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusDelivered:        {},
	enums.OrderStatusCancelled:        {},
}

// NewService builds the order service with the required dependencies.
// The publisher and payment gateway may be nil; the matching operations
// then degrade (no events, capture unavailable).
func NewService(repo Repository, publisher EventPublisher, payments PaymentGateway, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		publisher: publisher,
		payments:  payments,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if strings.TrimSpace(input.OrderReference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order reference required")
	}
	if len(input.OrderItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order item required")
	}

	status := enums.OrderStatusPendingContact
	if input.OrderStatus != "" {
		parsed, err := enums.ParseOrderStatus(input.OrderStatus)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
		}
		status = parsed
	}

	orderType := enums.OrderTypeManualPayment
	if input.OrderType != "" {
		parsed, err := enums.ParseOrderType(input.OrderType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order type")
		}
		orderType = parsed
	}

	input.CustomerInfo.ApplyDefaults()
	items := make([]types.OrderItem, len(input.OrderItems))
	for i := range input.OrderItems {
		item := input.OrderItems[i]
		item.ApplyDefaults()
		items[i] = item
	}

	if existing, err := s.repo.FindByReference(ctx, input.OrderReference); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order reference already used")
	} else if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order reference")
	}

	order := &models.Order{
		OrderReference: input.OrderReference,
		CustomerInfo:   input.CustomerInfo,
		OrderItems:     items,
		OrderSummary:   input.OrderSummary,
		TotalAmount:    input.OrderSummary.TotalAmount,
		ItemsCount:     input.OrderSummary.ItemsCount,
		OrderStatus:    status,
		OrderType:      orderType,
		ContactHistory: []types.ContactEntry{},
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		// the unique index is the authority; the pre-check only narrows the race
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order reference already used")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.publishCreated(ctx, created)
	return created, nil
}

func (s *service) publishCreated(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := OrderCreatedEvent{
		OrderID:        order.ID.String(),
		OrderReference: order.OrderReference,
		CustomerName:   order.CustomerInfo.FirstName + " " + order.CustomerInfo.LastName,
		CustomerEmail:  order.CustomerInfo.Email,
		TotalAmount:    order.TotalAmount,
		ItemsCount:     order.ItemsCount,
		OrderType:      order.OrderType.String(),
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		ctx = s.logg.WithOrderRef(ctx, order.OrderReference)
		s.logg.Warn(ctx, "order created event publish failed: "+err.Error())
	}
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if input.OrderStatus != "" {
		next, err := enums.ParseOrderStatus(input.OrderStatus)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
		}
		if !canTransition(order.OrderStatus, next) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.OrderStatus, next))
		}
		if next == enums.OrderStatusContacted {
			order.ContactHistory = append(order.ContactHistory, types.ContactEntry{
				ContactDate: s.now().UTC(),
				Method:      string(enums.PreferredContactPhone),
				Notes:       defaultContactNote,
				AdminUser:   contactActor,
			})
		}
		order.OrderStatus = next
	}

	if input.AdminNotes != nil {
		order.AdminNotes = *input.AdminNotes
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	return order, nil
}

func (s *service) AddContact(ctx context.Context, orderID uuid.UUID, input AddContactInput) (*models.Order, error) {
	if strings.TrimSpace(input.Notes) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact notes required")
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	method := input.Method
	if method == "" {
		method = string(enums.PreferredContactPhone)
	}
	order.ContactHistory = append(order.ContactHistory, types.ContactEntry{
		ContactDate: s.now().UTC(),
		Method:      method,
		Notes:       input.Notes,
		AdminUser:   contactActor,
	})
	if order.OrderStatus == enums.OrderStatusPendingContact {
		order.OrderStatus = enums.OrderStatusContacted
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*OrderList, error) {
	params = pagination.Normalize(params)
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &OrderList{
		Orders:     rows,
		Pagination: pagination.NewPage(params, total),
	}, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.load(ctx, orderID)
}

func (s *service) ListByStatus(ctx context.Context, status string) (*StatusList, error) {
	parsed, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
	}
	rows, err := s.repo.ListByStatus(ctx, parsed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders by status")
	}
	return &StatusList{
		Orders: rows,
		Status: parsed,
		Count:  len(rows),
	}, nil
}

func (s *service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	pending, err := s.repo.CountByStatus(ctx, enums.OrderStatusPendingContact)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending orders")
	}
	confirmed, err := s.repo.CountByStatus(ctx, enums.OrderStatusConfirmed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count confirmed orders")
	}
	shipped, err := s.repo.CountByStatus(ctx, enums.OrderStatusShipped)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count shipped orders")
	}
	revenue, err := s.repo.SumTotalAmount(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}
	recent, err := s.repo.Recent(ctx, recentOrdersLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent orders")
	}

	rounded, _ := decimal.NewFromFloat(revenue).Round(2).Float64()
	return &DashboardStats{
		TotalOrders:          total,
		PendingContactOrders: pending,
		ConfirmedOrders:      confirmed,
		ShippedOrders:        shipped,
		TotalRevenue:         rounded,
		RecentOrders:         recent,
	}, nil
}

func (s *service) CapturePayment(ctx context.Context, orderID uuid.UUID, sourceID string) (*models.Order, error) {
	if strings.TrimSpace(sourceID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment source required")
	}
	if s.payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway unavailable")
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OrderType != enums.OrderTypeOnlinePayment {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not payable online")
	}
	if order.PaymentID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment already captured")
	}

	amount := decimal.NewFromFloat(order.TotalAmount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	payment, err := s.payments.CreatePayment(ctx, square.PaymentCreateParams{
		AmountCents: amount,
		SourceID:    sourceID,
		ReferenceID: order.OrderReference,
		Note:        "Ateliera order " + order.OrderReference,
	})
	if err != nil {
		return nil, err
	}

	paymentID := paymentIdentifier(payment)
	order.PaymentID = &paymentID
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store payment id")
	}
	return order, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func canTransition(from, to enums.OrderStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func paymentIdentifier(payment *sq.Payment) string {
	if payment == nil || payment.ID == nil {
		return ""
	}
	return *payment.ID
}
