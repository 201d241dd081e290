package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	sq "github.com/square/square-go-sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimbouaziz/ateliera-backend/pkg/enums"
	pkgerrors "github.com/selimbouaziz/ateliera-backend/pkg/errors"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
	"github.com/selimbouaziz/ateliera-backend/pkg/pagination"
	"github.com/selimbouaziz/ateliera-backend/pkg/square"
	"github.com/selimbouaziz/ateliera-backend/pkg/types"
)

type fakePublisher struct {
	events []OrderCreatedEvent
	err    error
}

func (f *fakePublisher) PublishOrderCreated(_ context.Context, event OrderCreatedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeGateway struct {
	lastParams square.PaymentCreateParams
	paymentID  string
	err        error
}

func (f *fakeGateway) CreatePayment(_ context.Context, params square.PaymentCreateParams) (*sq.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastParams = params
	id := f.paymentID
	return &sq.Payment{ID: &id}, nil
}

func newTestService(t *testing.T, publisher *fakePublisher, gateway *fakeGateway) (Service, Repository) {
	t.Helper()

	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "orders-test", Level: zerolog.ErrorLevel})

	var pub EventPublisher
	if publisher != nil {
		pub = publisher
	}
	var gw PaymentGateway
	if gateway != nil {
		gw = gateway
	}
	svc, err := NewService(repo, pub, gw, logg)
	require.NoError(t, err)
	return svc, repo
}

func validCreateInput(reference string) CreateOrderInput {
	return CreateOrderInput{
		OrderReference: reference,
		CustomerInfo: types.CustomerInfo{
			FirstName:  "Lina",
			LastName:   "Haddad",
			Email:      "lina@example.com",
			Phone:      "+15145550100",
			Address:    "12 Rue Cartier",
			City:       "Montreal",
			Province:   "QC",
			PostalCode: "H2X 1Y5",
		},
		OrderItems: []types.OrderItem{{
			ProductID: "prod-1",
			Name:      "Silk Scarf",
			Quantity:  1,
			Price:     100,
		}},
		OrderSummary: types.OrderSummary{
			Subtotal:    100,
			ShippingFee: 10,
			TotalAmount: 110,
			ItemsCount:  1,
		},
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected a typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestServiceCreate(t *testing.T) {
	publisher := &fakePublisher{}
	svc, _ := newTestService(t, publisher, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput("ORD_1"))
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPendingContact, order.OrderStatus)
	assert.Equal(t, enums.OrderTypeManualPayment, order.OrderType)
	assert.Equal(t, "Canada", order.CustomerInfo.Country)
	assert.Equal(t, enums.PreferredContactEmail, order.CustomerInfo.PreferredContact)
	assert.Equal(t, "Not specified", order.OrderItems[0].Size)
	assert.Equal(t, "Not specified", order.OrderItems[0].Color)
	assert.Equal(t, 110.0, order.TotalAmount)
	assert.Equal(t, 1, order.ItemsCount)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "ORD_1", publisher.events[0].OrderReference)
	assert.Equal(t, "Lina Haddad", publisher.events[0].CustomerName)
}

func TestServiceCreateDuplicateReference(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreateInput("ORD_1"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, validCreateInput("ORD_1"))
	assertCode(t, err, pkgerrors.CodeConflict)

	list, err := svc.List(ctx, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Pagination.Total)
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	input := validCreateInput("")
	_, err := svc.Create(ctx, input)
	assertCode(t, err, pkgerrors.CodeValidation)

	input = validCreateInput("ORD_2")
	input.OrderItems = nil
	_, err = svc.Create(ctx, input)
	assertCode(t, err, pkgerrors.CodeValidation)

	input = validCreateInput("ORD_3")
	input.OrderStatus = "lost_in_mail"
	_, err = svc.Create(ctx, input)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceCreatePublishFailureDoesNotFail(t *testing.T) {
	publisher := &fakePublisher{err: assert.AnError}
	svc, _ := newTestService(t, publisher, nil)

	order, err := svc.Create(context.Background(), validCreateInput("ORD_1"))
	require.NoError(t, err)
	assert.Equal(t, "ORD_1", order.OrderReference)
}

func TestServiceUpdateStatusContactedAppendsEachCall(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput("ORD_1"))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{OrderStatus: "contacted"})
	require.NoError(t, err)
	require.Len(t, updated.ContactHistory, 1)
	assert.Equal(t, "phone", updated.ContactHistory[0].Method)
	assert.Equal(t, "Initial contact made with customer", updated.ContactHistory[0].Notes)
	assert.Equal(t, "Admin", updated.ContactHistory[0].AdminUser)

	again, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{OrderStatus: "contacted"})
	require.NoError(t, err)
	assert.Len(t, again.ContactHistory, 2)
}

func TestServiceUpdateStatusTransitions(t *testing.T) {
	svc, repo := newTestService(t, nil, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput("ORD_1"))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{OrderStatus: "shipped"})
	assertCode(t, err, pkgerrors.CodeStateConflict)

	order.OrderStatus = enums.OrderStatusShipped
	require.NoError(t, repo.Update(ctx, order))

	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{OrderStatus: "preparing"})
	assertCode(t, err, pkgerrors.CodeStateConflict)

	updated, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{OrderStatus: "delivered"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, updated.OrderStatus)

	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{OrderStatus: "cancelled"})
	assertCode(t, err, pkgerrors.CodeStateConflict)

	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{OrderStatus: "not_a_status"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceUpdateStatusNotesOnly(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput("ORD_1"))
	require.NoError(t, err)

	notes := "customer asked for gift wrap"
	updated, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{AdminNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.AdminNotes)
	assert.Equal(t, enums.OrderStatusPendingContact, updated.OrderStatus)
	assert.Empty(t, updated.ContactHistory)
}

func TestServiceUpdateStatusNotFound(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), UpdateStatusInput{OrderStatus: "contacted"})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestServiceAddContact(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput("ORD_1"))
	require.NoError(t, err)

	updated, err := svc.AddContact(ctx, order.ID, AddContactInput{Notes: "no answer, retry tomorrow"})
	require.NoError(t, err)
	require.Len(t, updated.ContactHistory, 1)
	assert.Equal(t, "phone", updated.ContactHistory[0].Method)
	assert.Equal(t, enums.OrderStatusContacted, updated.OrderStatus)

	second, err := svc.AddContact(ctx, order.ID, AddContactInput{Method: "whatsapp", Notes: "confirmed sizes"})
	require.NoError(t, err)
	require.Len(t, second.ContactHistory, 2)
	assert.Equal(t, "whatsapp", second.ContactHistory[1].Method)
	assert.Equal(t, enums.OrderStatusContacted, second.OrderStatus)

	_, err = svc.AddContact(ctx, order.ID, AddContactInput{})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceListByStatus(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreateInput("ORD_1"))
	require.NoError(t, err)

	list, err := svc.ListByStatus(ctx, "pending_contact")
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)

	_, err = svc.ListByStatus(ctx, "in_the_mail")
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceDashboardStats(t *testing.T) {
	svc, repo := newTestService(t, nil, nil)
	ctx := context.Background()

	for i, ref := range []string{"ORD_1", "ORD_2", "ORD_3"} {
		input := validCreateInput(ref)
		input.OrderSummary.TotalAmount = 33.333 + float64(i)
		_, err := svc.Create(ctx, input)
		require.NoError(t, err)
	}
	order, err := repo.FindByReference(ctx, "ORD_3")
	require.NoError(t, err)
	order.OrderStatus = enums.OrderStatusShipped
	require.NoError(t, repo.Update(ctx, order))

	stats, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.PendingContactOrders)
	assert.Equal(t, int64(0), stats.ConfirmedOrders)
	assert.Equal(t, int64(1), stats.ShippedOrders)
	assert.Equal(t, 103.0, stats.TotalRevenue)
	assert.Len(t, stats.RecentOrders, 3)
}

func TestServiceCapturePayment(t *testing.T) {
	gateway := &fakeGateway{paymentID: "PAY_123"}
	svc, _ := newTestService(t, nil, gateway)
	ctx := context.Background()

	input := validCreateInput("ORD_1")
	input.OrderType = "online_payment"
	order, err := svc.Create(ctx, input)
	require.NoError(t, err)

	captured, err := svc.CapturePayment(ctx, order.ID, "cnon:card-nonce")
	require.NoError(t, err)
	require.NotNil(t, captured.PaymentID)
	assert.Equal(t, "PAY_123", *captured.PaymentID)
	assert.Equal(t, int64(11000), gateway.lastParams.AmountCents)
	assert.Equal(t, "ORD_1", gateway.lastParams.ReferenceID)

	_, err = svc.CapturePayment(ctx, order.ID, "cnon:card-nonce")
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestServiceCapturePaymentManualOrder(t *testing.T) {
	gateway := &fakeGateway{paymentID: "PAY_123"}
	svc, _ := newTestService(t, nil, gateway)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput("ORD_1"))
	require.NoError(t, err)

	_, err = svc.CapturePayment(ctx, order.ID, "cnon:card-nonce")
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestServiceCapturePaymentValidation(t *testing.T) {
	svc, _ := newTestService(t, nil, &fakeGateway{})

	_, err := svc.CapturePayment(context.Background(), uuid.New(), "")
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceNowIsInjectable(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	impl, ok := svc.(*service)
	require.True(t, ok)

	fixed := time.Date(2025, 8, 12, 10, 0, 0, 0, time.UTC)
	impl.now = func() time.Time { return fixed }

	order, err := svc.Create(context.Background(), validCreateInput("ORD_1"))
	require.NoError(t, err)

	updated, err := svc.AddContact(context.Background(), order.ID, AddContactInput{Notes: "called"})
	require.NoError(t, err)
	assert.Equal(t, fixed, updated.ContactHistory[0].ContactDate)
}
