package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selimbouaziz/ateliera-backend/pkg/db/models"
	"github.com/selimbouaziz/ateliera-backend/pkg/enums"
	"github.com/selimbouaziz/ateliera-backend/pkg/pagination"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByReference(ctx context.Context, reference string) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	List(ctx context.Context, params pagination.Params) ([]models.Order, int64, error)
	ListByStatus(ctx context.Context, status enums.OrderStatus) ([]models.Order, error)
	CountByStatus(ctx context.Context, status enums.OrderStatus) (int64, error)
	Count(ctx context.Context) (int64, error)
	SumTotalAmount(ctx context.Context) (float64, error)
	Recent(ctx context.Context, limit int) ([]models.Order, error)
}
