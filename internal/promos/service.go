package promos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/selimbouaziz/ateliera-backend/pkg/db"
	"github.com/selimbouaziz/ateliera-backend/pkg/db/models"
	pkgerrors "github.com/selimbouaziz/ateliera-backend/pkg/errors"
)

const (
	messageInvalidCode = "Invalid promo code"
	messageExpiredCode = "Promo code expired"
)

// CreateInput carries an admin promo code definition.
type CreateInput struct {
	Code       string     `json:"code" validate:"required"`
	Discount   float64    `json:"discount" validate:"required,gt=0,lte=100"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
}

// ApplyResult is the checkout outcome. Failed applications are results,
// not errors; callers serve them with a 200.
type ApplyResult struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message,omitempty"`
	Code           string  `json:"code,omitempty"`
	Discount       float64 `json:"discount,omitempty"`
	DiscountAmount float64 `json:"discountAmount"`
	FinalAmount    float64 `json:"finalAmount"`
}

// Service defines the promo code operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.PromoCode, error)
	Apply(ctx context.Context, code string, totalAmount float64) (*ApplyResult, error)
	List(ctx context.Context) ([]models.PromoCode, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the promo service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promos repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.PromoCode, error) {
	if strings.TrimSpace(input.Code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code required")
	}
	if input.Discount <= 0 || input.Discount > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be a percentage between 0 and 100")
	}

	promo := &models.PromoCode{
		Code:       input.Code,
		Discount:   input.Discount,
		IsActive:   true,
		ExpiryDate: input.ExpiryDate,
	}
	created, err := s.repo.Create(ctx, promo)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "promo code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create promo code")
	}
	return created, nil
}

// Apply computes the discount in decimal arithmetic so the discount and
// final amounts always sum back to the input total. The total is stored
// as given; it is not checked for sign.
func (s *service) Apply(ctx context.Context, code string, totalAmount float64) (*ApplyResult, error) {
	promo, err := s.repo.FindActiveByCode(ctx, code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &ApplyResult{Success: false, Message: messageInvalidCode}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up promo code")
	}

	if promo.ExpiryDate != nil && s.now().After(*promo.ExpiryDate) {
		return &ApplyResult{Success: false, Message: messageExpiredCode}, nil
	}

	total := decimal.NewFromFloat(totalAmount)
	discount := total.
		Mul(decimal.NewFromFloat(promo.Discount)).
		Div(decimal.NewFromInt(100))
	final := total.Sub(discount)

	discountAmount, _ := discount.Float64()
	finalAmount, _ := final.Float64()
	return &ApplyResult{
		Success:        true,
		Code:           promo.Code,
		Discount:       promo.Discount,
		DiscountAmount: discountAmount,
		FinalAmount:    finalAmount,
	}, nil
}

func (s *service) List(ctx context.Context) ([]models.PromoCode, error) {
	promos, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promo codes")
	}
	return promos, nil
}
