package service

import (
	"context"
	"errors"

	"nelaglow/internal/dto"
	"nelaglow/internal/model"
	"nelaglow/internal/repository"
	"nelaglow/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ApplyMovementInput describes one kardex entry to record.
type ApplyMovementInput struct {
	ProductID uuid.UUID
	Type      model.MovementType
	Quantity  int
	UnitCost  *decimal.Decimal
	Reference *string
	OrderID   *uuid.UUID
	UserID    uuid.UUID
	Notes     *string
}

// StockService is the only code path allowed to change Product.Stock. Every
// change is a paired {movement row, stock counter update}: both commit or
// both roll back.
type StockService interface {
	// ApplyMovementTx records a movement and updates the stock counter inside
	// the caller's transaction. Returns the created movement and the stock
	// level after the update. Outbound movements go through a guarded
	// conditional decrement, so stock can never race below zero.
	ApplyMovementTx(tx *gorm.DB, in ApplyMovementInput) (*model.StockMovement, int, error)

	// RegisterPurchaseEntry applies each line as an independent PURCHASE_IN
	// movement inside one shared transaction; any bad line aborts all.
	RegisterPurchaseEntry(ctx context.Context, userID uuid.UUID, req dto.PurchaseEntryRequest) error

	// ApplyAdjustment records a manual ADJUSTMENT_IN / ADJUSTMENT_OUT.
	ApplyAdjustment(ctx context.Context, userID uuid.UUID, req dto.AdjustmentRequest) (*dto.MovementResponse, error)

	ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
}

type stockService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	dispatcher   *worker.Dispatcher
}

func NewStockService(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	dispatcher *worker.Dispatcher,
) StockService {
	return &stockService{productRepo: productRepo, movementRepo: movementRepo, dispatcher: dispatcher}
}

func (s *stockService) ApplyMovementTx(tx *gorm.DB, in ApplyMovementInput) (*model.StockMovement, int, error) {
	product, err := s.productRepo.FindByIDTx(tx, in.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrProductNotFound
		}
		return nil, 0, err
	}

	newStock := product.Stock
	if in.Type.Inbound() {
		if err := s.productRepo.IncrementStockTx(tx, in.ProductID, in.Quantity); err != nil {
			return nil, 0, err
		}
		newStock += in.Quantity
	} else {
		ok, err := s.productRepo.DecrementStockGuarded(tx, in.ProductID, in.Quantity)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			return nil, 0, &InsufficientStockError{
				ProductName: product.Name,
				Requested:   in.Quantity,
				Available:   product.Stock,
			}
		}
		newStock -= in.Quantity
	}

	mov := &model.StockMovement{
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		Reference: in.Reference,
		OrderID:   in.OrderID,
		UserID:    in.UserID,
		Notes:     in.Notes,
	}
	if err := s.movementRepo.CreateTx(tx, mov); err != nil {
		return nil, 0, err
	}
	return mov, newStock, nil
}

func (s *stockService) RegisterPurchaseEntry(ctx context.Context, userID uuid.UUID, req dto.PurchaseEntryRequest) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}

	return runTx(ctx, s.productRepo.DB(), func(tx *gorm.DB) error {
		for _, line := range req.Entries {
			pid, err := uuid.Parse(line.ProductID)
			if err != nil {
				return ErrProductNotFound
			}
			unitCost := line.UnitCost
			_, _, err = s.ApplyMovementTx(tx, ApplyMovementInput{
				ProductID: pid,
				Type:      model.MovementPurchaseIn,
				Quantity:  line.Quantity,
				UnitCost:  &unitCost,
				Reference: req.Reference,
				UserID:    userID,
				Notes:     line.Notes,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *stockService) ApplyAdjustment(ctx context.Context, userID uuid.UUID, req dto.AdjustmentRequest) (*dto.MovementResponse, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var mov *model.StockMovement
	var newStock int
	txErr := runTx(ctx, s.productRepo.DB(), func(tx *gorm.DB) error {
		mov, newStock, err = s.ApplyMovementTx(tx, ApplyMovementInput{
			ProductID: pid,
			Type:      model.MovementType(req.Type),
			Quantity:  req.Quantity,
			Reference: req.Reference,
			UserID:    userID,
			Notes:     req.Notes,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notifyIfLow(ctx, pid, newStock)
	return movementToResponse(mov), nil
}

func (s *stockService) ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	movements, total, err := s.movementRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.MovementResponse, 0, len(movements))
	for i := range movements {
		rows = append(rows, *movementToResponse(&movements[i]))
	}
	return &dto.MovementListResponse{
		Data:  rows,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// notifyIfLow enqueues a restock alert when the product fell to or below its
// threshold. Best-effort: a queue failure never affects the committed ledger.
func (s *stockService) notifyIfLow(ctx context.Context, productID uuid.UUID, newStock int) {
	if s.dispatcher == nil {
		return
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil || product.IsParent() || newStock > product.LowStockThreshold {
		return
	}
	_ = s.dispatcher.EnqueueRestockAlert(ctx, worker.RestockAlertPayload{
		ProductID:   product.ID.String(),
		ProductName: product.Name,
		Stock:       newStock,
		Threshold:   product.LowStockThreshold,
	})
}

func movementToResponse(m *model.StockMovement) *dto.MovementResponse {
	resp := &dto.MovementResponse{
		ID:        m.ID.String(),
		ProductID: m.ProductID.String(),
		Type:      string(m.Type),
		Quantity:  m.Quantity,
		UnitCost:  m.UnitCost,
		Reference: m.Reference,
		UserID:    m.UserID.String(),
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if m.OrderID != nil {
		id := m.OrderID.String()
		resp.OrderID = &id
	}
	if m.Product != nil {
		resp.Product = m.Product.Name
	}
	return resp
}
