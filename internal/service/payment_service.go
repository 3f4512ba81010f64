package service

import (
	"context"
	"errors"
	"time"

	"nelaglow/internal/dto"
	"nelaglow/internal/model"
	"nelaglow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentService interface {
	// Add registers an installment against the order's balance and advances
	// the status monotonically: PAID once the balance is covered, otherwise
	// PARTIAL_PAYMENT only if the order was still PENDING. It never regresses
	// a shipped or delivered order.
	Add(ctx context.Context, userID, orderID uuid.UUID, req dto.PaymentRequest) (*dto.OrderResponse, error)
}

type paymentService struct {
	repo repository.OrderRepository
}

func NewPaymentService(repo repository.OrderRepository) PaymentService {
	return &paymentService{repo: repo}
}

func (s *paymentService) Add(ctx context.Context, userID, orderID uuid.UUID, req dto.PaymentRequest) (*dto.OrderResponse, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	// The ledger only moves forward: corrections are compensating records, not
	// negative amounts.
	if !req.Amount.IsPositive() {
		return nil, errors.New("el monto del pago debe ser mayor a cero")
	}

	var order *model.Order
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Lock the order row so concurrent payments serialize: the balance
		// below is computed from the latest committed amounts, never from a
		// snapshot another payment may have outdated.
		var err error
		order, err = s.repo.FindByIDForUpdateTx(tx, orderID)
		if err != nil {
			return ErrOrderNotFound
		}
		switch order.Status {
		case model.StatusDelivered, model.StatusCancelled:
			return ErrOrderNotPayable
		}

		paid := order.PaidAmount.Add(req.Amount)
		remaining := order.TotalAmount.Sub(paid)

		from := order.Status
		newStatus := from
		switch {
		case paid.GreaterThanOrEqual(order.TotalAmount):
			switch from {
			case model.StatusPending, model.StatusStockReserved, model.StatusPartialPayment:
				newStatus = model.StatusPaid
			}
		case from == model.StatusPending:
			newStatus = model.StatusPartialPayment
		}

		payment := model.Payment{
			OrderID:    order.ID,
			Amount:     req.Amount,
			Method:     req.Method,
			ProofRef:   req.ProofRef,
			Notes:      req.Notes,
			ReceivedAt: time.Now(),
		}
		if err := s.repo.CreatePaymentTx(tx, &payment); err != nil {
			return err
		}
		if err := s.repo.UpdateAmountsTx(tx, order.ID, order.SubtotalAmount, order.TotalAmount, paid, remaining); err != nil {
			return err
		}
		order.Payments = append(order.Payments, payment)
		order.PaidAmount = paid
		order.RemainingAmount = remaining

		if newStatus == from {
			return nil
		}
		if err := s.repo.UpdateStatusTx(tx, order.ID, newStatus); err != nil {
			return err
		}
		order.Status = newStatus
		return s.repo.CreateHistoryTx(tx, &model.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: &from,
			ToStatus:   newStatus,
			ChangedBy:  userID,
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	return orderToResponse(order), nil
}
