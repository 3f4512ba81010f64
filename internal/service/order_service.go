package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nelaglow/internal/dto"
	"nelaglow/internal/model"
	"nelaglow/internal/repository"
	"nelaglow/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	// ImportHistorical backfills an order fulfilled before the system existed.
	// It never touches the stock ledger: the goods left inventory outside the
	// system's observation window.
	ImportHistorical(ctx context.Context, userID uuid.UUID, req dto.HistoricalOrderRequest) (*dto.OrderResponse, error)
	AddItem(ctx context.Context, userID, orderID uuid.UUID, req dto.AddItemRequest) (*dto.OrderResponse, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID, notes string) error
	MarkShipped(ctx context.Context, userID, orderID uuid.UUID, req dto.ShipOrderRequest) error
	MarkDelivered(ctx context.Context, userID, orderID uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
}

type orderService struct {
	repo        repository.OrderRepository
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	stock       StockService
	dispatcher  *worker.Dispatcher
}

func NewOrderService(
	repo repository.OrderRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	stock StockService,
	dispatcher *worker.Dispatcher,
) OrderService {
	return &orderService{
		repo:        repo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		stock:       stock,
		dispatcher:  dispatcher,
	}
}

// resolvedItem carries the pre-flight product lookup for one order line.
type resolvedItem struct {
	product   *model.Product
	quantity  int
	unitPrice decimal.Decimal
	subtotal  decimal.Decimal
}

// ── Create ────────────────────────────────────────────────────────────────────
// Full ACID transaction:
//   1. Pre-flight: resolve client and products, check stock for every line
//   2. BEGIN TX: mint order number, insert order + items + shipping + payment
//      + initial history row, apply one SALE_OUT movement per line
//   3. COMMIT — any failure at any step rolls back everything
//   4. (async) low-stock alerts for lines that fell to their threshold

func (s *orderService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, ErrClientNotFound
	}
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, ErrClientNotFound
	}

	shippingType := model.ShippingType(req.ShippingType)

	// Contraentrega is collected by our own courier — Lima delivery only.
	if req.Shipping != nil && req.Shipping.IsContraentrega && shippingType != model.ShippingDeliveryLima {
		return nil, ErrInvalidShippingConfig
	}

	resolved, subtotal, err := s.resolveItems(ctx, req.Items, true)
	if err != nil {
		return nil, err
	}

	shippingAmount := decimal.Zero
	if req.Shipping != nil {
		shippingAmount = req.Shipping.DeliveryFee
	}
	total := subtotal.Add(shippingAmount)

	paid := decimal.Zero
	if req.InitialPayment != nil {
		paid = req.InitialPayment.Amount
	}
	remaining := total.Sub(paid)

	// Provincia goes through a third-party agency: full upfront payment only.
	if shippingType == model.ShippingProvincia && paid.LessThan(total) {
		return nil, ErrPaymentRequired
	}

	status := deriveInitialStatus(paid, total)

	var order model.Order
	var lowStock []worker.RestockAlertPayload
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		orderNumber, err := s.repo.NextOrderNumber(ctx, tx)
		if err != nil {
			return err
		}

		order = model.Order{
			OrderNumber:     orderNumber,
			ClientID:        clientID,
			UserID:          userID,
			Status:          status,
			ShippingType:    shippingType,
			SubtotalAmount:  subtotal,
			ShippingAmount:  shippingAmount,
			TotalAmount:     total,
			PaidAmount:      paid,
			RemainingAmount: remaining,
			Notes:           req.Notes,
		}
		for _, r := range resolved {
			order.Items = append(order.Items, model.OrderItem{
				ProductID: r.product.ID,
				Quantity:  r.quantity,
				UnitPrice: r.unitPrice,
				Subtotal:  r.subtotal,
			})
		}
		if req.InitialPayment != nil {
			order.Payments = append(order.Payments, model.Payment{
				Amount:     req.InitialPayment.Amount,
				Method:     req.InitialPayment.Method,
				ProofRef:   req.InitialPayment.ProofRef,
				Notes:      req.InitialPayment.Notes,
				ReceivedAt: time.Now(),
			})
		}
		if req.Shipping != nil {
			order.Shipping = &model.Shipping{
				RecipientName:   req.Shipping.RecipientName,
				Address:         req.Shipping.Address,
				District:        req.Shipping.District,
				Agency:          req.Shipping.Agency,
				DeliveryFee:     req.Shipping.DeliveryFee,
				IsContraentrega: req.Shipping.IsContraentrega,
			}
		}
		// Initial creation gets its own history row (FromStatus nil).
		order.History = append(order.History, model.OrderStatusHistory{
			ToStatus:  status,
			ChangedBy: userID,
		})

		if err := s.repo.CreateTx(tx, &order); err != nil {
			return err
		}

		ref := fmt.Sprintf("Pedido #%d", orderNumber)
		for _, r := range resolved {
			_, newStock, err := s.stock.ApplyMovementTx(tx, ApplyMovementInput{
				ProductID: r.product.ID,
				Type:      model.MovementSaleOut,
				Quantity:  r.quantity,
				Reference: &ref,
				OrderID:   &order.ID,
				UserID:    userID,
			})
			if err != nil {
				return err
			}
			if newStock <= r.product.LowStockThreshold {
				lowStock = append(lowStock, worker.RestockAlertPayload{
					ProductID:   r.product.ID.String(),
					ProductName: r.product.Name,
					Stock:       newStock,
					Threshold:   r.product.LowStockThreshold,
				})
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.enqueueAlerts(ctx, lowStock)

	resp := orderToResponse(&order)
	resp.Client = client.Name
	for i, r := range resolved {
		resp.Items[i].Product = r.product.Name
	}
	return resp, nil
}

// ── ImportHistorical ──────────────────────────────────────────────────────────

func (s *orderService) ImportHistorical(ctx context.Context, userID uuid.UUID, req dto.HistoricalOrderRequest) (*dto.OrderResponse, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, ErrClientNotFound
	}
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		return nil, ErrClientNotFound
	}

	createdAt, err := time.Parse(time.RFC3339, req.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("created_at invalido: %w", err)
	}
	if createdAt.After(time.Now()) {
		return nil, errors.New("created_at debe estar en el pasado")
	}

	// Products must exist so the items preserve referential integrity, but
	// stock is deliberately not checked nor decremented.
	resolved, subtotal, err := s.resolveItems(ctx, req.Items, false)
	if err != nil {
		return nil, err
	}

	shippingAmount := decimal.Zero
	if req.Shipping != nil {
		shippingAmount = req.Shipping.DeliveryFee
	}
	total := subtotal.Add(shippingAmount)

	paid := decimal.Zero
	for _, p := range req.Payments {
		paid = paid.Add(p.Amount)
	}
	remaining := total.Sub(paid)
	status := model.OrderStatus(req.Status)

	importNote := "importacion de pedido historico"

	var order model.Order
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		orderNumber, err := s.repo.NextOrderNumber(ctx, tx)
		if err != nil {
			return err
		}

		order = model.Order{
			OrderNumber:     orderNumber,
			ClientID:        clientID,
			UserID:          userID,
			Status:          status,
			ShippingType:    model.ShippingType(req.ShippingType),
			SubtotalAmount:  subtotal,
			ShippingAmount:  shippingAmount,
			TotalAmount:     total,
			PaidAmount:      paid,
			RemainingAmount: remaining,
			Notes:           req.Notes,
			CreatedAt:       createdAt,
		}
		for _, r := range resolved {
			order.Items = append(order.Items, model.OrderItem{
				ProductID: r.product.ID,
				Quantity:  r.quantity,
				UnitPrice: r.unitPrice,
				Subtotal:  r.subtotal,
			})
		}
		for _, p := range req.Payments {
			order.Payments = append(order.Payments, model.Payment{
				Amount:     p.Amount,
				Method:     p.Method,
				ProofRef:   p.ProofRef,
				Notes:      p.Notes,
				ReceivedAt: createdAt,
			})
		}
		if req.Shipping != nil {
			shippedAt := createdAt
			shipping := &model.Shipping{
				RecipientName:   req.Shipping.RecipientName,
				Address:         req.Shipping.Address,
				District:        req.Shipping.District,
				Agency:          req.Shipping.Agency,
				DeliveryFee:     req.Shipping.DeliveryFee,
				IsContraentrega: req.Shipping.IsContraentrega,
				ShippedAt:       &shippedAt,
			}
			if status == model.StatusDelivered {
				deliveredAt := createdAt
				delivered := "entregado"
				shipping.DeliveredAt = &deliveredAt
				shipping.DeliveryStatus = &delivered
			}
			order.Shipping = shipping
		}
		order.History = append(order.History, model.OrderStatusHistory{
			ToStatus:  status,
			ChangedBy: userID,
			Notes:     &importNote,
		})

		// No stock ledger calls here — mixing backfill with the live ledger
		// would silently corrupt it.
		return s.repo.CreateTx(tx, &order)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := orderToResponse(&order)
	for i, r := range resolved {
		resp.Items[i].Product = r.product.Name
	}
	return resp, nil
}

// ── AddItem ───────────────────────────────────────────────────────────────────

func (s *orderService) AddItem(ctx context.Context, userID, orderID uuid.UUID, req dto.AddItemRequest) (*dto.OrderResponse, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	resolved, lineSubtotal, err := s.resolveItems(ctx, []dto.OrderItemRequest{{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	}}, true)
	if err != nil {
		return nil, err
	}
	line := resolved[0]

	var order *model.Order
	var lowStock []worker.RestockAlertPayload
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Lock the order row so the new amounts grow from the latest committed
		// balance, not from a snapshot a concurrent mutation may have outdated.
		var err error
		order, err = s.repo.FindByIDForUpdateTx(tx, orderID)
		if err != nil {
			return ErrOrderNotFound
		}
		switch order.Status {
		case model.StatusCancelled, model.StatusDelivered, model.StatusShipped:
			return ErrOrderNotEditable
		}

		ref := fmt.Sprintf("Pedido #%d", order.OrderNumber)
		_, newStock, err := s.stock.ApplyMovementTx(tx, ApplyMovementInput{
			ProductID: line.product.ID,
			Type:      model.MovementSaleOut,
			Quantity:  line.quantity,
			Reference: &ref,
			OrderID:   &order.ID,
			UserID:    userID,
		})
		if err != nil {
			return err
		}
		if newStock <= line.product.LowStockThreshold {
			lowStock = append(lowStock, worker.RestockAlertPayload{
				ProductID:   line.product.ID.String(),
				ProductName: line.product.Name,
				Stock:       newStock,
				Threshold:   line.product.LowStockThreshold,
			})
		}

		item := &model.OrderItem{
			OrderID:   order.ID,
			ProductID: line.product.ID,
			Quantity:  line.quantity,
			UnitPrice: line.unitPrice,
			Subtotal:  line.subtotal,
		}
		if err := s.repo.CreateItemTx(tx, item); err != nil {
			return err
		}
		order.Items = append(order.Items, *item)

		subtotal := order.SubtotalAmount.Add(lineSubtotal)
		total := subtotal.Add(order.ShippingAmount)
		remaining := total.Sub(order.PaidAmount)

		// Paid amount is untouched; only the balance grows.
		if err := s.repo.UpdateAmountsTx(tx, order.ID, subtotal, total, order.PaidAmount, remaining); err != nil {
			return err
		}
		order.SubtotalAmount = subtotal
		order.TotalAmount = total
		order.RemainingAmount = remaining
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.enqueueAlerts(ctx, lowStock)
	return orderToResponse(order), nil
}

// ── Cancel ────────────────────────────────────────────────────────────────────
// Restores stock for every item via RETURN_IN movements; the order's movements
// then net to zero. Payments are never reversed here — refund reconciliation
// happens outside the engine.

func (s *orderService) Cancel(ctx context.Context, userID, orderID uuid.UUID, notes string) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return ErrOrderNotFound
	}
	if !order.Status.CanTransitionTo(model.StatusCancelled) {
		return &InvalidTransitionError{From: order.Status, To: model.StatusCancelled}
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ref := fmt.Sprintf("Pedido #%d", order.OrderNumber)
		cancelNotes := notes
		for _, item := range order.Items {
			_, _, err := s.stock.ApplyMovementTx(tx, ApplyMovementInput{
				ProductID: item.ProductID,
				Type:      model.MovementReturnIn,
				Quantity:  item.Quantity,
				Reference: &ref,
				OrderID:   &order.ID,
				UserID:    userID,
				Notes:     &cancelNotes,
			})
			if err != nil {
				return err
			}
		}

		if err := s.repo.UpdateStatusTx(tx, order.ID, model.StatusCancelled); err != nil {
			return err
		}
		from := order.Status
		return s.repo.CreateHistoryTx(tx, &model.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: &from,
			ToStatus:   model.StatusCancelled,
			ChangedBy:  userID,
			Notes:      &cancelNotes,
		})
	})
}

// ── MarkShipped / MarkDelivered ──────────────────────────────────────────────
// Pure status + shipping sub-field transitions; no stock effect.

func (s *orderService) MarkShipped(ctx context.Context, userID, orderID uuid.UUID, req dto.ShipOrderRequest) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return ErrOrderNotFound
	}
	if !order.Status.CanTransitionTo(model.StatusShipped) {
		return &InvalidTransitionError{From: order.Status, To: model.StatusShipped}
	}

	tracking := req.TrackingCode
	if tracking == nil && order.Shipping != nil {
		tracking = order.Shipping.TrackingCode
	}
	if order.ShippingType == model.ShippingProvincia && (tracking == nil || *tracking == "") {
		return ErrTrackingCodeRequired
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		now := time.Now()
		shipping := order.Shipping
		if shipping == nil {
			shipping = &model.Shipping{OrderID: order.ID}
		}
		shipping.TrackingCode = tracking
		shipping.ShippedAt = &now
		if req.DeliveryStatus != nil {
			shipping.DeliveryStatus = req.DeliveryStatus
		}
		if err := s.repo.UpdateShippingTx(tx, shipping); err != nil {
			return err
		}

		if err := s.repo.UpdateStatusTx(tx, order.ID, model.StatusShipped); err != nil {
			return err
		}
		from := order.Status
		return s.repo.CreateHistoryTx(tx, &model.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: &from,
			ToStatus:   model.StatusShipped,
			ChangedBy:  userID,
		})
	})
}

func (s *orderService) MarkDelivered(ctx context.Context, userID, orderID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return ErrOrderNotFound
	}
	if !order.Status.CanTransitionTo(model.StatusDelivered) {
		return &InvalidTransitionError{From: order.Status, To: model.StatusDelivered}
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if order.Shipping != nil {
			now := time.Now()
			delivered := "entregado"
			order.Shipping.DeliveredAt = &now
			order.Shipping.DeliveryStatus = &delivered
			if err := s.repo.UpdateShippingTx(tx, order.Shipping); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateStatusTx(tx, order.ID, model.StatusDelivered); err != nil {
			return err
		}
		from := order.Status
		return s.repo.CreateHistoryTx(tx, &model.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: &from,
			ToStatus:   model.StatusDelivered,
			ChangedBy:  userID,
		})
	})
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return orderToResponse(order), nil
}

func (s *orderService) List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		rows = append(rows, *orderToResponse(&orders[i]))
	}
	return &dto.OrderListResponse{
		Data:  rows,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// resolveItems validates every requested line against the catalog and, when
// checkStock is set, against current availability — all before any write.
func (s *orderService) resolveItems(ctx context.Context, items []dto.OrderItemRequest, checkStock bool) ([]resolvedItem, decimal.Decimal, error) {
	resolved := make([]resolvedItem, 0, len(items))
	subtotal := decimal.Zero

	for _, item := range items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, decimal.Zero, ErrProductNotFound
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, decimal.Zero, ErrProductNotFound
		}
		if !p.Active {
			return nil, decimal.Zero, fmt.Errorf("producto %q esta inactivo y no puede venderse", p.Name)
		}
		if p.IsParent() {
			return nil, decimal.Zero, ErrParentNotSellable
		}
		if checkStock && p.Stock < item.Quantity {
			return nil, decimal.Zero, &InsufficientStockError{
				ProductName: p.Name,
				Requested:   item.Quantity,
				Available:   p.Stock,
			}
		}

		lineSubtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)
		resolved = append(resolved, resolvedItem{
			product:   p,
			quantity:  item.Quantity,
			unitPrice: item.UnitPrice,
			subtotal:  lineSubtotal,
		})
	}
	return resolved, subtotal, nil
}

func deriveInitialStatus(paid, total decimal.Decimal) model.OrderStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return model.StatusPaid
	case paid.IsPositive():
		return model.StatusPartialPayment
	default:
		return model.StatusPending
	}
}

func (s *orderService) enqueueAlerts(ctx context.Context, alerts []worker.RestockAlertPayload) {
	if s.dispatcher == nil {
		return
	}
	for _, a := range alerts {
		_ = s.dispatcher.EnqueueRestockAlert(ctx, a)
	}
}

func orderToResponse(o *model.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, dto.OrderItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Product:   name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}

	payments := make([]dto.PaymentResponse, 0, len(o.Payments))
	for _, p := range o.Payments {
		payments = append(payments, dto.PaymentResponse{
			ID:         p.ID.String(),
			Amount:     p.Amount,
			Method:     p.Method,
			ProofRef:   p.ProofRef,
			Notes:      p.Notes,
			ReceivedAt: p.ReceivedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	history := make([]dto.StatusHistoryResponse, 0, len(o.History))
	for _, h := range o.History {
		var from *string
		if h.FromStatus != nil {
			f := string(*h.FromStatus)
			from = &f
		}
		history = append(history, dto.StatusHistoryResponse{
			FromStatus: from,
			ToStatus:   string(h.ToStatus),
			ChangedBy:  h.ChangedBy.String(),
			Notes:      h.Notes,
			CreatedAt:  h.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	resp := &dto.OrderResponse{
		ID:              o.ID.String(),
		OrderNumber:     o.OrderNumber,
		ClientID:        o.ClientID.String(),
		Status:          string(o.Status),
		ShippingType:    string(o.ShippingType),
		SubtotalAmount:  o.SubtotalAmount,
		ShippingAmount:  o.ShippingAmount,
		TotalAmount:     o.TotalAmount,
		PaidAmount:      o.PaidAmount,
		RemainingAmount: o.RemainingAmount,
		Items:           items,
		Payments:        payments,
		History:         history,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if o.Client != nil {
		resp.Client = o.Client.Name
	}
	if o.Shipping != nil {
		sh := &dto.ShippingResponse{
			RecipientName:   o.Shipping.RecipientName,
			Address:         o.Shipping.Address,
			District:        o.Shipping.District,
			Agency:          o.Shipping.Agency,
			DeliveryFee:     o.Shipping.DeliveryFee,
			IsContraentrega: o.Shipping.IsContraentrega,
			TrackingCode:    o.Shipping.TrackingCode,
			DeliveryStatus:  o.Shipping.DeliveryStatus,
		}
		if o.Shipping.ShippedAt != nil {
			t := o.Shipping.ShippedAt.Format("2006-01-02T15:04:05Z")
			sh.ShippedAt = &t
		}
		if o.Shipping.DeliveredAt != nil {
			t := o.Shipping.DeliveredAt.Format("2006-01-02T15:04:05Z")
			sh.DeliveredAt = &t
		}
		resp.Shipping = sh
	}
	return resp
}
