package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nelaglow/internal/dto"
	"nelaglow/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// reportCacheTTL keeps report responses hot for dashboard polling without
// hammering the aggregation queries.
const reportCacheTTL = 60 * time.Second

type ReportService interface {
	FinanceStats(ctx context.Context, period string) (*dto.FinanceStatsResponse, error)
	DailyClose(ctx context.Context, date string) (*dto.DailyCloseResponse, error)
	PendingPayments(ctx context.Context) ([]dto.PendingPaymentRow, error)
	TopProducts(ctx context.Context, period string, limit int) ([]dto.TopProductRow, error)
	Restock(ctx context.Context) ([]dto.RestockRow, error)
}

type reportService struct {
	repo repository.ReportRepository
	rdb  *redis.Client
}

func NewReportService(repo repository.ReportRepository, rdb *redis.Client) ReportService {
	return &reportService{repo: repo, rdb: rdb}
}

// resolveWindow turns a period keyword into a half-open [from, to) interval
// ending now.
func resolveWindow(period string) (time.Time, time.Time) {
	now := time.Now()
	switch period {
	case "week":
		return now.AddDate(0, 0, -7), now
	case "year":
		return now.AddDate(-1, 0, 0), now
	default: // month
		return now.AddDate(0, -1, 0), now
	}
}

func (s *reportService) FinanceStats(ctx context.Context, period string) (*dto.FinanceStatsResponse, error) {
	cacheKey := "reports:finance:" + period
	var cached dto.FinanceStatsResponse
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	from, to := resolveWindow(period)

	ingresos, err := s.repo.SumPayments(ctx, from, to)
	if err != nil {
		return nil, err
	}
	purchases, err := s.repo.SumPurchaseCosts(ctx, from, to)
	if err != nil {
		return nil, err
	}
	deliveryFees, err := s.repo.SumLimaDeliveryFees(ctx, from, to)
	if err != nil {
		return nil, err
	}
	receivables, err := s.repo.PendingReceivables(ctx)
	if err != nil {
		return nil, err
	}
	valuation, err := s.repo.InventoryValuation(ctx)
	if err != nil {
		return nil, err
	}

	egresos := purchases.Add(deliveryFees)
	resp := &dto.FinanceStatsResponse{
		Period:             period,
		From:               from.Format("2006-01-02"),
		To:                 to.Format("2006-01-02"),
		Ingresos:           ingresos,
		Egresos:            egresos,
		Neto:               ingresos.Sub(egresos),
		PendingReceivables: receivables,
		InventoryValuation: valuation,
	}
	s.cacheSet(ctx, cacheKey, resp)
	return resp, nil
}

func (s *reportService) DailyClose(ctx context.Context, date string) (*dto.DailyCloseResponse, error) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("fecha invalida, se espera YYYY-MM-DD: %w", err)
	}

	cacheKey := "reports:daily_close:" + date
	var cached dto.DailyCloseResponse
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	byMethod, err := s.repo.PaymentsByMethodOnDay(ctx, date)
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.OrdersOnDay(ctx, date)
	if err != nil {
		return nil, err
	}

	totalReceived := decimal.Zero
	for _, m := range byMethod {
		totalReceived = totalReceived.Add(m.Total)
	}

	rows := make([]dto.DailyCloseOrder, 0, len(orders))
	for _, o := range orders {
		client := ""
		if o.Client != nil {
			client = o.Client.Name
		}
		rows = append(rows, dto.DailyCloseOrder{
			OrderNumber: o.OrderNumber,
			Client:      client,
			Status:      string(o.Status),
			Total:       o.TotalAmount,
			Paid:        o.PaidAmount,
			Remaining:   o.RemainingAmount,
		})
	}

	resp := &dto.DailyCloseResponse{
		Date:          date,
		TotalReceived: totalReceived,
		ByMethod:      byMethod,
		Orders:        rows,
	}
	s.cacheSet(ctx, cacheKey, resp)
	return resp, nil
}

func (s *reportService) PendingPayments(ctx context.Context) ([]dto.PendingPaymentRow, error) {
	orders, err := s.repo.PendingOrders(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	rows := make([]dto.PendingPaymentRow, 0, len(orders))
	for _, o := range orders {
		client := ""
		if o.Client != nil {
			client = o.Client.Name
		}
		rows = append(rows, dto.PendingPaymentRow{
			OrderID:     o.ID.String(),
			OrderNumber: o.OrderNumber,
			Client:      client,
			Status:      string(o.Status),
			Total:       o.TotalAmount,
			Paid:        o.PaidAmount,
			Remaining:   o.RemainingAmount,
			DaysPending: int(now.Sub(o.CreatedAt).Hours() / 24),
			CreatedAt:   o.CreatedAt.Format("2006-01-02"),
		})
	}
	return rows, nil
}

func (s *reportService) TopProducts(ctx context.Context, period string, limit int) ([]dto.TopProductRow, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	cacheKey := fmt.Sprintf("reports:top_products:%s:%d", period, limit)
	var cached []dto.TopProductRow
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	from, to := resolveWindow(period)
	rows, err := s.repo.TopProducts(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, cacheKey, rows)
	return rows, nil
}

func (s *reportService) Restock(ctx context.Context) ([]dto.RestockRow, error) {
	products, err := s.repo.RestockCandidates(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.RestockRow, 0, len(products))
	for _, p := range products {
		// Replenish up to twice the threshold so the product does not
		// immediately re-trigger the alert.
		needed := 2*p.LowStockThreshold - p.Stock
		if needed < 0 {
			needed = 0
		}
		cost := decimal.Zero
		if p.CostPrice != nil {
			cost = p.CostPrice.Mul(decimal.NewFromInt(int64(needed)))
		}
		rows = append(rows, dto.RestockRow{
			ProductID:     p.ID.String(),
			Name:          p.Name,
			Color:         p.Color,
			Stock:         p.Stock,
			Threshold:     p.LowStockThreshold,
			UnitsNeeded:   needed,
			EstimatedCost: cost,
		})
	}
	return rows, nil
}

// Cache helpers are best-effort: a redis hiccup degrades to a direct query.

func (s *reportService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.rdb == nil {
		return false
	}
	raw, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

func (s *reportService) cacheSet(ctx context.Context, key string, value any) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, reportCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("no se pudo cachear el reporte")
	}
}
