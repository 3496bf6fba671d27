package lowstocksvc

import (
	"context"

	"github.com/trandev/salesdesk/internal/service/models/inventoryitem"
)

// StockStatus classifies an on-hand count for the dashboard alert.
type StockStatus string

const (
	StatusOutOfStock StockStatus = "out_of_stock"
	StatusCritical   StockStatus = "critical"
	StatusLow        StockStatus = "low"
	StatusNormal     StockStatus = "normal"
)

// ClassifyStock maps an on-hand count to its alert status.
func ClassifyStock(onHand int) StockStatus {
	switch {
	case onHand == 0:
		return StatusOutOfStock
	case onHand <= 5:
		return StatusCritical
	case onHand <= 10:
		return StatusLow
	default:
		return StatusNormal
	}
}

// Alert is a low-stock inventory record with its classification and the
// suggested stock-in quantity.
type Alert struct {
	inventoryitem.InventoryItem
	Status       StockStatus `json:"status"`
	SuggestedQty int         `json:"suggestedQty"`
}

type inventoryRepository interface {
	ListInventory(ctx context.Context, pageSize int) ([]inventoryitem.InventoryItem, error)
}

// LowStockService surfaces inventory records running low and suggests
// replenishment quantities for stock-in.
type LowStockService struct {
	inventoryRepo inventoryRepository
	threshold     int
	restockTarget int
	minOrderQty   int
	pageSize      int
}

// option is a function that configures the LowStockService.
type option func(*LowStockService)

// MustNewLowStockService creates a new LowStockService.
func MustNewLowStockService(opts ...option) *LowStockService {
	s := &LowStockService{
		threshold:     10,
		restockTarget: 20,
		minOrderQty:   10,
		pageSize:      100,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithInventoryRepository sets the inventory repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithInventoryRepository(repo inventoryRepository) option {
	return func(s *LowStockService) {
		s.inventoryRepo = repo
	}
}

// WithThresholds overrides the alert threshold and replenishment parameters.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithThresholds(threshold, restockTarget, minOrderQty int) option {
	return func(s *LowStockService) {
		if threshold > 0 {
			s.threshold = threshold
		}
		if restockTarget > 0 {
			s.restockTarget = restockTarget
		}
		if minOrderQty > 0 {
			s.minOrderQty = minOrderQty
		}
	}
}

// SuggestedQty is the stock-in quantity proposed for a low record: top the
// variant back up to the restock target, but never order below the minimum.
func (s *LowStockService) SuggestedQty(onHand int) int {
	qty := s.restockTarget - onHand
	if qty < s.minOrderQty {
		return s.minOrderQty
	}

	return qty
}

// ListLowStock returns the inventory records at or below the threshold,
// classified and with a suggested stock-in quantity. A non-positive threshold
// falls back to the configured default.
func (s *LowStockService) ListLowStock(ctx context.Context, threshold int) ([]Alert, error) {
	if threshold <= 0 {
		threshold = s.threshold
	}

	items, err := s.inventoryRepo.ListInventory(ctx, s.pageSize)
	if err != nil {
		return nil, err
	}

	alerts := make([]Alert, 0)
	for _, item := range items {
		if item.OnHand < 0 || item.OnHand > threshold {
			continue
		}
		alerts = append(alerts, Alert{
			InventoryItem: item,
			Status:        ClassifyStock(item.OnHand),
			SuggestedQty:  s.SuggestedQty(item.OnHand),
		})
	}

	return alerts, nil
}
