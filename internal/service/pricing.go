package service

import (
	"context"
	"fmt"

	"pharmacy-order-api/internal/apperr"
	"pharmacy-order-api/internal/config"
	"pharmacy-order-api/internal/dto"
	"pharmacy-order-api/internal/model"
	"pharmacy-order-api/internal/repository"
)

// PricedLine is one cart line with its price snapshot taken from the catalog.
type PricedLine struct {
	ProductID string
	Name      string
	Qty       int64
	UnitCents int64
	LineCents int64
}

type PricingResult struct {
	Lines            []PricedLine
	SubtotalCents    int64
	ShippingCents    int64
	ShippingProvider string
	TotalCents       int64
}

// PricingEngine prices a cart server-side and enforces per-mode eligibility.
// Client-supplied amounts are never trusted.
type PricingEngine interface {
	Price(ctx context.Context, items []dto.CartItem, mode model.FulfillmentType) (*PricingResult, error)
}

type pricingEngineImpl struct {
	productRepo repository.ProductRepository
	shipping    config.Shipping
}

func NewPricingEngine(productRepo repository.ProductRepository, shipping config.Shipping) PricingEngine {
	return &pricingEngineImpl{
		productRepo: productRepo,
		shipping:    shipping,
	}
}

func (e *pricingEngineImpl) Price(ctx context.Context, items []dto.CartItem, mode model.FulfillmentType) (*PricingResult, error) {
	if len(items) == 0 {
		return nil, apperr.InvalidRequest("items is required")
	}

	productIDs := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			return nil, apperr.InvalidField("items.productId", "productId is required")
		}
		if item.Qty < 1 {
			return nil, &apperr.Error{
				Code:       apperr.CodeInvalidRequest,
				Message:    "qty must be a positive integer",
				ProductIDs: []string{item.ProductID},
			}
		}
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			productIDs = append(productIDs, item.ProductID)
		}
	}

	products, err := e.productRepo.FindActiveByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	byID := make(map[string]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var missing []string
	for _, id := range productIDs {
		if byID[id] == nil {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &apperr.Error{
			Code:       apperr.CodeInvalidRequest,
			Message:    "some products are invalid or inactive",
			ProductIDs: missing,
		}
	}

	// A single non-deliverable product blocks the whole delivery order.
	if mode == model.FulfillmentDelivery {
		var ineligible []string
		for _, id := range productIDs {
			if !byID[id].IsDeliverable {
				ineligible = append(ineligible, id)
			}
		}
		if len(ineligible) > 0 {
			names := make([]string, len(ineligible))
			for i, id := range ineligible {
				names[i] = byID[id].Name
			}
			return nil, apperr.IneligibleItems(
				fmt.Sprintf("products not available for delivery: %v", names),
				ineligible,
			)
		}
	}

	var (
		lines    = make([]PricedLine, len(items))
		subtotal int64
		totalQty int64
	)
	for i, item := range items {
		p := byID[item.ProductID]
		line := item.Qty * p.PriceCents
		lines[i] = PricedLine{
			ProductID: p.ID,
			Name:      p.Name,
			Qty:       item.Qty,
			UnitCents: p.PriceCents,
			LineCents: line,
		}
		subtotal += line
		totalQty += item.Qty
	}

	result := &PricingResult{
		Lines:         lines,
		SubtotalCents: subtotal,
		TotalCents:    subtotal,
	}

	if mode == model.FulfillmentDelivery {
		result.ShippingCents = e.shippingFee(totalQty)
		result.ShippingProvider = e.shipping.Provider
		result.TotalCents = subtotal + result.ShippingCents
	}

	return result, nil
}

// shippingFee is a step function of total item quantity: the first
// IncludedUnits items cost the flat base fee, each unit above that adds
// PerUnitCents.
func (e *pricingEngineImpl) shippingFee(totalQty int64) int64 {
	fee := e.shipping.BaseFeeCents
	if extra := totalQty - e.shipping.IncludedUnits; extra > 0 {
		fee += extra * e.shipping.PerUnitCents
	}
	return fee
}
