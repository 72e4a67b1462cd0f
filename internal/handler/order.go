package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pharmacy-order-api/internal/dto"
	"pharmacy-order-api/internal/model"
	"pharmacy-order-api/internal/service"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	input := service.PlaceOrderInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Items:         req.Items,
		Fulfillment:   service.Pickup{},
	}
	if req.Mode() == model.FulfillmentDelivery {
		input.Fulfillment = service.DeliverTo{
			Address:  req.Delivery.Address,
			WindowID: req.Delivery.WindowID,
		}
	}

	order, err := h.orderService.PlaceOrder(ctx, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, payments, err := h.orderService.GetOrder(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order":    order,
		"payments": payments,
	})
}

func (h *OrderHandler) GetStatus(c echo.Context) error {
	ctx := c.Request().Context()

	status, err := h.orderService.GetStatus(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, status)
}

func (h *OrderHandler) GetReceipt(c echo.Context) error {
	ctx := c.Request().Context()

	receipt, err := h.orderService.GetReceipt(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, receipt)
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.CancelOrder(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListWindows(c echo.Context) error {
	ctx := c.Request().Context()

	windows, err := h.orderService.ListWindows(ctx, c.QueryParam("date"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, windows)
}
