package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pharmacy-order-api/internal/apperr"
	"pharmacy-order-api/internal/dto"
	"pharmacy-order-api/internal/service"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateIntentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.OrderID == "" {
		return apperr.InvalidField("orderId", "orderId is required")
	}

	result, err := h.paymentService.CreateIntent(ctx, req.OrderID, req.Provider)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, result)
}

func (h *PaymentHandler) Confirm(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ConfirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.PaymentID == "" {
		return apperr.InvalidField("paymentId", "paymentId is required")
	}

	result, err := h.paymentService.Confirm(ctx, req.PaymentID, req.ExternalRef)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.paymentService.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
