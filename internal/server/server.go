package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"pharmacy-order-api/internal/apperr"
	"pharmacy-order-api/internal/handler"
	"pharmacy-order-api/internal/service"
)

type Server struct {
	echo           *echo.Echo
	catalogHandler *handler.CatalogHandler
	orderHandler   *handler.OrderHandler
	paymentHandler *handler.PaymentHandler
}

func NewServer(
	logger *zap.Logger,
	catalogService service.CatalogService,
	orderService service.OrderService,
	paymentService service.PaymentService,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.HTTPErrorHandler = errorHandler(logger)

	s := &Server{
		echo:           e,
		catalogHandler: handler.NewCatalogHandler(catalogService),
		orderHandler:   handler.NewOrderHandler(orderService),
		paymentHandler: handler.NewPaymentHandler(paymentService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	catalog := api.Group("/catalog")
	catalog.GET("/categories", s.catalogHandler.ListCategories)
	catalog.GET("/products", s.catalogHandler.ListProducts)

	api.GET("/delivery/windows", s.orderHandler.ListWindows)

	orders := api.Group("/orders")
	orders.POST("", s.orderHandler.PlaceOrder)
	orders.GET("/:id", s.orderHandler.GetOrder)
	orders.GET("/:id/receipt", s.orderHandler.GetReceipt)
	orders.GET("/:id/receipt/pdf", s.orderHandler.GetReceiptPDF)
	orders.GET("/:id/status", s.orderHandler.GetStatus)
	orders.POST("/:id/cancel", s.orderHandler.Cancel)

	payments := api.Group("/payments")
	payments.POST("/intent", s.paymentHandler.CreateIntent)
	payments.POST("/confirm", s.paymentHandler.Confirm)
	payments.GET("/:id", s.paymentHandler.Get)
}

// errorHandler maps the domain error taxonomy onto HTTP statuses and keeps
// the structured detail (ids, field names) in the response body.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			body := echo.Map{
				"code":    appErr.Code,
				"message": appErr.Message,
			}
			if len(appErr.ProductIDs) > 0 {
				body["productIds"] = appErr.ProductIDs
			}
			if appErr.Field != "" {
				body["field"] = appErr.Field
			}
			_ = c.JSON(statusFor(appErr.Code), body)
			return
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			_ = c.JSON(httpErr.Code, echo.Map{"message": httpErr.Message})
			return
		}

		logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
}

func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeInvalidRequest:
		return http.StatusBadRequest
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeIneligibleItems:
		return http.StatusUnprocessableEntity
	case apperr.CodeCapacityExceeded, apperr.CodeInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
