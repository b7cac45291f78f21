package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"nextfunnel-checkout/internal/handler"
	"nextfunnel-checkout/internal/service"
)

type Server struct {
	echo            *echo.Echo
	checkoutHandler *handler.CheckoutHandler
}

func NewServer(
	checkoutService service.CheckoutService,
	captureService service.CaptureService,
	razorpayService service.RazorpayService,
) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:            e,
		checkoutHandler: handler.NewCheckoutHandler(checkoutService, captureService, razorpayService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- orders --------
	api.POST("/orders", s.checkoutHandler.CreateOrder)
	api.GET("/orders/:orderId", s.checkoutHandler.CheckOrder)
	api.POST("/orders/:orderId/verify", s.checkoutHandler.VerifyPayment)

	// -------- provider webhooks --------
	api.POST("/webhooks/payment", s.checkoutHandler.PaymentWebhook)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
