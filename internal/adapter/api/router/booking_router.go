package router

import (
	"github.com/labstack/echo/v4"

	"rentora/internal/adapter/api/handler"
	"rentora/internal/adapter/api/middleware"
)

func SetupBookingRouter(e *echo.Echo, bookingHandler *handler.BookingHandler, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	bookings := e.Group("/v1/bookings")
	bookings.Use(authMiddleware.Authenticate)

	bookings.POST("", bookingHandler.CreateBooking)
	bookings.GET("", bookingHandler.ListMyBookings)
	bookings.POST("/:id/confirm", bookingHandler.ConfirmBooking)
	bookings.POST("/:id/reject", bookingHandler.RejectBooking)
	bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
	bookings.POST("/:id/annul", bookingHandler.AnnulBooking)
	bookings.DELETE("/:id", bookingHandler.DeleteBooking, adminMiddleware.AdminOnly)

	companies := e.Group("/v1/companies")
	companies.Use(authMiddleware.Authenticate)
	companies.GET("/:id/bookings", bookingHandler.ListCompanyBookings)

	balance := e.Group("/v1/balance")
	balance.Use(authMiddleware.Authenticate)
	balance.GET("/history", bookingHandler.GetBalanceHistory)
}
