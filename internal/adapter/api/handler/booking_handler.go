package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"rentora/internal/domain/entity"
	"rentora/internal/usecase"
	"rentora/pkg/errors"
	"rentora/pkg/logger"
	"rentora/pkg/response"
	"rentora/pkg/utils"
)

type BookingHandler struct {
	bookingUseCase *usecase.BookingUseCase
}

func NewBookingHandler(bookingUseCase *usecase.BookingUseCase) *BookingHandler {
	return &BookingHandler{
		bookingUseCase: bookingUseCase,
	}
}

type createBookingRequest struct {
	PropertyID string `json:"property_id" validate:"required"`
	StartDate  string `json:"start_date" validate:"required"`
	EndDate    string `json:"end_date" validate:"required"`
}

type rejectBookingRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return response.Error(c, errors.Validation("start_date must be formatted YYYY-MM-DD", err))
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return response.Error(c, errors.Validation("end_date must be formatted YYYY-MM-DD", err))
	}

	booking, err := h.bookingUseCase.CreateBooking(c.Request().Context(), user, req.PropertyID, start, end)
	if err != nil {
		logger.Error("Error creating booking: %v", err)
		return response.Error(c, err)
	}

	return response.Created(c, booking)
}

func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	booking, err := h.bookingUseCase.ConfirmBooking(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		logger.Error("Error confirming booking: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, booking)
}

func (h *BookingHandler) RejectBooking(c echo.Context) error {
	var req rejectBookingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	booking, err := h.bookingUseCase.RejectBooking(c.Request().Context(), user, c.Param("id"), req.Reason)
	if err != nil {
		logger.Error("Error rejecting booking: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, booking)
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	booking, err := h.bookingUseCase.CancelByTenant(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		logger.Error("Error cancelling booking: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, booking)
}

func (h *BookingHandler) AnnulBooking(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	booking, err := h.bookingUseCase.CancelByCompanyOrAdmin(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		logger.Error("Error annulling booking: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, booking)
}

func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.bookingUseCase.HardDelete(c.Request().Context(), user, c.Param("id")); err != nil {
		logger.Error("Error deleting booking: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, nil)
}

func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	bookings, err := h.bookingUseCase.ListForTenant(c.Request().Context(), user)
	if err != nil {
		logger.Error("Error listing bookings: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, bookings)
}

func (h *BookingHandler) ListCompanyBookings(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	bookings, err := h.bookingUseCase.ListForCompany(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		logger.Error("Error listing company bookings: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, bookings)
}

// GetBalanceHistory returns the caller's own ledger lines, or the
// company's when company_id is given and the caller belongs to it.
func (h *BookingHandler) GetBalanceHistory(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	limit := utils.QueryInt(c, "limit", 50)

	ownerID := user.Username
	kind := entity.OwnerUser
	if companyID := c.QueryParam("company_id"); companyID != "" {
		if user.Role != entity.RoleAdmin && !(user.IsCompanySide() && user.CompanyID == companyID) {
			return response.Error(c, errors.Forbidden("You are not a member of this company", nil))
		}
		ownerID = companyID
		kind = entity.OwnerCompany
	}

	entries, err := h.bookingUseCase.BalanceHistory(c.Request().Context(), ownerID, kind, limit)
	if err != nil {
		logger.Error("Error fetching balance history: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, entries)
}
