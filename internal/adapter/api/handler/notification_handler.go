package handler

import (
	"github.com/labstack/echo/v4"

	"rentora/internal/usecase"
	"rentora/pkg/logger"
	"rentora/pkg/response"
	"rentora/pkg/utils"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	limit := utils.QueryInt(c, "limit", 50)

	notifications, err := h.notificationUseCase.ListFor(c.Request().Context(), user.Username, limit)
	if err != nil {
		logger.Error("Error listing notifications: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, notifications)
}

func (h *NotificationHandler) MarkNotificationRead(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.notificationUseCase.MarkRead(c.Request().Context(), user.Username, c.Param("id")); err != nil {
		logger.Error("Error marking notification read: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, nil)
}
