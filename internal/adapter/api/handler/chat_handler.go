package handler

import (
	"github.com/labstack/echo/v4"

	"rentora/internal/usecase"
	"rentora/pkg/logger"
	"rentora/pkg/response"
	"rentora/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

type startChatRequest struct {
	CompanyID  string `json:"company_id" validate:"required"`
	PropertyID string `json:"property_id,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Text       string `json:"text" validate:"required"`
}

func (h *ChatHandler) ListChats(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	chats, err := h.chatUseCase.ListChats(c.Request().Context(), user)
	if err != nil {
		logger.Error("Error listing chats: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, chats)
}

// GetChat opens a chat: returns the newest page of messages and marks
// everything read for the caller.
func (h *ChatHandler) GetChat(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	detail, err := h.chatUseCase.OpenChat(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		logger.Error("Error opening chat: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

func (h *ChatHandler) GetOlderMessages(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	beforeTs := utils.QueryInt64(c, "before", 0)
	limit := utils.QueryInt(c, "limit", 50)

	page, err := h.chatUseCase.LoadOlderMessages(c.Request().Context(), user, c.Param("id"), beforeTs, limit)
	if err != nil {
		logger.Error("Error loading older messages: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, page)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
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

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), user, c.Param("id"), req.Text)
	if err != nil {
		logger.Error("Error sending message: %v", err)
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) StartChat(c echo.Context) error {
	var req startChatRequest
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

	chat, message, err := h.chatUseCase.StartChat(c.Request().Context(), user, usecase.StartChatInput{
		CompanyID:  req.CompanyID,
		PropertyID: req.PropertyID,
		Subject:    req.Subject,
		Text:       req.Text,
	})
	if err != nil {
		logger.Error("Error starting chat: %v", err)
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"chat":    chat,
		"message": message,
	})
}

func (h *ChatHandler) GetUnreadCount(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	total, err := h.chatUseCase.TotalUnread(c.Request().Context(), user)
	if err != nil {
		logger.Error("Error counting unread messages: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int{"total": total})
}
