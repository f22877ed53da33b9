package router

import (
	"github.com/labstack/echo/v4"

	"rentora/internal/adapter/api/handler"
	"rentora/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chats := e.Group("/v1/chats")
	chats.Use(authMiddleware.Authenticate)

	chats.GET("", chatHandler.ListChats)
	chats.POST("", chatHandler.StartChat)
	chats.GET("/unread-count", chatHandler.GetUnreadCount)
	chats.GET("/:id", chatHandler.GetChat)
	chats.GET("/:id/messages", chatHandler.GetOlderMessages)
	chats.POST("/:id/messages", chatHandler.SendMessage)
}
