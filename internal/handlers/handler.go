package handlers

import (
	"github.com/MLBB-BOSS/MLSnap/internal/bot"
	"github.com/MLBB-BOSS/MLSnap/internal/services"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handler serves the HTTP gateway the messaging transport talks to.
type Handler struct {
	db         *gorm.DB
	redis      *redis.Client
	dispatcher *bot.Dispatcher
	reporter   *services.Reporter
}

// New builds a Handler. rdb may be nil when Redis is not configured.
func New(db *gorm.DB, rdb *redis.Client, dispatcher *bot.Dispatcher, reporter *services.Reporter) *Handler {
	return &Handler{db: db, redis: rdb, dispatcher: dispatcher, reporter: reporter}
}
