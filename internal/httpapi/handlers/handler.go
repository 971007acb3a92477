package handlers

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"careermate/internal/conversation"
	"careermate/internal/store/rabbitmq"
	"careermate/internal/store/redisstore"
)

type Handler struct {
	DB     *gorm.DB
	Redis  *redisstore.Store
	Svc    *conversation.Service
	Rabbit *rabbitmq.Publisher // nil when the job queue is not configured
	Log    *zap.Logger
}

func NewHandler(db *gorm.DB, rds *redisstore.Store, svc *conversation.Service, rabbit *rabbitmq.Publisher, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{DB: db, Redis: rds, Svc: svc, Rabbit: rabbit, Log: log}
}
