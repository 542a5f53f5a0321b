package util

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const logKey = "log"

func NewUuid() string {
	return uuid.New().String()
}

func SetLogToCtx(c *gin.Context, log *zap.Logger) {
	c.Set(logKey, log)
}

func GetLogFromCtx(c *gin.Context) *zap.Logger {
	raw, exists := c.Get(logKey)
	if !exists {
		return zap.NewNop()
	}

	log, ok := raw.(*zap.Logger)
	if !ok || log == nil {
		return zap.NewNop()
	}

	return log
}
