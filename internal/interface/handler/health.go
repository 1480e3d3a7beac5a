// Package handler provides the feature-independent HTTP handlers.
package handler

import (
	"github.com/gin-gonic/gin"

	"malnutrition_backend/internal/api"
)

// Root は稼働確認用のルートエンドポイントを処理します。
func Root(c *gin.Context) {
	c.JSON(200, api.MessageResponse{Message: "Malnutrition Risk Prediction API is running!"})
}

// Health は監視用のヘルスチェックエンドポイントを処理します。
func Health(c *gin.Context) {
	// キャッシュされないように明示
	c.Header("Cache-Control", "no-store")

	// GET/HEAD/OPTIONS すべて 200 or 204 で返す
	switch c.Request.Method {
	case "HEAD":
		c.Status(200)
	case "OPTIONS":
		c.Status(204)
	default:
		c.JSON(200, gin.H{"status": "ok"})
	}
}
