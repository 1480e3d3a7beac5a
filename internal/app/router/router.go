package router

import (
	"github.com/gin-gonic/gin"

	authhandler "malnutrition_backend/internal/feature/auth/transport/handler"
	predictionhandler "malnutrition_backend/internal/feature/prediction/transport/handler"
	"malnutrition_backend/internal/interface/handler"
)

func NewRouter(authHandler *authhandler.AuthHandler, prediction *predictionhandler.PredictionHandler) *gin.Engine {
	r := gin.Default()

	// 稼働確認メッセージ
	r.GET("/", handler.Root)
	// 導通確認用
	r.GET("/healthz", handler.Health)

	// 認証（トークンは発行しない。ログイン成功レスポンスがそのまま結果となる）
	auth := r.Group("/auth")
	{
		// 新規ユーザー登録
		auth.POST("/signup", authHandler.Signup)
		// ログイン
		auth.POST("/login", authHandler.Login)
	}

	// 単一予測（POSTとGETは同一結果）
	r.POST("/predict", prediction.Predict)
	r.GET("/predict", prediction.PredictQuery)
	// 一括予測（multipartアップロード）
	r.POST("/batch-predict", prediction.BatchPredict)

	return r
}
