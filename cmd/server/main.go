package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"malnutrition_backend/internal/app/router"
	authadapters "malnutrition_backend/internal/feature/auth/adapters"
	authhandler "malnutrition_backend/internal/feature/auth/transport/handler"
	authusecase "malnutrition_backend/internal/feature/auth/usecase"
	"malnutrition_backend/internal/feature/prediction/adapters/artifact"
	predictionhandler "malnutrition_backend/internal/feature/prediction/transport/handler"
	predictionusecase "malnutrition_backend/internal/feature/prediction/usecase"
	platformdb "malnutrition_backend/internal/platform/db"
	"malnutrition_backend/internal/platform/logging"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	// ロガー（標準エラー出力 + 追記専用のerrors.log）
	if err := logging.Setup(); err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	// モデルアーティファクト読み込み
	// 失敗した場合はトラフィックを受け付けずに起動を中止する
	modelPath := envOr("MODEL_PATH", "./malnutrition_risk_model.gob")
	scalerPath := envOr("SCALER_PATH", "./feature_scaler.gob")
	model, err := artifact.Load(modelPath, scalerPath)
	if err != nil {
		slog.Error("model artifact load failed", "error", err,
			"model_path", modelPath, "scaler_path", scalerPath)
		log.Fatalf("model or scaler load error: %v", err)
	}
	slog.Info("ML model and scaler loaded", "classes", model.Classes())

	// db
	db := platformdb.OpenDB()

	// Repository
	userRepo := authadapters.NewUserSQLite(db)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo)
	predictionUC := predictionusecase.NewPredictionUsecase(model)

	// Handler
	authH := authhandler.NewAuthHandler(authUC)
	predictionH := predictionhandler.NewPredictionHandler(predictionUC)

	// ルータ生成
	r := router.NewRouter(authH, predictionH)

	if err := r.Run(":" + envOr("PORT", "8080")); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
