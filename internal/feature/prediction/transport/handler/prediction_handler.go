// Package handler はpredictionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"malnutrition_backend/internal/api"
	"malnutrition_backend/internal/feature/prediction/domain/entity"
	"malnutrition_backend/internal/feature/prediction/usecase"
)

// PredictionUsecase は予測操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type PredictionUsecase interface {
	// PredictOne は1件の入力を予測します。
	PredictOne(ctx context.Context, in entity.PredictionInput) (*entity.Prediction, error)
	// PredictBatch はアップロードされた表形式ファイルを一括で予測します。
	PredictBatch(ctx context.Context, upload io.Reader, filename string) ([]map[string]any, error)
}

// PredictionHandler は予測操作のHTTPリクエストを処理します。
type PredictionHandler struct {
	uc PredictionUsecase
}

// NewPredictionHandler はPredictionHandlerの新しいインスタンスを生成します。
func NewPredictionHandler(uc PredictionUsecase) *PredictionHandler {
	return &PredictionHandler{uc: uc}
}

// Predict は単一予測APIエンドポイント（POST /predict）を処理します。
// - リクエストJSONをPredictRequestにバインド
// - 必須フィールド欠落時は400を返却
// - 推論失敗時は500を返却しエラー詳細をログに記録
func (h *PredictionHandler) Predict(c *gin.Context) {
	var req api.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("predict validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	h.respond(c, req)
}

// PredictQuery は単一予測のGET版（GET /predict）を処理します。
// POST版と同じ5フィールドをクエリパラメータで受け取り、同一の結果を返します。
func (h *PredictionHandler) PredictQuery(c *gin.Context) {
	var req api.PredictRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		slog.Warn("predict validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	h.respond(c, req)
}

func (h *PredictionHandler) respond(c *gin.Context, req api.PredictRequest) {
	in := entity.PredictionInput{
		Stunting:       *req.Stunting,
		Wasting:        *req.Wasting,
		Underweight:    *req.Underweight,
		Overweight:     *req.Overweight,
		U5PopThousands: *req.U5PopThousands,
	}

	prediction, err := h.uc.PredictOne(c.Request.Context(), in)
	if err != nil {
		slog.Error("prediction failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, api.PredictResponse{
		Input: api.PredictInputEcho{
			Stunting:       in.Stunting,
			Wasting:        in.Wasting,
			Underweight:    in.Underweight,
			Overweight:     in.Overweight,
			U5PopThousands: in.U5PopThousands,
		},
		PredictedRiskLevel: string(prediction.RiskLevel),
		Description:        prediction.Description,
	})
}

// BatchPredict は一括予測APIエンドポイント（POST /batch-predict）を処理します。
//
// Content-Type: multipart/form-data
// フィールド: file（xlsxまたはcsv）
// - 必須列欠落時は必須列一覧付きの400を返却
// - パース/推論失敗時は500を返却しエラー詳細をログに記録
func (h *PredictionHandler) BatchPredict(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		slog.Warn("batch predict file missing", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "spreadsheet file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("failed to open uploaded file", "error", err, "filename", file.Filename)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close uploaded file", "error", err)
		}
	}()

	records, err := h.uc.PredictBatch(c.Request.Context(), f, file.Filename)
	if err != nil {
		var missing *usecase.MissingColumnsError
		if errors.As(err, &missing) {
			c.JSON(http.StatusBadRequest, api.MissingColumnsResponse{
				Error:           "missing required columns",
				RequiredColumns: entity.FeatureColumns,
			})
			return
		}
		slog.Error("batch prediction failed", "error", err, "filename", file.Filename)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, api.BatchPredictResponse{Predictions: records})
}
