package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"malnutrition_backend/internal/feature/prediction/domain/entity"
	"malnutrition_backend/internal/feature/prediction/usecase"
)

// mockPredictionUsecase is a mock implementation of the PredictionUsecase interface.
type mockPredictionUsecase struct {
	PredictOneFunc   func(ctx context.Context, in entity.PredictionInput) (*entity.Prediction, error)
	PredictBatchFunc func(ctx context.Context, upload io.Reader, filename string) ([]map[string]any, error)
}

// PredictOne is the mock implementation of the PredictOne method.
func (m *mockPredictionUsecase) PredictOne(ctx context.Context, in entity.PredictionInput) (*entity.Prediction, error) {
	if m.PredictOneFunc != nil {
		return m.PredictOneFunc(ctx, in)
	}
	level := entity.RiskModerate
	return &entity.Prediction{Input: in, RiskLevel: level, Description: level.Description()}, nil
}

// PredictBatch is the mock implementation of the PredictBatch method.
func (m *mockPredictionUsecase) PredictBatch(ctx context.Context, upload io.Reader, filename string) ([]map[string]any, error) {
	if m.PredictBatchFunc != nil {
		return m.PredictBatchFunc(ctx, upload, filename)
	}
	return nil, errors.New("batch predict failed") // Default: failure
}

func newPredictRouter(uc *mockPredictionUsecase) *gin.Engine {
	h := NewPredictionHandler(uc)
	router := gin.New()
	router.POST("/predict", h.Predict)
	router.GET("/predict", h.PredictQuery)
	router.POST("/batch-predict", h.BatchPredict)
	return router
}

func TestPredictionHandler_Predict(t *testing.T) {
	gin.SetMode(gin.TestMode)

	validBody := gin.H{"Stunting": 30.0, "Wasting": 10.0, "Underweight": 20.0, "Overweight": 2.0, "U5_Pop_Thousands": 500.0}

	t.Run("success: prediction with input echo", func(t *testing.T) {
		router := newPredictRouter(&mockPredictionUsecase{})

		raw, _ := json.Marshal(validBody)
		req, _ := http.NewRequest(http.MethodPost, "/predict", bytes.NewBuffer(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp gin.H
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Moderate", resp["predicted_risk_level"])
		assert.Equal(t, "Moderate risk. Consider intervention.", resp["description"])
		input, ok := resp["input"].(map[string]any)
		require.True(t, ok, "input echo missing")
		assert.Equal(t, 30.0, input["Stunting"])
		assert.Equal(t, 500.0, input["U5_Pop_Thousands"])
	})

	t.Run("GET and POST produce identical responses", func(t *testing.T) {
		router := newPredictRouter(&mockPredictionUsecase{})

		raw, _ := json.Marshal(validBody)
		postReq, _ := http.NewRequest(http.MethodPost, "/predict", bytes.NewBuffer(raw))
		postReq.Header.Set("Content-Type", "application/json")
		postW := httptest.NewRecorder()
		router.ServeHTTP(postW, postReq)

		getReq, _ := http.NewRequest(http.MethodGet,
			"/predict?Stunting=30&Wasting=10&Underweight=20&Overweight=2&U5_Pop_Thousands=500", nil)
		getW := httptest.NewRecorder()
		router.ServeHTTP(getW, getReq)

		assert.Equal(t, http.StatusOK, postW.Code)
		assert.Equal(t, http.StatusOK, getW.Code)
		assert.JSONEq(t, postW.Body.String(), getW.Body.String())
	})

	t.Run("zero values are valid field values", func(t *testing.T) {
		var got entity.PredictionInput
		uc := &mockPredictionUsecase{
			PredictOneFunc: func(ctx context.Context, in entity.PredictionInput) (*entity.Prediction, error) {
				got = in
				return &entity.Prediction{Input: in, RiskLevel: entity.RiskLow, Description: entity.RiskLow.Description()}, nil
			},
		}
		router := newPredictRouter(uc)

		body := gin.H{"Stunting": 0.0, "Wasting": 0.0, "Underweight": 0.0, "Overweight": 0.0, "U5_Pop_Thousands": 0.0}
		raw, _ := json.Marshal(body)
		req, _ := http.NewRequest(http.MethodPost, "/predict", bytes.NewBuffer(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, entity.PredictionInput{}, got)
	})

	t.Run("missing field is a validation error, not a 500", func(t *testing.T) {
		uc := &mockPredictionUsecase{
			PredictOneFunc: func(ctx context.Context, in entity.PredictionInput) (*entity.Prediction, error) {
				t.Errorf("usecase must not be called on validation failure")
				return nil, nil
			},
		}
		router := newPredictRouter(uc)

		body := gin.H{"Stunting": 30.0, "Wasting": 10.0, "Underweight": 20.0, "Overweight": 2.0}
		raw, _ := json.Marshal(body)
		req, _ := http.NewRequest(http.MethodPost, "/predict", bytes.NewBuffer(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "U5PopThousands")
	})

	t.Run("inference failure returns 500 with the raw error text", func(t *testing.T) {
		uc := &mockPredictionUsecase{
			PredictOneFunc: func(ctx context.Context, in entity.PredictionInput) (*entity.Prediction, error) {
				return nil, errors.New("failed to classify: shape mismatch")
			},
		}
		router := newPredictRouter(uc)

		raw, _ := json.Marshal(validBody)
		req, _ := http.NewRequest(http.MethodPost, "/predict", bytes.NewBuffer(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp gin.H
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "failed to classify: shape mismatch", resp["error"])
	})
}

// multipartUpload builds a multipart body with a single "file" field.
func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestPredictionHandler_BatchPredict(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success: predictions list", func(t *testing.T) {
		uc := &mockPredictionUsecase{
			PredictBatchFunc: func(ctx context.Context, upload io.Reader, filename string) ([]map[string]any, error) {
				assert.Equal(t, "upload.csv", filename)
				return []map[string]any{
					{"Country": "Kenya", "Stunting": 30.0, usecase.PredictedRiskColumn: "High"},
				}, nil
			},
		}
		router := newPredictRouter(uc)

		body, contentType := multipartUpload(t, "upload.csv", "irrelevant")
		req, _ := http.NewRequest(http.MethodPost, "/batch-predict", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Predictions []map[string]any `json:"predictions"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Predictions, 1)
		assert.Equal(t, "High", resp.Predictions[0][usecase.PredictedRiskColumn])
	})

	t.Run("missing columns returns 400 listing every required name", func(t *testing.T) {
		uc := &mockPredictionUsecase{
			PredictBatchFunc: func(ctx context.Context, upload io.Reader, filename string) ([]map[string]any, error) {
				return nil, &usecase.MissingColumnsError{Missing: []string{"Wasting"}}
			},
		}
		router := newPredictRouter(uc)

		body, contentType := multipartUpload(t, "upload.csv", "irrelevant")
		req, _ := http.NewRequest(http.MethodPost, "/batch-predict", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp struct {
			Error           string   `json:"error"`
			RequiredColumns []string `json:"required_columns"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, entity.FeatureColumns, resp.RequiredColumns)
	})

	t.Run("no file field returns 400", func(t *testing.T) {
		router := newPredictRouter(&mockPredictionUsecase{})

		req, _ := http.NewRequest(http.MethodPost, "/batch-predict", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("parse failure returns 500 with the raw error text", func(t *testing.T) {
		uc := &mockPredictionUsecase{
			PredictBatchFunc: func(ctx context.Context, upload io.Reader, filename string) ([]map[string]any, error) {
				return nil, errors.New("failed to parse upload: zip: not a valid zip file")
			},
		}
		router := newPredictRouter(uc)

		body, contentType := multipartUpload(t, "upload.xlsx", "not an xlsx")
		req, _ := http.NewRequest(http.MethodPost, "/batch-predict", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "not a valid zip file")
	})
}
