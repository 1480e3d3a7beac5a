// Package usecase はpredictionフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"malnutrition_backend/internal/feature/prediction/domain/entity"
)

// PredictedRiskColumn は一括予測の各レコードに付加される予測ラベル列の名前です。
const PredictedRiskColumn = "Predicted Risk"

// RiskModel は読み込み済みモデルアーティファクトの推論インターフェースです。
// Goの慣例に従い、インターフェースはプロバイダー（adapters/artifact）ではなくコンシューマー（usecase）が定義します。
// 実装は読み取り専用で、複数リクエストから同時に呼び出されます。
type RiskModel interface {
	// Scale は生の特徴量行列を学習時と同じスケールに標準化します。
	Scale(rows [][]float64) ([][]float64, error)
	// Classify は標準化済みの各行のリスクラベルを返します。
	Classify(scaled [][]float64) ([]string, error)
}

// MissingColumnsError はアップロードに必須列が欠けていることを示します。
// 部分的な処理は行わず、欠落が1列でもあれば全体を拒否します。
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// predictionUsecase は単一・一括予測のビジネスロジックを提供します。
type predictionUsecase struct {
	model RiskModel
}

// NewPredictionUsecase はpredictionUsecaseの新しいインスタンスを生成します。
func NewPredictionUsecase(model RiskModel) *predictionUsecase {
	return &predictionUsecase{model: model}
}

// PredictOne は1件の入力をスケーリング→分類の順で処理し、
// ラベルと説明文を添えた予測結果を返します。
func (u *predictionUsecase) PredictOne(ctx context.Context, in entity.PredictionInput) (*entity.Prediction, error) {
	scaled, err := u.model.Scale([][]float64{in.Vector()})
	if err != nil {
		return nil, fmt.Errorf("failed to scale features: %w", err)
	}
	labels, err := u.model.Classify(scaled)
	if err != nil {
		return nil, fmt.Errorf("failed to classify: %w", err)
	}
	if len(labels) != 1 {
		return nil, fmt.Errorf("classifier returned %d labels for a single row", len(labels))
	}
	level := entity.RiskLevel(labels[0])
	return &entity.Prediction{
		Input:       in,
		RiskLevel:   level,
		Description: level.Description(),
	}, nil
}

// PredictBatch はアップロードされた表形式ファイルの全行を一括で予測します。
//   - 必須列が1つでも欠けている場合はMissingColumnsErrorを返します
//   - 必須列に空欄がある行は黙って除外されます（行単位の全か無か）
//   - 生き残った行は元の順序のまま1回のScale+Classifyで予測されます
//   - 各レコードは元の全列に予測ラベル列を加えたものです
func (u *predictionUsecase) PredictBatch(ctx context.Context, upload io.Reader, filename string) ([]map[string]any, error) {
	tbl, err := parseUpload(upload, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to parse upload: %w", err)
	}

	colIndex := make(map[string]int, len(tbl.header))
	for i, name := range tbl.header {
		colIndex[name] = i
	}
	var missing []string
	for _, col := range entity.FeatureColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	var (
		features [][]float64
		keep     []int
	)
	for ri, row := range tbl.rows {
		vec := make([]float64, len(entity.FeatureColumns))
		complete := true
		for ci, col := range entity.FeatureColumns {
			cell := strings.TrimSpace(cellAt(row, colIndex[col]))
			if cell == "" {
				complete = false
				break
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", ri+2, col, err)
			}
			vec[ci] = v
		}
		if !complete {
			continue
		}
		features = append(features, vec)
		keep = append(keep, ri)
	}

	scaled, err := u.model.Scale(features)
	if err != nil {
		return nil, fmt.Errorf("failed to scale features: %w", err)
	}
	labels, err := u.model.Classify(scaled)
	if err != nil {
		return nil, fmt.Errorf("failed to classify: %w", err)
	}
	if len(labels) != len(keep) {
		return nil, fmt.Errorf("classifier returned %d labels for %d rows", len(labels), len(keep))
	}

	records := make([]map[string]any, 0, len(keep))
	for i, ri := range keep {
		row := tbl.rows[ri]
		record := make(map[string]any, len(tbl.header)+1)
		for ci, name := range tbl.header {
			record[name] = cellValue(cellAt(row, ci))
		}
		record[PredictedRiskColumn] = labels[i]
		records = append(records, record)
	}
	return records, nil
}

// table はパース済みのアップロード内容です。
type table struct {
	header []string
	rows   [][]string
}

// parseUpload は拡張子に応じてCSVまたはxlsxとしてパースします。
// 元のアップロード形式であるxlsxが既定です。
func parseUpload(r io.Reader, filename string) (*table, error) {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return parseCSV(r)
	}
	return parseXLSX(r)
}

func parseCSV(r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	// 行ごとの列数のばらつきを許容し、欠損セルとして扱う
	reader.FieldsPerRecord = -1
	all, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("file has no header row")
	}
	return &table{header: all[0], rows: all[1:]}, nil
}

func parseXLSX(r io.Reader) (*table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file has no header row")
	}
	return &table{header: rows[0], rows: rows[1:]}, nil
}

// cellAt は行末の省略されたセルを空文字列として返します。
func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// cellValue は数値として読めるセルをfloat64に、それ以外を文字列のまま返します。
func cellValue(cell string) any {
	trimmed := strings.TrimSpace(cell)
	if trimmed != "" {
		if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return v
		}
	}
	return cell
}
