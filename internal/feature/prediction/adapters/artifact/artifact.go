// Package artifact は学習済みの分類器と特徴量スケーラーをディスクから読み込みます。
// アーティファクトはオフラインの学習プロセスが出力したgobエンコードのバイナリで、
// プロセス起動時に一度だけ読み込まれ、以降は読み取り専用です。
package artifact

import (
	"encoding/gob"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// ScalerParams は特徴量スケーラーのシリアライズ形式です。
// 列ごとの平均とスケールを学習順で保持します。
type ScalerParams struct {
	Mean  []float64
	Scale []float64
}

// ClassifierParams は線形分類器のシリアライズ形式です。
// クラスごとに1本の重みベクトルと切片を持ち、スコア最大のクラスを出力します。
type ClassifierParams struct {
	Coefficients [][]float64
	Intercepts   []float64
	Classes      []string
}

// Model は読み込み済みのスケーラーと分類器のペアです。
// Load後は不変であり、ロックなしで複数のリクエストから同時に使用できます。
type Model struct {
	mean       []float64
	scale      []float64
	weights    *mat.Dense
	intercepts []float64
	classes    []string
	features   int
}

// Load は分類器とスケーラーの両アーティファクトを読み込み、検証します。
// どちらかの読み込みまたは検証に失敗した場合はエラーを返し、
// 呼び出し側（起動処理）はサービングを開始してはなりません。
func Load(modelPath, scalerPath string) (*Model, error) {
	var cls ClassifierParams
	if err := decodeFile(modelPath, &cls); err != nil {
		return nil, err
	}
	var sc ScalerParams
	if err := decodeFile(scalerPath, &sc); err != nil {
		return nil, err
	}

	features := len(sc.Mean)
	if features == 0 {
		return nil, fmt.Errorf("scaler %s has no feature means", scalerPath)
	}
	if len(sc.Scale) != features {
		return nil, fmt.Errorf("scaler %s has %d means but %d scales", scalerPath, features, len(sc.Scale))
	}
	for i, s := range sc.Scale {
		if s == 0 {
			return nil, fmt.Errorf("scaler %s has zero scale for feature %d", scalerPath, i)
		}
	}
	if len(cls.Classes) < 2 {
		return nil, fmt.Errorf("classifier %s has %d classes, need at least 2", modelPath, len(cls.Classes))
	}
	if len(cls.Coefficients) != len(cls.Classes) {
		return nil, fmt.Errorf("classifier %s has %d coefficient rows for %d classes",
			modelPath, len(cls.Coefficients), len(cls.Classes))
	}
	if len(cls.Intercepts) != len(cls.Classes) {
		return nil, fmt.Errorf("classifier %s has %d intercepts for %d classes",
			modelPath, len(cls.Intercepts), len(cls.Classes))
	}

	weights := mat.NewDense(len(cls.Classes), features, nil)
	for i, row := range cls.Coefficients {
		if len(row) != features {
			return nil, fmt.Errorf("classifier %s coefficient row %d has %d values, scaler expects %d",
				modelPath, i, len(row), features)
		}
		weights.SetRow(i, row)
	}

	return &Model{
		mean:       sc.Mean,
		scale:      sc.Scale,
		weights:    weights,
		intercepts: cls.Intercepts,
		classes:    cls.Classes,
		features:   features,
	}, nil
}

// Features はモデルが期待する特徴量数を返します。
func (m *Model) Features() int { return m.features }

// Classes は分類器の出力ラベル集合のコピーを返します。
func (m *Model) Classes() []string {
	out := make([]string, len(m.classes))
	copy(out, m.classes)
	return out
}

// Scale は各行に (x - mean) / scale の標準化を適用します。
// 行の特徴量数がモデルと一致しない場合はエラーを返します。
func (m *Model) Scale(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != m.features {
			return nil, fmt.Errorf("row %d has %d features, model expects %d", i, len(row), m.features)
		}
		scaled := make([]float64, m.features)
		for j, v := range row {
			scaled[j] = (v - m.mean[j]) / m.scale[j]
		}
		out[i] = scaled
	}
	return out, nil
}

// Classify は標準化済みの各行についてスコア最大のクラスラベルを返します。
// スコアは X・Wᵀ + b で計算され、結果は決定的です。
func (m *Model) Classify(scaled [][]float64) ([]string, error) {
	if len(scaled) == 0 {
		return nil, nil
	}
	x := mat.NewDense(len(scaled), m.features, nil)
	for i, row := range scaled {
		if len(row) != m.features {
			return nil, fmt.Errorf("row %d has %d features, model expects %d", i, len(row), m.features)
		}
		x.SetRow(i, row)
	}

	var scores mat.Dense
	scores.Mul(x, m.weights.T())

	labels := make([]string, len(scaled))
	for i := range labels {
		row := scores.RawRowView(i)
		best := 0
		bestScore := row[0] + m.intercepts[0]
		for c := 1; c < len(m.classes); c++ {
			if s := row[c] + m.intercepts[c]; s > bestScore {
				best, bestScore = c, s
			}
		}
		labels[i] = m.classes[best]
	}
	return labels, nil
}

// SaveScaler はスケーラーパラメータをgobエンコードでファイルに書き出します。
// オフラインの学習パイプラインとテストがアーティファクトの生成に使用します。
func SaveScaler(path string, p ScalerParams) error {
	return encodeFile(path, p)
}

// SaveClassifier は分類器パラメータをgobエンコードでファイルに書き出します。
func SaveClassifier(path string, p ClassifierParams) error {
	return encodeFile(path, p)
}

func decodeFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("failed to decode artifact %s: %w", path, err)
	}
	return nil
}

func encodeFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create artifact %s: %w", path, err)
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode artifact %s: %w", path, err)
	}
	return f.Close()
}
