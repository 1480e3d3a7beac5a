package entity

// FeatureColumns lists the model's feature columns in training order.
// Spreadsheet uploads must contain all of them by exact name.
var FeatureColumns = []string{"Stunting", "Wasting", "Underweight", "Overweight", "U5_Pop_Thousands"}

// PredictionInput is one transient feature record. Values are passed to the
// model exactly as provided; no range validation is applied.
type PredictionInput struct {
	Stunting       float64
	Wasting        float64
	Underweight    float64
	Overweight     float64
	U5PopThousands float64
}

// Vector returns the features as a slice in FeatureColumns order.
func (in PredictionInput) Vector() []float64 {
	return []float64{in.Stunting, in.Wasting, in.Underweight, in.Overweight, in.U5PopThousands}
}

// Prediction is the outcome of classifying a single input record.
type Prediction struct {
	Input       PredictionInput
	RiskLevel   RiskLevel
	Description string
}
