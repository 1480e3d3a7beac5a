// Package api defines the request and response types of the HTTP surface.
// Handlers bind requests and shape responses exclusively through these types.
package api

// ErrorResponse is the generic error payload returned by every failing endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a bare informational payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// SignupRequest is the request body for POST /auth/signup.
// All three fields are required; the email must be syntactically valid.
type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the public projection of a user record.
// It never carries the password hash.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginResponse is the success payload of POST /auth/login.
type LoginResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// PredictRequest carries the five anthropometric indicators.
// Fields are pointers so that a provided zero survives the required binding;
// a missing field is a validation error, any float value is accepted as-is.
// The same type binds the JSON body of POST /predict and the query string of
// GET /predict.
type PredictRequest struct {
	Stunting       *float64 `json:"Stunting" form:"Stunting" binding:"required"`
	Wasting        *float64 `json:"Wasting" form:"Wasting" binding:"required"`
	Underweight    *float64 `json:"Underweight" form:"Underweight" binding:"required"`
	Overweight     *float64 `json:"Overweight" form:"Overweight" binding:"required"`
	U5PopThousands *float64 `json:"U5_Pop_Thousands" form:"U5_Pop_Thousands" binding:"required"`
}

// PredictInputEcho mirrors the validated input back to the caller.
type PredictInputEcho struct {
	Stunting       float64 `json:"Stunting"`
	Wasting        float64 `json:"Wasting"`
	Underweight    float64 `json:"Underweight"`
	Overweight     float64 `json:"Overweight"`
	U5PopThousands float64 `json:"U5_Pop_Thousands"`
}

// PredictResponse is the success payload of /predict.
type PredictResponse struct {
	Input              PredictInputEcho `json:"input"`
	PredictedRiskLevel string           `json:"predicted_risk_level"`
	Description        string           `json:"description"`
}

// BatchPredictResponse is the success payload of POST /batch-predict.
// Each record keeps every column of the uploaded row plus the predicted label.
type BatchPredictResponse struct {
	Predictions []map[string]any `json:"predictions"`
}

// MissingColumnsResponse is returned when the uploaded spreadsheet lacks one
// or more of the required feature columns.
type MissingColumnsResponse struct {
	Error           string   `json:"error"`
	RequiredColumns []string `json:"required_columns"`
}
