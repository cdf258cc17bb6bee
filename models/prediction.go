package models

import "strconv"

// Prediction is the only persisted entity. Rows are written once by the
// storage service and never updated.
type Prediction struct {
	ID             uint    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SepalLength    float64 `gorm:"column:sepal_length;not null" json:"sepal_length"`
	SepalWidth     float64 `gorm:"column:sepal_width;not null" json:"sepal_width"`
	PetalLength    float64 `gorm:"column:petal_length;not null" json:"petal_length"`
	PetalWidth     float64 `gorm:"column:petal_width;not null" json:"petal_width"`
	PredictedClass string  `gorm:"column:predicted_class;size:50;not null" json:"predicted_class"`
}

func (Prediction) TableName() string { return "Prediction" }

// PredictionIn is the body accepted by POST /prediction. Pointers keep an
// absent measurement apart from a real 0.0.
type PredictionIn struct {
	SepalLength    *float64 `json:"sepal_length" binding:"required"`
	SepalWidth     *float64 `json:"sepal_width" binding:"required"`
	PetalLength    *float64 `json:"petal_length" binding:"required"`
	PetalWidth     *float64 `json:"petal_width" binding:"required"`
	PredictedClass string   `json:"predicted_class" binding:"required,max=50"`
}

// Record converts a validated request into a row without an ID.
func (in PredictionIn) Record() Prediction {
	return Prediction{
		SepalLength:    deref(in.SepalLength),
		SepalWidth:     deref(in.SepalWidth),
		PetalLength:    deref(in.PetalLength),
		PetalWidth:     deref(in.PetalWidth),
		PredictedClass: in.PredictedClass,
	}
}

// MeasurementForm is the form posted to /predict.
type MeasurementForm struct {
	SepalLength *float64 `form:"sepal_length" binding:"required"`
	SepalWidth  *float64 `form:"sepal_width" binding:"required"`
	PetalLength *float64 `form:"petal_length" binding:"required"`
	PetalWidth  *float64 `form:"petal_width" binding:"required"`
}

// MeasurementFields lists the form fields in feature order.
var MeasurementFields = []string{"sepal_length", "sepal_width", "petal_length", "petal_width"}

// Features returns the classifier input in the fixed order
// sepal_length, sepal_width, petal_length, petal_width.
func (f MeasurementForm) Features() []float64 {
	return []float64{deref(f.SepalLength), deref(f.SepalWidth), deref(f.PetalLength), deref(f.PetalWidth)}
}

// WithLabel builds the relay payload for the storage service.
func (f MeasurementForm) WithLabel(label string) PredictionIn {
	return PredictionIn{
		SepalLength:    f.SepalLength,
		SepalWidth:     f.SepalWidth,
		PetalLength:    f.PetalLength,
		PetalWidth:     f.PetalWidth,
		PredictedClass: label,
	}
}

// FormData is the view of the four inputs echoed back into the HTML form.
type FormData struct {
	SepalLength string
	SepalWidth  string
	PetalLength string
	PetalWidth  string
}

// FormData formats the submitted values for redisplay in the form.
func (f MeasurementForm) FormData() FormData {
	return FormData{
		SepalLength: formatFloat(f.SepalLength),
		SepalWidth:  formatFloat(f.SepalWidth),
		PetalLength: formatFloat(f.PetalLength),
		PetalWidth:  formatFloat(f.PetalWidth),
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
