package models

// DefaultConfidenceThreshold is the cutoff below which a detected document
// type must be confirmed by a user before the template is treated as
// production-ready.
const DefaultConfidenceThreshold = 0.7

// DetectionResult is the gate decision for a template's detected document
// type. The confidence score itself comes from the external detector; this
// core only compares it against the threshold.
type DetectionResult struct {
	RequiresConfirmation bool    `json:"requires_confirmation"`
	Confidence           float64 `json:"confidence"`
	Threshold            float64 `json:"threshold"`
}

// EvaluateDetection gates template usability on the detector's confidence.
// Templates under the threshold remain editable but must not be used for
// document generation until explicitly confirmed.
func EvaluateDetection(confidence, threshold float64) DetectionResult {
	return DetectionResult{
		RequiresConfirmation: confidence < threshold,
		Confidence:           confidence,
		Threshold:            threshold,
	}
}
