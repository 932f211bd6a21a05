package deepface

// analyzeRequest is the JSON body for POST /analyze.
type analyzeRequest struct {
	Img              string   `json:"img"`
	Actions          []string `json:"actions"`
	EnforceDetection bool     `json:"enforce_detection"`
	DetectorBackend  string   `json:"detector_backend,omitempty"`
}

// Analysis is one detected face in an /analyze response.
type Analysis struct {
	DominantEmotion string             `json:"dominant_emotion"`
	Emotion         map[string]float64 `json:"emotion"` // Per-label scores, 0-100
	FaceConfidence  float64            `json:"face_confidence"`
	Region          Region             `json:"region"`
}

// Region is the face bounding box in pixels.
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// analyzeResponse is the JSON response for POST /analyze.
type analyzeResponse struct {
	Results []Analysis `json:"results"`
}

// apiError represents a DeepFace API error response.
type apiError struct {
	Error     string `json:"error"`
	Exception string `json:"exception"`
}

func (e apiError) message() string {
	if e.Exception != "" {
		return e.Exception
	}
	return e.Error
}
