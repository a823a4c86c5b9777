package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Fixed user-facing messages for submit failures
const (
	MsgMalformedResponse = "Unexpected API response"
	MsgConnectFailed     = "Failed to connect to API"
)

// ClassScores is one row of a classification report
type ClassScores struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	Support   float64 `json:"support"`
}

// Metrics is the classification report served by the metrics endpoint.
// Absent numeric fields are zero.
type Metrics struct {
	Accuracy    float64     `json:"accuracy"`
	Benign      ClassScores `json:"benign"`
	Malignant   ClassScores `json:"malignant"`
	MacroAvg    ClassScores `json:"macro_avg"`
	WeightedAvg ClassScores `json:"weighted_avg"`
}

// OutcomeKind tags a decoded prediction response
type OutcomeKind int

const (
	// OutcomeMalformed means the body carried neither a prediction nor an error
	OutcomeMalformed OutcomeKind = iota
	// OutcomeSuccess carries a label
	OutcomeSuccess
	// OutcomeFailure carries a server-side error message
	OutcomeFailure
)

// String returns the kind name
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "malformed"
	}
}

// Outcome is the tagged result of a prediction request
type Outcome struct {
	Kind OutcomeKind
	// Label is set for OutcomeSuccess
	Label string
	// Message is set for OutcomeFailure, and for OutcomeSuccess when the
	// server sent both fields
	Message string
}

// DecodeOutcome maps a prediction response body onto an Outcome.
// A truthy "prediction" wins the tag; a truthy "error" is still carried
// alongside it. A body that is not JSON, or is JSON null, is an error.
func DecodeOutcome(body []byte) (Outcome, error) {
	var payload interface{}
	if err := decodeJSON(body, &payload); err != nil {
		return Outcome{}, err
	}
	if payload == nil {
		return Outcome{}, fmt.Errorf("response body is null")
	}

	obj, ok := payload.(map[string]interface{})
	if !ok {
		return Outcome{Kind: OutcomeMalformed}, nil
	}

	label, hasLabel := truthyString(obj["prediction"])
	message, hasMessage := truthyString(obj["error"])

	switch {
	case hasLabel:
		return Outcome{Kind: OutcomeSuccess, Label: label, Message: message}, nil
	case hasMessage:
		return Outcome{Kind: OutcomeFailure, Message: message}, nil
	default:
		return Outcome{Kind: OutcomeMalformed}, nil
	}
}

// DecodeMetrics reads a metrics payload. The report is taken from the
// "metrics" field when present, else from the payload itself. Fields that are
// missing or not numbers read as zero.
func DecodeMetrics(body []byte) (*Metrics, error) {
	var payload interface{}
	if err := decodeJSON(body, &payload); err != nil {
		return nil, err
	}

	obj, ok := payload.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("metrics payload is %s, want object", jsonKind(payload))
	}

	if inner, ok := obj["metrics"]; ok && inner != nil {
		report, ok := inner.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("metrics field is %s, want object", jsonKind(inner))
		}
		obj = report
	}

	return &Metrics{
		Accuracy:    number(obj["accuracy"]),
		Benign:      classScores(obj["benign"]),
		Malignant:   classScores(obj["malignant"]),
		MacroAvg:    classScores(obj["macro_avg"]),
		WeightedAvg: classScores(obj["weighted_avg"]),
	}, nil
}

func decodeJSON(body []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func classScores(v interface{}) ClassScores {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return ClassScores{}
	}
	return ClassScores{
		Precision: number(obj["precision"]),
		Recall:    number(obj["recall"]),
		F1Score:   number(obj["f1_score"]),
		Support:   number(obj["support"]),
	}
}

func number(v interface{}) float64 {
	n, ok := v.(json.Number)
	if !ok {
		return 0
	}
	f, err := n.Float64()
	if err != nil {
		return 0
	}
	return f
}

// truthyString reports whether v is truthy in the response contract and
// returns its display text.
func truthyString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case bool:
		if !val {
			return "", false
		}
		return "true", true
	case json.Number:
		if f, err := val.Float64(); err == nil && f == 0 {
			return "", false
		}
		return val.String(), true
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val), true
		}
		return string(data), true
	}
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
