package server

import (
	"encoding/json"
	"time"

	"github.com/lox/pokertrainer/gto"
)

// MessageType identifies a WebSocket message.
type MessageType string

const (
	// Client -> server
	MessageTypeEquityRequest  MessageType = "equity_request"
	MessageTypeICMRequest     MessageType = "icm_request"
	MessageTypeLookupRequest  MessageType = "gto_lookup"
	MessageTypeSampleRequest  MessageType = "gto_sample"
	MessageTypePreflopRequest MessageType = "preflop_request"

	// Server -> client
	MessageTypeEquityResult  MessageType = "equity_result"
	MessageTypeICMResult     MessageType = "icm_result"
	MessageTypeFrequencies   MessageType = "gto_frequencies"
	MessageTypeSampledAction MessageType = "gto_action"
	MessageTypePreflopResult MessageType = "preflop_result"
	MessageTypeError         MessageType = "error"
)

func (t MessageType) String() string { return string(t) }

// Message is the base WebSocket envelope.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage wraps a payload in an envelope with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client -> Server payloads

type EquityRequestData struct {
	// Ranges in standard notation, one per participant.
	Ranges []string `json:"ranges"`
	// Board cards like "Ts7s2h"; empty for preflop.
	Board string `json:"board,omitempty"`
	// Dead cards removed from the deck.
	Dead string `json:"dead,omitempty"`
	// Mode is "auto", "exact" or "montecarlo". Empty means auto.
	Mode       string `json:"mode,omitempty"`
	Iterations int    `json:"iterations,omitempty"`
	Seed       int64  `json:"seed,omitempty"`
}

type ICMRequestData struct {
	Stacks    []float64 `json:"stacks"`
	Payouts   []float64 `json:"payouts"`
	Simulated bool      `json:"simulated,omitempty"`
	Trials    int       `json:"trials,omitempty"`
	Seed      int64     `json:"seed,omitempty"`
}

type LookupRequestData struct {
	Situation gto.Situation `json:"situation"`
}

type SampleRequestData struct {
	Situation gto.Situation `json:"situation"`
	Seed      int64         `json:"seed"`
}

type PreflopRequestData struct {
	HandClass string `json:"handClass"`
	Opponents int    `json:"opponents"`
}

// Server -> Client payloads

type ParticipantResult struct {
	Range  string  `json:"range"`
	Win    float64 `json:"win"`
	Tie    float64 `json:"tie"`
	Lose   float64 `json:"lose"`
	Equity float64 `json:"equity"`
}

type EquityResultData struct {
	Results []ParticipantResult `json:"results"`
	Mode    string              `json:"mode"`
	Trials  int                 `json:"trials"`
	Partial bool                `json:"partial"`
}

type ICMResultData struct {
	Shares []float64 `json:"shares"`
	Mode   string    `json:"mode"`
	Trials int       `json:"trials,omitempty"`
}

type FrequenciesData struct {
	Situation   gto.Situation      `json:"situation"`
	Frequencies map[string]float64 `json:"frequencies"`
}

type SampledActionData struct {
	Situation gto.Situation `json:"situation"`
	Action    string        `json:"action"`
}

type PreflopResultData struct {
	HandClass string  `json:"handClass"`
	Opponents int     `json:"opponents"`
	Equity    float64 `json:"equity"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
