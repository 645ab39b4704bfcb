package server

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nathoo/runesim/engine/errs"
)

// ClientMessage is one inbound frame. "command" carries a command line;
// "status" asks for a fresh status frame.
type ClientMessage struct {
	Type  string `json:"type"`
	Input string `json:"input,omitempty"`
}

// ServerMessage is one outbound frame.
type ServerMessage struct {
	Type    string `json:"type"` // "event", "status", "error"
	Message string `json:"message,omitempty"`
	Status  any    `json:"status,omitempty"`
	Code    string `json:"code,omitempty"`
}

const clientSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["type"],
	"properties": {
		"type": {"enum": ["command", "status"]},
		"input": {"type": "string", "maxLength": 512}
	},
	"additionalProperties": false
}`

var clientMessageSchema = jsonschema.MustCompileString("client_message.json", clientSchema)

// decodeClientMessage validates a raw frame against the wire schema
// before unmarshaling it.
func decodeClientMessage(payload []byte) (ClientMessage, error) {
	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return ClientMessage{}, fmt.Errorf("malformed JSON: %w", err)
	}
	if err := clientMessageSchema.Validate(raw); err != nil {
		return ClientMessage{}, fmt.Errorf("invalid message: %w", err)
	}
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return ClientMessage{}, err
	}
	return msg, nil
}

func eventFrame(message string) ServerMessage {
	return ServerMessage{Type: "event", Message: message}
}

func statusFrame(status any) ServerMessage {
	return ServerMessage{Type: "status", Status: status}
}

func errorFrame(err error) ServerMessage {
	return ServerMessage{Type: "error", Code: errs.Code(err), Message: err.Error()}
}
