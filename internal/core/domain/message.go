package domain

import (
	"errors"
	"fmt"
	"strings"
)

// MessageType names a map-service request.
type MessageType string

const (
	MessageVoyageMap       MessageType = "VOYAGE_MAP"
	MessageForensicMap     MessageType = "FORENSIC_MAP"
	MessageForensicCount   MessageType = "FORENSIC_COUNT"
	MessageForensicHeaders MessageType = "FORENSIC_HEADERS"
	MessageForensicRows    MessageType = "FORENSIC_ROWS"
)

// MessageTypes lists every request type.
var MessageTypes = []MessageType{
	MessageVoyageMap, MessageForensicMap, MessageForensicCount, MessageForensicHeaders, MessageForensicRows,
}

// ParseMessageType accepts a type in either case.
func ParseMessageType(s string) (MessageType, error) {
	for _, t := range MessageTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown message type %q", ErrInvalidRequest, s)
}

// Subject returns the subject suffix the type is published under.
func (t MessageType) Subject() string {
	return strings.ToLower(string(t))
}

// StationQuery selects a window of a station catalogue.
type StationQuery struct {
	Kind  StationKind `json:"kind"`
	Start int         `json:"start,omitempty"`
	Count int         `json:"count,omitempty"`
}

// MapRequest is the envelope for every message type. Exactly one of the
// payload fields is set, matching Type.
type MapRequest struct {
	ID       string              `json:"id"`
	Type     MessageType         `json:"type"`
	Voyage   *VoyageMapRequest   `json:"voyage,omitempty"`
	Forensic *ForensicMapRequest `json:"forensic,omitempty"`
	Stations *StationQuery       `json:"stations,omitempty"`
}

// Validate checks that the payload matching Type is present.
func (r *MapRequest) Validate() error {
	var ok bool
	switch r.Type {
	case MessageVoyageMap:
		ok = r.Voyage != nil
	case MessageForensicMap:
		ok = r.Forensic != nil
	case MessageForensicCount, MessageForensicHeaders, MessageForensicRows:
		ok = r.Stations != nil
	default:
		return fmt.Errorf("%w: unknown message type %q", ErrInvalidRequest, r.Type)
	}
	if !ok {
		return fmt.Errorf("%w: %s request without payload", ErrInvalidRequest, r.Type)
	}
	return nil
}

// MapResult is published in reply to a MapRequest.
type MapResult struct {
	RequestID string       `json:"request_id"`
	Type      MessageType  `json:"type"`
	Map       *MapDocument `json:"map,omitempty"`
	Count     *int         `json:"count,omitempty"`
	Headers   []string     `json:"headers,omitempty"`
	Rows      [][]string   `json:"rows,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// Err returns the error reported to the client, or nil when the result
// carries none.
func (r *MapResult) Err() error {
	if r == nil || r.Error == "" {
		return nil
	}
	return errors.New(r.Error)
}

// MapExport is a map document with the contents of each of its layers.
type MapExport struct {
	Map    *MapDocument    `json:"map"`
	Layers []LayerFeatures `json:"layers"`
}
