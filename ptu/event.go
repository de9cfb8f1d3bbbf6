package ptu

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//SubscriptionValidationEventType is sent by event grid when a webhook subscription is created
const SubscriptionValidationEventType = "Microsoft.EventGrid.SubscriptionValidationEvent"

//NotAvailable is logged for payload fields the event doesn't carry
const NotAvailable = "N/A"

//Event is a resource change notification as delivered by event grid. Both the
//event grid schema and the cloud events 1.0 schema decode into it.
type Event struct {
	ID          string          `json:"id"`
	Type        string          `json:"eventType"`
	Subject     string          `json:"subject"`
	Topic       string          `json:"topic,omitempty"`
	Time        time.Time       `json:"eventTime"`
	DataVersion string          `json:"dataVersion,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

//envelope holds the fields of both schemas so either can be decoded
type envelope struct {
	ID          string          `json:"id"`
	Subject     string          `json:"subject"`
	Data        json.RawMessage `json:"data"`
	EventType   string          `json:"eventType"`
	EventTime   *time.Time      `json:"eventTime"`
	Topic       string          `json:"topic"`
	DataVersion string          `json:"dataVersion"`
	Type        string          `json:"type"`
	Time        *time.Time      `json:"time"`
	Source      string          `json:"source"`
	SpecVersion string          `json:"specversion"`
}

//UnmarshalJSON decodes either schema
func (ev *Event) UnmarshalJSON(b []byte) error {
	env := envelope{}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}

	*ev = Event{
		ID:          env.ID,
		Type:        env.EventType,
		Subject:     env.Subject,
		Topic:       env.Topic,
		DataVersion: env.DataVersion,
		Data:        env.Data,
	}

	if env.EventTime != nil {
		ev.Time = *env.EventTime
	}

	//cloud events schema
	if env.SpecVersion != "" || ev.Type == "" {
		ev.Type = env.Type
		if env.Source != "" {
			ev.Topic = env.Source
		}

		if env.Time != nil {
			ev.Time = *env.Time
		}
	}

	return nil
}

//ResourceData is the payload of a resource write notification
type ResourceData struct {
	OperationName    string `json:"operationName"`
	Status           string `json:"status"`
	ResourceProvider string `json:"resourceProvider"`
	ResourceURI      string `json:"resourceUri"`
	CorrelationID    string `json:"correlationId"`
	SubscriptionID   string `json:"subscriptionId"`
	TenantID         string `json:"tenantId"`
}

//ValidationData is the payload of a subscription validation event
type ValidationData struct {
	ValidationCode string `json:"validationCode"`
	ValidationURL  string `json:"validationUrl"`
}

//ResourceData decodes the payload as a resource notification, an absent payload is empty
func (ev *Event) ResourceData() (d *ResourceData, err error) {
	d = &ResourceData{}
	if err = decodeData(ev.Data, d); err != nil {
		return nil, errors.Wrap(err, "failed to decode resource data")
	}

	return d, nil
}

//ValidationData decodes the payload of a subscription validation event
func (ev *Event) ValidationData() (d *ValidationData, err error) {
	d = &ValidationData{}
	if err = decodeData(ev.Data, d); err != nil {
		return nil, errors.Wrap(err, "failed to decode validation data")
	}

	return d, nil
}

func decodeData(data json.RawMessage, v interface{}) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	//some deliveries carry the payload as an encoded string
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		data = []byte(s)
	}

	return json.Unmarshal(data, v)
}

//orNA substitutes the not available marker for empty strings
func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}

	return s
}

//DecodeEvent decodes a single event that may be wrapped in a JSON string
func DecodeEvent(raw json.RawMessage) (ev *Event, err error) {
	ev = &Event{}
	if err = decodeData(raw, ev); err != nil {
		return nil, errors.Wrap(err, "failed to decode event")
	}

	return ev, nil
}

//DecodeEvents decodes a single event or a batch of events. Documents whose
//name ends in .yaml or .yml are read as YAML, everything else as JSON.
func DecodeEvents(name string, b []byte) (evs []*Event, err error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		var doc interface{}
		if err = yaml.Unmarshal(b, &doc); err != nil {
			return nil, errors.Wrap(err, "failed to decode yaml events")
		}

		if b, err = json.Marshal(doc); err != nil {
			return nil, errors.Wrap(err, "failed to convert yaml events")
		}
	}

	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		if err = json.Unmarshal(b, &evs); err != nil {
			return nil, errors.Wrap(err, "failed to decode event batch")
		}

		return evs, nil
	}

	ev, err := DecodeEvent(b)
	if err != nil {
		return nil, err
	}

	return []*Event{ev}, nil
}
