package ptu

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//InvokeRequest is what the functions host posts to a custom handler for every invocation
type InvokeRequest struct {
	Data     map[string]json.RawMessage `json:"Data"`
	Metadata map[string]json.RawMessage `json:"Metadata"`
}

//InvokeResponse is returned to the functions host
type InvokeResponse struct {
	Outputs     map[string]interface{} `json:"Outputs"`
	Logs        []string               `json:"Logs"`
	ReturnValue interface{}            `json:"ReturnValue"`
}

//ValidationResponse answers an event grid subscription handshake
type ValidationResponse struct {
	ValidationResponse string `json:"validationResponse"`
}

//ErrNoEventBinding is returned when an invocation lacks the configured trigger binding
var ErrNoEventBinding = errors.New("invocation carries no event binding")

//handleInvoke takes invocations from the functions host and routes them to the handler registered for the function name
func handleInvoke(conf *Conf, svc *Services) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		fn := chi.URLParam(r, "function")
		h, ok := FindHandler(fn)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return errors.Errorf("no handler for function '%s'", fn)
		}

		req := &InvokeRequest{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return errors.Wrap(err, "failed to decode invocation request")
		}

		ev, ok := req.Data[conf.EventBinding]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return errors.Wrapf(ErrNoEventBinding, "binding '%s'", conf.EventBinding)
		}

		res, err := h(r.Context(), conf, svc.with(zap.String("function", fn), zap.String("invocation_id", InvocationID(r.Context()))), ev)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return errors.Wrapf(err, "function '%s' failed", fn)
		}

		return writeJSON(w, &InvokeResponse{
			Outputs:     map[string]interface{}{},
			Logs:        []string{},
			ReturnValue: res,
		})
	}
}

//handleWebhook takes event grid deliveries directly, answering subscription validation handshakes
func handleWebhook(conf *Conf, svc *Services) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		body := json.RawMessage{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return errors.Wrap(err, "failed to decode delivery")
		}

		evs, err := DecodeEvents("", body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return err
		}

		isvc := svc.with(zap.String("invocation_id", InvocationID(r.Context())))
		statuses := []*Status{}
		for _, ev := range evs {
			if ev.Type == SubscriptionValidationEventType {
				vd, err := ev.ValidationData()
				if err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return err
				}

				isvc.Logs.Info("event subscription validated", zap.String("topic", ev.Topic))
				return writeJSON(w, &ValidationResponse{ValidationResponse: vd.ValidationCode})
			}

			statuses = append(statuses, HandleEvent(r.Context(), conf, isvc, ev))
		}

		return writeJSON(w, statuses)
	}
}

//httpBinding is how the functions host passes an http triggered request to a custom handler
type httpBinding struct {
	Method string          `json:"Method"`
	Body   json.RawMessage `json:"Body"`
}

//unwrapHTTP returns the body of an http trigger binding, other payloads are returned as is
func unwrapHTTP(raw json.RawMessage) json.RawMessage {
	hb := httpBinding{}
	if err := decodeData(raw, &hb); err != nil || hb.Method == "" {
		return raw
	}

	return hb.Body
}

//with returns a copy of the services that logs with additional fields
func (svc *Services) with(fields ...zap.Field) *Services {
	cp := *svc
	cp.Logs = svc.Logs.With(fields...)
	return &cp
}

func writeJSON(w http.ResponseWriter, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode response")
	}

	return nil
}
