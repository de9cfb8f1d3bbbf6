package ptu

import (
	"context"
	"encoding/json"
	"regexp"
)

//Handler describes a function handler that matches a specific function name
type Handler func(ctx context.Context, conf *Conf, svc *Services, ev json.RawMessage) (interface{}, error)

//Handlers map function names to actual event handlers
var Handlers = map[*regexp.Regexp]Handler{
	regexp.MustCompile(`^ptu-ri-alert-function$`): HandleEventGrid,
	regexp.MustCompile(`^ptu-capacity-check$`):    HandleCapacityCheck,
}

//FindHandler returns the handler registered for the function name
func FindHandler(name string) (Handler, bool) {
	for exp, h := range Handlers {
		if exp.MatchString(name) {
			return h, true
		}
	}

	return nil, false
}
