package console

import (
	"fmt"

	"github.com/jonathan-r-thorpe/nmos-js/internal/registry"
	"github.com/jonathan-r-thorpe/nmos-js/internal/view"
)

// Activation modes of the Connection API. An empty mode stages parameters
// without activating them.
const (
	ActivateNone              = ""
	ActivateImmediate         = "activate_immediate"
	ActivateScheduledRelative = "activate_scheduled_relative"
	ActivateScheduledAbsolute = "activate_scheduled_absolute"
)

// TransportFileType is the media type of the transport files staged on
// receivers.
const TransportFileType = "application/sdp"

// ActivationModes lists the modes offered by the edit form.
var ActivationModes = []string{ActivateNone, ActivateImmediate, ActivateScheduledRelative, ActivateScheduledAbsolute}

// stagedKeys are the staged fields that may be patched, per resource type.
var stagedKeys = map[string]map[string]bool{
	"senders": {
		"receiver_id": true, "master_enable": true, "activation": true, "transport_params": true,
	},
	"receivers": {
		"sender_id": true, "master_enable": true, "activation": true, "transport_params": true, "transport_file": true,
	},
}

func scheduled(mode string) bool {
	return mode == ActivateScheduledRelative || mode == ActivateScheduledAbsolute
}

// NormalizeStaged checks a staged patch and returns the copy to send. The
// activation mode must be a known one; requested_time is kept only for
// scheduled modes, where it is required. An empty receiver or sender id
// unsets the subscription.
func NormalizeStaged(resourceType string, staged map[string]interface{}) (map[string]interface{}, error) {
	allowed, ok := stagedKeys[resourceType]
	if !ok {
		return nil, &registry.ValidationError{Message: fmt.Sprintf("%s have no staged parameters", resourceType)}
	}
	patch := make(map[string]interface{}, len(staged))
	for k, v := range staged {
		if !allowed[k] {
			return nil, &registry.ValidationError{Field: k, Message: "not a staged parameter"}
		}
		patch[k] = v
	}

	for _, idKey := range []string{"receiver_id", "sender_id"} {
		if v, ok := patch[idKey]; ok {
			switch id := v.(type) {
			case nil:
			case string:
				if id == "" {
					patch[idKey] = nil
				}
			default:
				return nil, &registry.ValidationError{Field: idKey, Message: "must be a string or null"}
			}
		}
	}

	if v, ok := patch["master_enable"]; ok {
		if _, isBool := v.(bool); !isBool {
			return nil, &registry.ValidationError{Field: "master_enable", Message: "must be true or false"}
		}
	}

	if v, ok := patch["transport_file"]; ok && v != nil {
		tf, isMap := v.(map[string]interface{})
		if !isMap {
			return nil, &registry.ValidationError{Field: "transport_file", Message: "must be an object"}
		}
		if _, isString := tf["data"].(string); !isString {
			return nil, &registry.ValidationError{Field: "transport_file.data", Message: "must be a string"}
		}
	}

	if v, ok := patch["activation"]; ok && v != nil {
		activation, err := normalizeActivation(v)
		if err != nil {
			return nil, err
		}
		patch["activation"] = activation
	}
	return patch, nil
}

func normalizeActivation(v interface{}) (map[string]interface{}, error) {
	in, ok := v.(map[string]interface{})
	if !ok {
		return nil, &registry.ValidationError{Field: "activation", Message: "must be an object"}
	}

	var mode string
	switch m := in["mode"].(type) {
	case nil:
	case string:
		mode = m
	default:
		return nil, &registry.ValidationError{Field: "activation.mode", Message: "must be a string"}
	}
	known := false
	for _, am := range ActivationModes {
		if mode == am {
			known = true
			break
		}
	}
	if !known {
		return nil, &registry.ValidationError{Field: "activation.mode", Message: fmt.Sprintf("unknown activation mode %q", mode)}
	}

	out := map[string]interface{}{"mode": nil, "requested_time": nil}
	if mode != ActivateNone {
		out["mode"] = mode
	}
	if scheduled(mode) {
		requested, _ := in["requested_time"].(string)
		if _, ok := view.ParseTAI(requested); !ok {
			return nil, &registry.ValidationError{
				Field:   "activation.requested_time",
				Message: fmt.Sprintf("%s needs a seconds:nanoseconds time, got %q", mode, requested),
			}
		}
		out["requested_time"] = requested
	}
	return out, nil
}
