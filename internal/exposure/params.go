package exposure

import (
	"encoding/json"
)

// Defaults applied when a screen's params omit a field or the stored
// value fails to parse.
const (
	DefaultVisitorResetMinutes = 45
	DefaultPrePostWindowS      = 30
	DefaultBucketMinutes       = 15
)

// ScreenParams carries the per-screen tuning used by context resolution
// and KPI aggregation. The schema matches the params_json column on the
// screens table. Fields omitted from the JSON fall back to defaults via
// the Get* methods, so partial configs are safe.
//
// context_priority_json arrives from upstream either as a JSON array of
// phase names or as a string that itself contains a JSON array. Both
// forms are accepted; anything else falls back to the default priority.
type ScreenParams struct {
	VisitorResetMinutes   *int            `json:"visitor_reset_minutes,omitempty"`
	ReportIntervalMinutes *int            `json:"report_interval_minutes,omitempty"`
	PrePostWindowS        *int            `json:"pre_post_window_s,omitempty"`
	ContextPriorityJSON   json.RawMessage `json:"context_priority_json,omitempty"`
}

// ParseScreenParams decodes a params_json blob. Malformed or empty input
// yields zero params, which the Get* methods resolve to defaults; this
// function never fails.
func ParseScreenParams(raw []byte) ScreenParams {
	var p ScreenParams
	if len(raw) == 0 {
		return p
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return ScreenParams{}
	}
	return p
}

// GetVisitorResetMinutes returns the sessionization reset gap or the default.
func (p ScreenParams) GetVisitorResetMinutes() int {
	if p.VisitorResetMinutes == nil || *p.VisitorResetMinutes <= 0 {
		return DefaultVisitorResetMinutes
	}
	return *p.VisitorResetMinutes
}

// GetPrePostWindowS returns the pre/post context window in seconds or the
// default. A zero window is allowed and disables pre/post resolution.
func (p ScreenParams) GetPrePostWindowS() int {
	if p.PrePostWindowS == nil || *p.PrePostWindowS < 0 {
		return DefaultPrePostWindowS
	}
	return *p.PrePostWindowS
}

// GetReportIntervalMinutes returns the screen's configured bucket size,
// else the caller-supplied fallback, else the built-in default.
func (p ScreenParams) GetReportIntervalMinutes(fallback int) int {
	if p.ReportIntervalMinutes != nil && *p.ReportIntervalMinutes > 0 {
		return *p.ReportIntervalMinutes
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultBucketMinutes
}

// GetContextPriority returns the screen's phase priority list, accepting
// both the direct-array and string-wrapped encodings of
// context_priority_json. Malformed or empty values fall back to the
// default ordering.
func (p ScreenParams) GetContextPriority() []string {
	raw := p.ContextPriorityJSON
	if len(raw) == 0 {
		return DefaultContextPriority()
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list
	}

	// String-wrapped form: the value is a JSON string whose contents are
	// themselves a JSON array.
	var wrapped string
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped != "" {
		if err := json.Unmarshal([]byte(wrapped), &list); err == nil && len(list) > 0 {
			return list
		}
	}

	return DefaultContextPriority()
}
