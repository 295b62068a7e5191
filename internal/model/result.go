package model

// ErrorScope identifies the granularity at which a pipeline failure was caught
type ErrorScope string

const (
	ScopeChannel ErrorScope = "channel"
	ScopeItem    ErrorScope = "item"
	ScopeRun     ErrorScope = "run"
)

// ResultError is one failure recorded during a run
type ResultError struct {
	Scope     ErrorScope `json:"scope"`
	ChannelID string     `json:"channel_id,omitempty"`
	VideoID   string     `json:"video_id,omitempty"`
	Message   string     `json:"error"`
	Err       error      `json:"-"`
}

// Subject returns the identifier the error is recorded against
func (e ResultError) Subject() string {
	switch {
	case e.VideoID != "":
		return e.VideoID
	case e.ChannelID != "":
		return e.ChannelID
	default:
		return "Unknown"
	}
}

// ProcessingResult aggregates the outcome of one pipeline run
type ProcessingResult struct {
	ChannelsProcessed  int           `json:"channels_processed"`
	VideosProcessed    int           `json:"videos_processed"`
	SummariesGenerated int           `json:"summaries_generated"`
	Errors             []ResultError `json:"errors"`
}

// HasErrors reports whether any failure was recorded
func (r *ProcessingResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// AddError appends a failure in the order it occurred
func (r *ProcessingResult) AddError(e ResultError) {
	r.Errors = append(r.Errors, e)
}

// ErrorsInScope returns the recorded failures of one scope
func (r *ProcessingResult) ErrorsInScope(scope ErrorScope) []ResultError {
	var out []ResultError
	for _, e := range r.Errors {
		if e.Scope == scope {
			out = append(out, e)
		}
	}
	return out
}
