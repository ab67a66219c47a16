package api

type ExecStatus string

const (
	Success       ExecStatus = "success"
	CompileError  ExecStatus = "compile_error"
	RuntimeError  ExecStatus = "runtime_error"
	TimedOut      ExecStatus = "timed_out"
	InternalError ExecStatus = "internal_error"

	// InvalidRequest is returned for unknown languages or out-of-range limits
	InvalidRequest ExecStatus = "invalid_request"
)

// ExecRes is the complete result of one execution
type ExecRes struct {
	Uuid string `json:"uuid"`

	Status  ExecStatus `json:"status"`
	Lang    string     `json:"lang"`
	Version string     `json:"version,omitempty"`

	// Compiler diagnostics; empty on success
	CompileInfo string `json:"compile_info"`

	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ExitStatus int    `json:"exit_status"`
	TimedOut   bool   `json:"timed_out"`

	// Overall error message (for internal errors)
	ErrorMessage *string `json:"error_message,omitempty"`

	StartTime   string `json:"start_time"`
	FinishTime  string `json:"finish_time"`
	TotalTimeMs int64  `json:"total_time_ms"`
}
