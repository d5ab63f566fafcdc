package api

// RuntimeData describes one process run (compiler or solution) in stream
// messages. Text fields are trimmed to MaxRuntimeDataHeight x
// MaxRuntimeDataWidth before sending.
type RuntimeData struct {
	Stdin    string `json:"in"`
	Stdout   string `json:"out"`
	Stderr   string `json:"err"`
	ExitCode int64  `json:"exit"`

	WallMillis int64  `json:"wall_ms"`
	MemKiBytes *int64 `json:"mem_kib"` // unset when the OS reported nothing

	TimedOut bool `json:"timed_out"`
}
