package ipc

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse describes the running daemon.
type StatusResponse struct {
	Running        bool     `json:"running"`
	PID            int      `json:"pid"`
	SessionID      string   `json:"session_id"`
	BusName        string   `json:"bus_name"`
	UniqueName     string   `json:"unique_name"`
	Version        uint32   `json:"version"`
	RunningHosts   int      `json:"running_hosts"`
	TrackedClients int      `json:"tracked_clients"`
	StartedAt      string   `json:"started_at"`
	LockPath       string   `json:"lock_path"`
	LogPath        string   `json:"log_path"`
	ChromiumPaths  []string `json:"chromium_paths"`
	MozillaPaths   []string `json:"mozilla_paths"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// ShutdownRequest asks the daemon to exit.
type ShutdownRequest struct{}

// ShutdownResponse acknowledges a shutdown request.
type ShutdownResponse struct {
	Stopping bool `json:"stopping"`
}
