package session

// State is the lifecycle phase of an editing session
type State string

const (
	StateEmpty     State = "empty"     // no project
	StateUploading State = "uploading" // file sent, waiting for a project id
	StateLoading   State = "loading"   // project known, media not ready yet
	StateReady     State = "ready"     // markers and filenames can be edited
	StateExporting State = "exporting" // export request in flight
)

func (s State) String() string {
	return string(s)
}

// CanEdit reports whether markers and filenames may change in this state
func (s State) CanEdit() bool {
	return s == StateReady
}

// IsBusy reports whether a network call is in flight
func (s State) IsBusy() bool {
	return s == StateUploading || s == StateExporting
}

// HasProject reports whether a project id is held in this state
func (s State) HasProject() bool {
	switch s {
	case StateLoading, StateReady, StateExporting:
		return true
	default:
		return false
	}
}
