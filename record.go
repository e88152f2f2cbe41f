package gocontent

// RemoteFileRecord is what a name resolves to inside a backend.
// It lives only for the duration of one Load or Download call.
type RemoteFileRecord struct {
	ID       string // backend object id, e.g. a Drive file id
	Name     string
	URL      string // direct content URL for chat attachments
	Position int    // attachment index inside the history window, -1 when not windowed
}
