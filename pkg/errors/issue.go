package errors

import "encoding/json"

// Issue is a recoverable failure tied to one package. Analysis records
// issues and carries on; they are returned next to the results so callers
// can report them without scraping logs.
type Issue struct {
	Package string
	Stage   string // which step failed, e.g. "peer", "singleton", "audit"
	Err     error
}

func (i Issue) Error() string {
	return i.Stage + " " + i.Package + ": " + i.Err.Error()
}

func (i Issue) Unwrap() error { return i.Err }

// MarshalJSON renders the cause as a string.
func (i Issue) MarshalJSON() ([]byte, error) {
	msg := ""
	if i.Err != nil {
		msg = UserMessage(i.Err)
	}
	return json.Marshal(struct {
		Package string `json:"package"`
		Stage   string `json:"stage"`
		Error   string `json:"error"`
	}{i.Package, i.Stage, msg})
}
