package httpclient

// Verb identifies the HTTP method of a request. The zero value is
// VerbGet.
type Verb int

const (
	VerbGet Verb = iota
	VerbHead
	VerbPost
	VerbPut
	VerbPatch
	VerbDelete
	VerbConnect
	VerbOptions
)

var verbTokens = [...]string{
	VerbGet:     "GET",
	VerbHead:    "HEAD",
	VerbPost:    "POST",
	VerbPut:     "PUT",
	VerbPatch:   "PATCH",
	VerbDelete:  "DELETE",
	VerbConnect: "CONNECT",
	VerbOptions: "OPTIONS",
}

// String renders the verb as its uppercase wire token, e.g. "GET".
func (v Verb) String() string {
	if int(v) < 0 || int(v) >= len(verbTokens) {
		return "GET"
	}
	return verbTokens[v]
}
