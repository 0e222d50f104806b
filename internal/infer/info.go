package infer

import (
	"github.com/mcncl/jsonedit/internal/models"
)

// InfoFields names the three members of a self-describing command
// template.
type InfoFields struct {
	Message     string
	Description string
	Args        string
}

// DefaultInfoFields matches the chat bot command template layout.
var DefaultInfoFields = InfoFields{
	Message:     "msg",
	Description: "info",
	Args:        "args_info",
}

// Hint is one argument description of an info structure.
type Hint struct {
	Name string
	Text string
}

// Info is the decoded form of an info structure.
type Info struct {
	Message     models.Value
	Description string
	Hints       []Hint
}

// DetectInfo reports whether v is an info structure: an object with
// exactly the three configured members, where the message is a leaf, the
// description is a string and the arguments are an object of leaves.
func DetectInfo(v models.Value, fields InfoFields) (Info, bool) {
	obj := v.Object()
	if obj == nil || obj.Len() != 3 {
		return Info{}, false
	}

	msg, ok := obj.Get(fields.Message)
	if !ok || !IsLeaf(msg) {
		return Info{}, false
	}
	desc, ok := obj.Get(fields.Description)
	if !ok || desc.Kind() != models.KindString {
		return Info{}, false
	}
	args, ok := obj.Get(fields.Args)
	if !ok || args.Kind() != models.KindObject {
		return Info{}, false
	}

	info := Info{Message: msg, Description: desc.Str()}
	argObj := args.Object()
	for _, name := range argObj.Keys() {
		hint, _ := argObj.Get(name)
		if !IsLeaf(hint) {
			return Info{}, false
		}
		info.Hints = append(info.Hints, Hint{Name: name, Text: Text(hint)})
	}
	return info, true
}
