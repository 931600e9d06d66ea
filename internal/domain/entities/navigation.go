package entities

import "strings"

// NavigationState is a snapshot of a presentation session's position
type NavigationState struct {
	CurrentIndex int  `json:"currentIndex"`
	SlideCount   int  `json:"slideCount"`
	IsOpen       bool `json:"isOpen"`
}

// NavigationAction names a navigation operation requested by the host
type NavigationAction string

const (
	ActionNext     NavigationAction = "next"
	ActionPrevious NavigationAction = "previous"
	ActionFirst    NavigationAction = "first"
	ActionLast     NavigationAction = "last"
	ActionJump     NavigationAction = "jump"
	ActionClose    NavigationAction = "close"
)

// KeyTarget describes the element that had focus when a key was pressed
type KeyTarget struct {
	Tag             string `json:"tag,omitempty"`
	ContentEditable bool   `json:"contentEditable,omitempty"`
	Role            string `json:"role,omitempty"`
}

// KeyEvent is a single keyboard input forwarded by the host page
type KeyEvent struct {
	Key    string     `json:"key"`
	Target *KeyTarget `json:"target,omitempty"`
}

// InEditable reports whether focus was inside an editable text control
func (e KeyEvent) InEditable() bool {
	if e.Target == nil {
		return false
	}
	if e.Target.ContentEditable {
		return true
	}
	switch strings.ToLower(e.Target.Tag) {
	case "input", "textarea", "select":
		return true
	}
	return strings.EqualFold(e.Target.Role, "textbox")
}

// KeyResult describes what a key event did
type KeyResult struct {
	Handled bool             `json:"handled"`
	Action  NavigationAction `json:"action,omitempty"`
	Buffer  string           `json:"buffer,omitempty"`
	State   NavigationState  `json:"state"`
}
