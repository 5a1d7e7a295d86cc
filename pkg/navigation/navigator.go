// Package navigation tracks which view the client shows and which
// classroom, subject and chapter are selected.
package navigation

import (
	"sync"

	"github.com/SAP-F-2025/edunexus-service/pkg/apiclient"
)

type View string

const (
	ViewDashboard     View = "dashboard"
	ViewClassroom     View = "classroom"
	ViewSubject       View = "subject"
	ViewChapter       View = "chapter"
	ViewAnnouncements View = "announcements"
	ViewMyNotes       View = "my-notes"
)

// Kind names an entity that can disappear from under the selection.
type Kind string

const (
	KindClassroom Kind = "classroom"
	KindSubject   Kind = "subject"
	KindChapter   Kind = "chapter"
)

// State is a snapshot of the navigator.
type State struct {
	View      View
	Classroom *apiclient.Classroom
	Subject   *apiclient.Subject
	Chapter   *apiclient.Chapter
}

type Navigator struct {
	mu        sync.Mutex
	state     State
	listeners []func(State)
}

func New() *Navigator {
	return &Navigator{state: State{View: ViewDashboard}}
}

// OnChange registers fn for every transition.
func (n *Navigator) OnChange(fn func(State)) {
	n.mu.Lock()
	n.listeners = append(n.listeners, fn)
	n.mu.Unlock()
}

func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

func (n *Navigator) SelectClassroom(c apiclient.Classroom) {
	n.update(func(s *State) {
		s.Classroom = &c
		s.View = ViewClassroom
	})
}

func (n *Navigator) SelectSubject(sub apiclient.Subject) {
	n.update(func(s *State) {
		s.Subject = &sub
		s.View = ViewSubject
	})
}

func (n *Navigator) SelectChapter(ch apiclient.Chapter) {
	n.update(func(s *State) {
		s.Chapter = &ch
		s.View = ViewChapter
	})
}

func (n *Navigator) ShowAnnouncements() {
	n.update(func(s *State) { s.View = ViewAnnouncements })
}

func (n *Navigator) ShowMyNotes() {
	n.update(func(s *State) { s.View = ViewMyNotes })
}

// Back clears the deepest selection and moves up one level.
func (n *Navigator) Back() {
	n.update(func(s *State) {
		switch s.View {
		case ViewChapter:
			s.Chapter = nil
			s.View = ViewSubject
		case ViewSubject:
			s.Subject = nil
			s.View = ViewClassroom
		default:
			*s = State{View: ViewDashboard}
		}
	})
}

func (n *Navigator) BackToDashboard() {
	n.update(func(s *State) { *s = State{View: ViewDashboard} })
}

// Invalidate reacts to a deleted entity. If it is part of the selection, the
// selection is cut above it and the view moves to the deepest level still
// selected.
func (n *Navigator) Invalidate(kind Kind, id string) {
	n.update(func(s *State) {
		switch {
		case kind == KindClassroom && s.Classroom != nil && s.Classroom.ID == id:
			*s = State{View: ViewDashboard}
		case kind == KindSubject && s.Subject != nil && s.Subject.ID == id:
			s.Subject, s.Chapter = nil, nil
			if s.View == ViewSubject || s.View == ViewChapter {
				s.View = ViewClassroom
			}
		case kind == KindChapter && s.Chapter != nil && s.Chapter.ID == id:
			s.Chapter = nil
			if s.View == ViewChapter {
				s.View = ViewSubject
			}
		}
	})
}

// Render resolves the view to show. A view whose entity is missing falls
// back to the dashboard.
func (n *Navigator) Render() View {
	s := n.State()
	switch s.View {
	case ViewChapter:
		if s.Chapter != nil {
			return ViewChapter
		}
	case ViewSubject:
		if s.Subject != nil {
			return ViewSubject
		}
	case ViewClassroom:
		if s.Classroom != nil {
			return ViewClassroom
		}
	case ViewAnnouncements, ViewMyNotes:
		return s.View
	}
	return ViewDashboard
}

func (n *Navigator) update(fn func(*State)) {
	n.mu.Lock()
	before := n.state
	fn(&n.state)
	after := n.state
	listeners := append([]func(State){}, n.listeners...)
	n.mu.Unlock()

	if before == after {
		return
	}
	for _, l := range listeners {
		l(after)
	}
}
