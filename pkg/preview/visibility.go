package preview

import "github.com/go-drift/bannerkit/pkg/banner"

// Visibility is the local display state driven by button actions.
type Visibility struct {
	Banner      bool
	Preferences bool
}

// Apply returns the state after action. Unknown actions and ActionNone
// leave it unchanged.
func (v Visibility) Apply(action banner.Action) Visibility {
	switch action {
	case banner.ActionShowPreferences:
		v.Preferences = true
	case banner.ActionAcceptAll, banner.ActionRejectAll:
		v.Banner = false
		v.Preferences = false
	}
	return v
}

// Dispatch applies a raw button action and returns the new visibility.
// Nothing beyond local state changes.
func (s *Session) Dispatch(raw string) Visibility {
	action, _ := banner.ParseAction(raw)
	s.mu.Lock()
	defer s.mu.Unlock()
	if next := s.visibility.Apply(action); next != s.visibility {
		s.visibility = next
		s.dirty = true
	}
	return s.visibility
}

// Visibility returns the current visibility state.
func (s *Session) Visibility() Visibility {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibility
}

// ShowBanner makes the banner visible again with preferences hidden.
func (s *Session) ShowBanner() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visibility = Visibility{Banner: true}
	s.dirty = true
}
