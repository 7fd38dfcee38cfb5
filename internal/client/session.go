package client

import "context"

// Session wires the client components for one signed-in user.
type Session struct {
	API       *API
	Jobs      *Mirror
	Selection *Selection
	Editor    *Editor
	Profiles  *Profiles
	Assistant *Assistant
	Maker     *ResumeMaker
}

// NewSession builds the components around api. history may be nil.
func NewSession(api *API, history HistoryRecorder, notifier Notifier) *Session {
	profiles := NewProfiles(api, notifier)
	jobs := NewMirror(api, notifier)
	selection := NewSelection(jobs, api, profiles, notifier)
	return &Session{
		API:       api,
		Jobs:      jobs,
		Selection: selection,
		Editor:    NewEditor(api, jobs, selection, notifier),
		Profiles:  profiles,
		Assistant: NewAssistant(api, profiles, notifier),
		Maker:     NewResumeMaker(api, history, notifier),
	}
}

// Start loads profiles and jobs, then opens the change feed.
func (s *Session) Start(ctx context.Context) error {
	if err := s.Profiles.Load(ctx); err != nil {
		return err
	}
	if err := s.Jobs.Load(ctx); err != nil {
		return err
	}
	return s.Jobs.Subscribe(ctx)
}

// Close tears down the change feed. It must not be called from the notifier.
func (s *Session) Close() {
	s.Jobs.Unsubscribe()
}
