package client

import (
	"context"
	"fmt"
	"sync"

	"alfredoptarigan/intelliapply/internal/models"
)

type ProfileAPI interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	SaveProfile(ctx context.Context, p models.Profile) (*models.Profile, error)
	DeleteProfile(ctx context.Context, id string) error
}

// Profiles holds the user's resume profiles and the active pointer.
type Profiles struct {
	api      ProfileAPI
	notifier Notifier

	mu       sync.Mutex
	profiles []models.Profile
	activeID string
}

func NewProfiles(api ProfileAPI, notifier Notifier) *Profiles {
	return &Profiles{api: api, notifier: notifier}
}

// Load replaces the list. An active pointer to a profile that no longer exists
// is cleared.
func (p *Profiles) Load(ctx context.Context) error {
	profiles, err := p.api.ListProfiles(ctx)
	if err != nil {
		notify(p.notifier, LevelError, "Failed to load profiles: "+messageOf(err))
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles = profiles
	if p.indexLocked(p.activeID) < 0 {
		p.activeID = ""
	}
	return nil
}

// Save creates or updates profile. When the save leaves exactly one profile
// it becomes the active one.
func (p *Profiles) Save(ctx context.Context, profile models.Profile) (*models.Profile, error) {
	saved, err := p.api.SaveProfile(ctx, profile)
	if err != nil {
		notify(p.notifier, LevelError, "Error saving profile: "+messageOf(err))
		return nil, err
	}

	p.mu.Lock()
	id := saved.ID.String()
	if idx := p.indexLocked(id); idx >= 0 {
		p.profiles[idx] = *saved
	} else {
		p.profiles = append([]models.Profile{*saved}, p.profiles...)
	}
	if len(p.profiles) == 1 {
		p.activeID = id
	}
	p.mu.Unlock()

	notify(p.notifier, LevelSuccess, "Profile saved!")
	return saved, nil
}

// Delete removes the profile. Deleting the active profile promotes the first
// remaining one, or clears the pointer when none is left.
func (p *Profiles) Delete(ctx context.Context, id string) error {
	if err := p.api.DeleteProfile(ctx, id); err != nil {
		notify(p.notifier, LevelError, "Error deleting profile: "+messageOf(err))
		return err
	}

	p.mu.Lock()
	if idx := p.indexLocked(id); idx >= 0 {
		p.profiles = append(p.profiles[:idx], p.profiles[idx+1:]...)
	}
	if p.activeID == id {
		p.activeID = ""
		if len(p.profiles) > 0 {
			p.activeID = p.profiles[0].ID.String()
		}
	}
	p.mu.Unlock()

	notify(p.notifier, LevelSuccess, "Profile deleted.")
	return nil
}

// SetActive points at id. An empty id clears the pointer.
func (p *Profiles) SetActive(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id != "" && p.indexLocked(id) < 0 {
		return fmt.Errorf("%w: unknown profile %s", ErrPrecondition, id)
	}
	p.activeID = id
	return nil
}

func (p *Profiles) ActiveID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeID
}

// Active returns the active profile, or nil.
func (p *Profiles) Active() *models.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	if idx := p.indexLocked(p.activeID); idx >= 0 {
		profile := p.profiles[idx]
		return &profile
	}
	return nil
}

func (p *Profiles) List() []models.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Profile(nil), p.profiles...)
}

func (p *Profiles) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range p.profiles {
		if p.profiles[i].ID.String() == id {
			return i
		}
	}
	return -1
}
