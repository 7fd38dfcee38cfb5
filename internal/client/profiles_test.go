package client

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/intelliapply/internal/models"
)

func TestProfiles_FirstSaveBecomesActive(t *testing.T) {
	rec := &recorder{}
	p := NewProfiles(&fakeProfileAPI{}, rec)
	ctx := context.Background()

	first, err := p.Save(ctx, models.Profile{Name: "Backend"})
	require.NoError(t, err)
	assert.Equal(t, first.ID.String(), p.ActiveID())

	second, err := p.Save(ctx, models.Profile{Name: "Data"})
	require.NoError(t, err)
	assert.Equal(t, first.ID.String(), p.ActiveID())
	assert.Equal(t, []uuid.UUID{second.ID, first.ID}, []uuid.UUID{p.List()[0].ID, p.List()[1].ID})

	second.Name = "Data Platform"
	_, err = p.Save(ctx, *second)
	require.NoError(t, err)
	assert.Len(t, p.List(), 2)
	assert.Equal(t, "Data Platform", p.List()[0].Name)
	assert.Equal(t, []string{"Profile saved!", "Profile saved!", "Profile saved!"}, rec.messages(LevelSuccess))
}

func TestProfiles_DeleteActivePromotesFirstRemaining(t *testing.T) {
	a, b := models.Profile{ID: uuid.New(), Name: "A"}, models.Profile{ID: uuid.New(), Name: "B"}
	api := &fakeProfileAPI{listed: []models.Profile{a, b}}
	p := NewProfiles(api, nil)
	ctx := context.Background()
	require.NoError(t, p.Load(ctx))
	require.NoError(t, p.SetActive(b.ID.String()))

	require.NoError(t, p.Delete(ctx, b.ID.String()))
	assert.Equal(t, a.ID.String(), p.ActiveID())
	require.NotNil(t, p.Active())
	assert.Equal(t, "A", p.Active().Name)

	require.NoError(t, p.Delete(ctx, a.ID.String()))
	assert.Empty(t, p.ActiveID())
	assert.Nil(t, p.Active())
	assert.Equal(t, []string{b.ID.String(), a.ID.String()}, api.deleted)
}

func TestProfiles_DeleteInactiveKeepsPointer(t *testing.T) {
	a, b := models.Profile{ID: uuid.New()}, models.Profile{ID: uuid.New()}
	p := NewProfiles(&fakeProfileAPI{listed: []models.Profile{a, b}}, nil)
	require.NoError(t, p.Load(context.Background()))
	require.NoError(t, p.SetActive(b.ID.String()))

	require.NoError(t, p.Delete(context.Background(), a.ID.String()))

	assert.Equal(t, b.ID.String(), p.ActiveID())
}

func TestProfiles_SetActive(t *testing.T) {
	a := models.Profile{ID: uuid.New()}
	p := NewProfiles(&fakeProfileAPI{listed: []models.Profile{a}}, nil)
	require.NoError(t, p.Load(context.Background()))

	assert.ErrorIs(t, p.SetActive(uuid.NewString()), ErrPrecondition)
	assert.Empty(t, p.ActiveID())

	require.NoError(t, p.SetActive(a.ID.String()))
	require.NoError(t, p.SetActive(""))
	assert.Empty(t, p.ActiveID())
}

func TestProfiles_LoadClearsStalePointer(t *testing.T) {
	a := models.Profile{ID: uuid.New()}
	api := &fakeProfileAPI{listed: []models.Profile{a}}
	p := NewProfiles(api, nil)
	require.NoError(t, p.Load(context.Background()))
	require.NoError(t, p.SetActive(a.ID.String()))

	api.listed = nil
	require.NoError(t, p.Load(context.Background()))

	assert.Empty(t, p.ActiveID())
}

func TestProfiles_SaveFailure(t *testing.T) {
	rec := &recorder{}
	p := NewProfiles(&fakeProfileAPI{saveErr: &APIError{Status: 400, Message: "Name is required."}}, rec)

	_, err := p.Save(context.Background(), models.Profile{})

	require.Error(t, err)
	assert.Empty(t, p.List())
	assert.Equal(t, []string{"Error saving profile: Name is required."}, rec.messages(LevelError))
}
