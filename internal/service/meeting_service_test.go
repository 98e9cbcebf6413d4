package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-app/colegio-api/internal/models"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
)

type mockMeetingRepo struct {
	meetings map[string]models.Meeting
}

func (m *mockMeetingRepo) Get(ctx context.Context, id string) (*models.Meeting, error) {
	if mt, ok := m.meetings[id]; ok {
		return &mt, nil
	}
	return nil, nil
}

func (m *mockMeetingRepo) Create(ctx context.Context, mt *models.Meeting) error {
	if m.meetings == nil {
		m.meetings = make(map[string]models.Meeting)
	}
	if mt.ID == "" {
		mt.ID = "reunion-new"
	}
	m.meetings[mt.ID] = *mt
	return nil
}

func (m *mockMeetingRepo) UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error {
	mt := m.meetings[id]
	if v, ok := patch["modalidad"]; ok {
		mt.Modalidad = v.(models.MeetingMode)
	}
	if v, ok := patch["enlace"]; ok {
		s := v.(string)
		mt.Enlace = &s
	}
	m.meetings[id] = mt
	return nil
}

func (m *mockMeetingRepo) Delete(ctx context.Context, id string) (*models.Meeting, error) {
	if mt, ok := m.meetings[id]; ok {
		delete(m.meetings, id)
		return &mt, nil
	}
	return nil, nil
}

func (m *mockMeetingRepo) List(ctx context.Context, req models.PageRequest) ([]models.Meeting, int, error) {
	out := make([]models.Meeting, 0, len(m.meetings))
	for _, mt := range m.meetings {
		out = append(out, mt)
	}
	return out, len(out), nil
}

func meetingDate() time.Time {
	return time.Date(2026, 9, 10, 18, 30, 0, 0, time.UTC)
}

func TestMeetingVirtualRequiresLink(t *testing.T) {
	svc := NewMeetingService(&mockMeetingRepo{}, &fakeNotifier{}, nil, nil)

	_, err := svc.Create(context.Background(), adminClaims(), CreateMeetingRequest{
		Titulo: "Entrega de notas", Descripcion: "Primer trimestre",
		Fecha: meetingDate(), Modalidad: "VIRTUAL",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	blank := "   "
	_, err = svc.Create(context.Background(), adminClaims(), CreateMeetingRequest{
		Titulo: "Entrega de notas", Descripcion: "Primer trimestre",
		Fecha: meetingDate(), Modalidad: "VIRTUAL", Enlace: &blank,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMeetingCreateAnnouncesToAllParents(t *testing.T) {
	repo := &mockMeetingRepo{}
	notifier := &fakeNotifier{}
	svc := NewMeetingService(repo, notifier, nil, nil)

	link := "https://meet.colegio.test/abc"
	meeting, err := svc.Create(context.Background(), adminClaims(), CreateMeetingRequest{
		Titulo: "Entrega de notas", Descripcion: "Primer trimestre",
		Fecha: meetingDate(), Modalidad: "VIRTUAL", Enlace: &link,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MeetingVirtual, meeting.Modalidad)

	require.Len(t, notifier.parents, 1)
	assert.Equal(t, models.NotifGeneral, notifier.parents[0].typ)
	assert.Equal(t, "Nueva reunión", notifier.parents[0].title)
}

func TestMeetingPresencialNeedsNoLink(t *testing.T) {
	svc := NewMeetingService(&mockMeetingRepo{}, &fakeNotifier{}, nil, nil)

	meeting, err := svc.Create(context.Background(), adminClaims(), CreateMeetingRequest{
		Titulo: "Reunión de curso", Descripcion: "Aula 5A",
		Fecha: meetingDate(), Modalidad: "PRESENCIAL",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MeetingPresencial, meeting.Modalidad)
}

func TestMeetingUpdateToVirtualRequiresLink(t *testing.T) {
	repo := &mockMeetingRepo{meetings: map[string]models.Meeting{
		"reunion-1": {ID: "reunion-1", Titulo: "Reunión", Modalidad: models.MeetingPresencial},
	}}
	notifier := &fakeNotifier{}
	svc := NewMeetingService(repo, notifier, nil, nil)

	virtual := "VIRTUAL"
	_, err := svc.Update(context.Background(), "reunion-1", UpdateMeetingRequest{Modalidad: &virtual})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	link := "https://meet.colegio.test/abc"
	meeting, err := svc.Update(context.Background(), "reunion-1", UpdateMeetingRequest{Modalidad: &virtual, Enlace: &link})
	require.NoError(t, err)
	assert.Equal(t, models.MeetingVirtual, meeting.Modalidad)

	// Edits never re-announce.
	assert.Empty(t, notifier.parents)
}
