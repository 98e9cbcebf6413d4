package service

import (
	"context"
	"errors"

	"github.com/colegio-app/colegio-api/internal/models"
	"github.com/colegio-app/colegio-api/pkg/config"
)

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin, Email: "admin@colegio.test"}
}

func parentClaims(children ...string) *models.JWTClaims {
	return &models.JWTClaims{UserID: "padre-1", Role: models.RoleParent, Email: "padre@colegio.test", ChildrenIDs: children}
}

func testUploadsConfig() config.UploadsConfig {
	return config.UploadsConfig{
		MaxFileSizeBytes: 1 << 20,
		AllowedMIMEs:     []string{"application/pdf", "image/jpeg", "image/png"},
	}
}

type fakeUploader struct {
	uploaded []string
	deleted  []string
	fail     bool
}

func (f *fakeUploader) Upload(data []byte, folder, filename string) (string, error) {
	if f.fail {
		return "", errors.New("storage unavailable")
	}
	url := "/uploads/" + folder + "/" + filename
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeUploader) Delete(url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

type notifyCall struct {
	recipients []string
	typ        models.NotificationType
	title      string
}

// fakeNotifier records fan-outs instead of writing inbox rows.
type fakeNotifier struct {
	direct  []notifyCall
	admins  []notifyCall
	parents []notifyCall
	fail    bool
}

func (f *fakeNotifier) NotifyMany(ctx context.Context, recipientIDs []string, typ models.NotificationType, title, message string, relatedID *string) error {
	if f.fail {
		return errors.New("notification store down")
	}
	f.direct = append(f.direct, notifyCall{recipients: recipientIDs, typ: typ, title: title})
	return nil
}

func (f *fakeNotifier) NotifyAdmins(ctx context.Context, typ models.NotificationType, title, message string, relatedID *string) error {
	if f.fail {
		return errors.New("notification store down")
	}
	f.admins = append(f.admins, notifyCall{typ: typ, title: title})
	return nil
}

func (f *fakeNotifier) NotifyAllParents(ctx context.Context, typ models.NotificationType, title, message string, relatedID *string) error {
	if f.fail {
		return errors.New("notification store down")
	}
	f.parents = append(f.parents, notifyCall{typ: typ, title: title})
	return nil
}

type fakeDirectory struct {
	byRole    map[models.UserRole][]models.User
	parentsOf map[string][]models.User
}

func (f *fakeDirectory) FindActiveByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	return f.byRole[role], nil
}

func (f *fakeDirectory) FindParentsOfStudent(ctx context.Context, studentID string) ([]models.User, error) {
	return f.parentsOf[studentID], nil
}

type mockStudentLookup struct {
	students map[string]models.Student
}

func (m *mockStudentLookup) Get(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, nil
}

type mockSectionLookup struct {
	sections map[string]models.CourseSection
}

func (m *mockSectionLookup) Get(ctx context.Context, id string) (*models.CourseSection, error) {
	if s, ok := m.sections[id]; ok {
		return &s, nil
	}
	return nil, nil
}
