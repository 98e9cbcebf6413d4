package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colegio-app/colegio-api/internal/models"
)

func TestScopeForAdmin(t *testing.T) {
	scope := scopeFor(adminClaims(), true)
	assert.Equal(t, models.RoleScope{}, scope)
}

func TestScopeForParentWithoutChildren(t *testing.T) {
	scope := scopeFor(parentClaims(), true)
	assert.True(t, scope.Empty)
}

func TestScopeForParent(t *testing.T) {
	scope := scopeFor(parentClaims("est-1", "est-2"), true)
	assert.Equal(t, "padre-1", scope.ParentID)
	assert.Equal(t, []string{"est-1", "est-2"}, scope.StudentIDs)
	assert.True(t, scope.OnlyPublished)
	assert.False(t, scope.Empty)

	unscoped := scopeFor(parentClaims("est-1"), false)
	assert.False(t, unscoped.OnlyPublished)
}

func TestCanReadStudent(t *testing.T) {
	assert.True(t, canReadStudent(adminClaims(), "est-9"))
	assert.True(t, canReadStudent(parentClaims("est-1"), "est-1"))
	assert.False(t, canReadStudent(parentClaims("est-1"), "est-2"))
	assert.False(t, canReadStudent(nil, "est-1"))
}
