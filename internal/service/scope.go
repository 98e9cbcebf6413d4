package service

import (
	"github.com/colegio-app/colegio-api/internal/models"
)

// scopeFor translates the caller's claims into the listing scope for
// per-student documents. Admins are unconstrained. A parent is pinned to
// their own rows and children; a parent with no linked children yields an
// Empty scope so the caller returns a zero page without touching storage.
func scopeFor(claims *models.JWTClaims, publishedOnlyForParents bool) models.RoleScope {
	if claims == nil || claims.IsAdmin() {
		return models.RoleScope{}
	}
	if len(claims.ChildrenIDs) == 0 {
		return models.RoleScope{Empty: true}
	}
	return models.RoleScope{
		ParentID:      claims.UserID,
		StudentIDs:    claims.ChildrenIDs,
		OnlyPublished: publishedOnlyForParents,
	}
}

// canReadStudent reports whether the caller may see documents belonging to
// the student.
func canReadStudent(claims *models.JWTClaims, studentID string) bool {
	if claims == nil {
		return false
	}
	if claims.IsAdmin() {
		return true
	}
	for _, id := range claims.ChildrenIDs {
		if id == studentID {
			return true
		}
	}
	return false
}
