package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"defaults", PageRequest{}, PageRequest{Page: 1, PerPage: 10}},
		{"negative page", PageRequest{Page: -3, PerPage: 25}, PageRequest{Page: 1, PerPage: 25}},
		{"per_page capped", PageRequest{Page: 2, PerPage: 500}, PageRequest{Page: 2, PerPage: 100}},
		{"per_page floor", PageRequest{Page: 2, PerPage: 0}, PageRequest{Page: 2, PerPage: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Normalize())
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 1, PerPage: 10}.Offset())
	assert.Equal(t, 40, PageRequest{Page: 5, PerPage: 10}.Offset())
}

func TestNewPageMeta(t *testing.T) {
	meta := NewPageMeta(41, PageRequest{Page: 2, PerPage: 10})
	assert.Equal(t, 41, meta.Total)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 5, meta.TotalPages)

	empty := NewPageMeta(0, PageRequest{Page: 1, PerPage: 10})
	assert.Equal(t, 0, empty.TotalPages)
}

func TestGradeSchoolYear(t *testing.T) {
	year, forced, ok := GradeKinder.SchoolYear()
	assert.True(t, ok)
	assert.Equal(t, 2, year)
	assert.Equal(t, LevelInicial, forced)

	year, forced, ok = GradePreKinder.SchoolYear()
	assert.True(t, ok)
	assert.Equal(t, 1, year)
	assert.Equal(t, LevelInicial, forced)

	year, forced, ok = GradeQuinto.SchoolYear()
	assert.True(t, ok)
	assert.Equal(t, 5, year)
	assert.Empty(t, forced)

	_, _, ok = Grade("SEPTIMO").SchoolYear()
	assert.False(t, ok)
}

func TestAcademicFilterIsZero(t *testing.T) {
	assert.True(t, AcademicFilter{}.IsZero())
	assert.False(t, AcademicFilter{Turno: ShiftTarde}.IsZero())
}
