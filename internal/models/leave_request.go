package models

import "time"

// LeaveType classifies an absence request.
type LeaveType string

const (
	LeavePersonal LeaveType = "PERSONAL"
	LeaveMedica   LeaveType = "MEDICA"
	LeaveFamiliar LeaveType = "FAMILIAR"
)

// LeaveState is the request lifecycle. PENDIENTE is the only state from
// which the requesting parent may still edit.
type LeaveState string

const (
	LeavePendiente LeaveState = "PENDIENTE"
	LeaveAprobada  LeaveState = "APROBADA"
	LeaveRechazada LeaveState = "RECHAZADA"
)

// LeaveRequest (licencia) is a parent-submitted absence request for one
// student. Medical and family leaves must carry both a reason and an
// attachment at creation time.
type LeaveRequest struct {
	ID             string     `db:"id" json:"id"`
	PadreID        string     `db:"padre_id" json:"padre_id"`
	EstudianteID   string     `db:"estudiante_id" json:"estudiante_id"`
	FechaInicio    time.Time  `db:"fecha_inicio" json:"fecha_inicio"`
	FechaFin       time.Time  `db:"fecha_fin" json:"fecha_fin"`
	Tipo           LeaveType  `db:"tipo" json:"tipo"`
	Motivo         *string    `db:"motivo" json:"motivo,omitempty"`
	Adjunto        *string    `db:"adjunto" json:"adjunto,omitempty"`
	Estado         LeaveState `db:"estado" json:"estado"`
	RespuestaAdmin *string    `db:"respuesta_admin" json:"respuesta_admin,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
