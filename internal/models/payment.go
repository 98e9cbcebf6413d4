package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PaymentState is the payment validation lifecycle.
type PaymentState string

const (
	PaymentPendiente PaymentState = "PENDIENTE"
	PaymentRevision  PaymentState = "REVISION"
	PaymentPagado    PaymentState = "PAGADO"
	PaymentRechazado PaymentState = "RECHAZADO"
)

// PaymentProof is the proof-of-payment sub-record, stored as JSONB.
type PaymentProof struct {
	URLFoto         string     `json:"url_foto"`
	FechaSubida     time.Time  `json:"fecha_subida"`
	FechaResolucion *time.Time `json:"fecha_resolucion,omitempty"`
}

// Value implements driver.Valuer.
func (p *PaymentProof) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *PaymentProof) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported payment proof type %T", src)
	}
}

// Payment (pago) is a parent obligation for one student (e.g. a monthly
// tuition instalment) validated by an admin against an uploaded proof.
type Payment struct {
	ID               string        `db:"id" json:"id"`
	PadreID          string        `db:"padre_id" json:"padre_id"`
	EstudianteID     string        `db:"estudiante_id" json:"estudiante_id"`
	Concepto         string        `db:"concepto" json:"concepto"`
	Monto            float64       `db:"monto" json:"monto"`
	FechaVencimiento time.Time     `db:"fecha_vencimiento" json:"fecha_vencimiento"`
	Estado           PaymentState  `db:"estado" json:"estado"`
	Comprobante      *PaymentProof `db:"comprobante" json:"comprobante,omitempty"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}
