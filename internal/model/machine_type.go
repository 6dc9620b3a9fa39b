package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UnlimitedRotation marks an axis that rotates continuously.
var UnlimitedRotation = decimal.NewFromInt(-1)

// MachineType is a catalogue entry describing a CNC model. Rotation limits
// A, B and C are in degrees: 0 means the axis is absent and -1 means unlimited.
type MachineType struct {
	Base
	MachineTypeID int             `gorm:"not null;index" json:"machineTypeId"`
	Name          string          `gorm:"column:machine_type_name;type:varchar(200);not null" json:"machineTypeName"`
	NameKey       string          `gorm:"type:varchar(200);uniqueIndex;not null" json:"-"`
	Manufacturer  string          `gorm:"type:varchar(200);not null" json:"manufacturer"`
	Description   string          `gorm:"type:varchar(500)" json:"description,omitempty"`
	X             int             `gorm:"not null" json:"x"`
	Y             int             `gorm:"not null" json:"y"`
	Z             int             `gorm:"not null" json:"z"`
	A             decimal.Decimal `gorm:"type:decimal(10,3);not null" json:"a"`
	B             decimal.Decimal `gorm:"type:decimal(10,3);not null" json:"b"`
	C             decimal.Decimal `gorm:"type:decimal(10,3);not null" json:"c"`
	CreatedBy     string          `gorm:"type:varchar(36)" json:"createdBy"`
	UpdatedBy     string          `gorm:"type:varchar(36)" json:"updatedBy"`
}

// NameKey is the case-folded form used for uniqueness of machine type names.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
