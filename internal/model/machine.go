package model

// Machine is one physical CNC unit. Type is free text; MachineTypeID optionally
// links the unit to a catalogue entry. ClientName is a copy of the owning
// client's company name.
type Machine struct {
	Base
	NumeroOL      string  `gorm:"column:numero_ol;type:varchar(50);uniqueIndex;not null" json:"numeroOL"`
	Type          string  `gorm:"type:varchar(200);not null" json:"type"`
	ClientID      string  `gorm:"type:varchar(36);not null;index" json:"clientId"`
	ClientName    string  `gorm:"type:varchar(200);not null" json:"clientName"`
	MachineTypeID *string `gorm:"type:varchar(36);index" json:"machineTypeId,omitempty"`
	CreatedBy     string  `gorm:"type:varchar(50)" json:"createdBy,omitempty"`
}
