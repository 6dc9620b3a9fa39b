package model

// Client is a company owning machines. PostalCode is stored normalized
// (no separator, uppercase). MachineCount mirrors the number of machines
// referencing the client and is recomputed whenever that set changes.
type Client struct {
	Base
	CompanyName  string `gorm:"type:varchar(200);not null;index" json:"companyName"`
	Address      string `gorm:"type:varchar(300);not null" json:"address"`
	Province     string `gorm:"type:varchar(2);not null" json:"province"`
	PostalCode   string `gorm:"type:varchar(6);not null" json:"postalCode"`
	MachineCount int    `gorm:"not null;default:0" json:"machineCount"`
}
