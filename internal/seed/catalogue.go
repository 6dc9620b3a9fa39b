package seed

import (
	"github.com/shopspring/decimal"

	"huronportal/internal/model"
	"huronportal/internal/service"
)

type catalogueEntry struct {
	code         int
	name         string
	manufacturer string
	x, y, z      int
	a, b, c      int64
}

var catalogue = []catalogueEntry{
	{180, "EX", "Huron", 0, 0, 0, 0, 0, 0},
	{200, "KX10", "Huron", 0, 0, 0, 0, 0, 0},
	{210, "K2X10", "Huron", 1000, 800, 500, 0, 0, 0},
	{215, "K2X10F", "Huron", 0, 0, 0, 0, 0, 0},
	{220, "UMill 630", "Huron", 0, 0, 0, 0, 0, 0},
	{225, "K2X15", "Huron", 0, 0, 0, 0, 0, 0},
	{230, "KX20", "Huron", 0, 0, 0, 0, 0, 0},
	{240, "K2X20", "Huron", 1200, 1000, 500, 0, 0, 0},
	{245, "K2X20F", "Huron", 0, 0, 0, 0, 0, 0},
	{250, "KX30", "Huron", 1800, 1000, 700, 0, 0, 0},
	{260, "KX8", "Huron", 0, 0, 0, 0, 0, 0},
	{260, "K2X8", "Huron", 0, 0, 0, 0, 0, 0},
	{270, "K3X8F", "Huron", 0, 0, 0, 0, 0, 0},
	{280, "KX100", "Huron", 2300, 2300, 1000, 0, 220, 0},
	{282, "KX200", "Huron", 3300, 2300, 1000, 0, 220, 0},
	{285, "KX300", "Huron", 5000, 3100, 1500, 0, 220, 0},
	{290, "KX50", "Huron", 2000, 1700, 900, 0, 220, 0},
	{290, "KX50L", "Huron", 3000, 1700, 900, 0, 220, 0},
	{290, "KX50LL", "Huron", 3500, 1700, 900, 0, 220, 0},
	{370, "MX4", "Huron", 750, 700, 500, 0, 0, 0},
	{390, "MX8", "Huron", 1160, 1000, 900, 0, 0, 0},
	{390, "MX10", "Huron", 1200, 1200, 1000, 0, 0, 0},
	{390, "MX12", "Huron", 1200, 1600, 1000, 0, 0, 0},
	{395, "MX20", "Huron", 3000, 3100, 1600, 0, 0, 0},
	{400, "KX5", "Huron", 0, 0, 0, 0, 0, 0},
	{410, "CX10", "Huron", 0, 0, 0, 0, 0, 0},
	{420, "CX12", "Huron", 0, 0, 0, 0, 0, 0},
	{430, "CX30", "Huron", 0, 0, 0, 0, 0, 0},
	{440, "Kmill10", "Leaderway - Leadwell", 0, 0, 0, 0, 0, 0},
	{450, "CX5", "Huron", 0, 0, 0, 0, 0, 0},
	{455, "CX7", "Huron", 0, 0, 0, 0, 0, 0},
	{460, "K2X8", "Leaderway - Jyoti", 0, 0, 0, 0, 0, 0},
	{470, "KX40", "LGB", 0, 0, 0, 0, 0, 0},
	{475, "KX45SP", "LGB", 0, 0, 0, 0, 0, 0},
	{480, "EX", "Jyoti", 0, 0, 0, 0, 0, 0},
	{480, "KXG45-14", "Huron", 1400, 4500, 800, 0, 220, 0},
	{480, "KXG45-23", "Huron", 2300, 4500, 800, 0, 220, 0},
	{480, "KXG60-23", "Huron", 6000, 2300, 800, 0, 220, 0},
	{600, "KXG90-23", "Huron", 9000, 2300, 800, 0, 220, 0},
	{701, "VX4", "Jyoti", 0, 0, 0, 0, 0, 0},
	{710, "VX6", "Jyoti", 600, 400, 460, 0, 0, 0},
	{720, "VX8", "Jyoti", 820, 510, 510, 0, 0, 0},
	{730, "VX10", "Jyoti", 1020, 510, 510, 0, 0, 0},
	{740, "VX12", "Jyoti", 1220, 600, 610, 0, 0, 0},
	{750, "K2X10", "Jyoti", 0, 0, 0, 0, 0, 0},
	{755, "VX15", "Jyoti", 1510, 810, 810, 0, 0, 0},
	{760, "VX18", "Jyoti", 1810, 810, 810, 0, 0, 0},
	{770, "K3X8F", "Jyoti", 0, 0, 0, 0, 0, 0},
	{775, "MU TECH", "Jyoti", 0, 0, 0, 0, 0, 0},
	{775, "NX30", "Jyoti", 0, 0, 0, 0, 0, 0},
	{775, "NX40", "Jyoti", 0, 0, 0, 0, 0, 0},
	{775, "NX50", "Jyoti", 0, 0, 0, 0, 0, 0},
	{790, "NX60", "Jyoti", 0, 0, 0, 0, 0, 0},
	{900, "SX4", "Jyoti", 0, 0, 0, 0, 0, 0},
	{900, "SX6", "Jyoti", 0, 0, 0, 0, 0, 0},
	{900, "SXG", "Jyoti", 0, 0, 0, 0, 0, 0},
	{901, "HMC450", "Jyoti", 0, 0, 0, 0, 0, 0},
	{901, "HMC560", "Jyoti", 0, 0, 0, 0, 0, 0},
	{903, "AM430", "Jyoti", 0, 0, 0, 0, 0, 0},
	{904, "ATM160", "Jyoti", 0, 0, 0, 0, 0, 0},
	{910, "TMC250", "Jyoti", 0, 0, 0, 0, 0, 0},
	{910, "TMC350", "Jyoti", 0, 0, 0, 0, 0, 0},
	{910, "DX160", "Jyoti", 0, 0, 0, 0, 0, 0},
	{910, "DX200", "Jyoti", 0, 0, 0, 0, 0, 0},
	{910, "DX250", "Jyoti", 0, 0, 0, 0, 0, 0},
	{910, "I-SECT", "Jyoti", 0, 0, 0, 0, 0, 0},
}

// Catalogue returns the factory machine type list. Names repeated across
// manufacturers appear once per manufacturer; the first one wins when loaded
// into a store with unique names.
func Catalogue() []model.MachineType {
	out := make([]model.MachineType, 0, len(catalogue))
	for _, e := range catalogue {
		out = append(out, model.MachineType{
			MachineTypeID: e.code,
			Name:          e.name,
			Manufacturer:  e.manufacturer,
			X:             e.x,
			Y:             e.y,
			Z:             e.z,
			A:             decimal.NewFromInt(e.a),
			B:             decimal.NewFromInt(e.b),
			C:             decimal.NewFromInt(e.c),
		})
	}
	return out
}

var demoClients = []service.CreateClientRequest{
	{CompanyName: "Bombardier Aéronautique", Address: "400 Chemin de la Côte-Vertu, Dorval", Province: "QC", PostalCode: "H4S 1Y9"},
	{CompanyName: "CAE Inc.", Address: "8585 Chemin de la Côte-de-Liesse, Saint-Laurent", Province: "QC", PostalCode: "H4T 1G6"},
	{CompanyName: "Pratt & Whitney Canada", Address: "1000 Boulevard Marie-Victorin, Longueuil", Province: "QC", PostalCode: "J4G 1A1"},
	{CompanyName: "Héroux-Devtek Inc.", Address: "1111 Rue St-Charles Ouest, Longueuil", Province: "QC", PostalCode: "J4K 5G4"},
	{CompanyName: "Linamar Corporation", Address: "287 Speedvale Avenue West, Guelph", Province: "ON", PostalCode: "N1H 1C5"},
}

var demoMachineKinds = []string{
	"CNC Lathe",
	"CNC Mill",
	"Vertical Machining Center",
	"Horizontal Machining Center",
	"5-Axis Mill",
	"Wire EDM",
	"Sinker EDM",
	"Grinding Machine",
	"Turning Center",
	"Multi-Tasking Machine",
}
