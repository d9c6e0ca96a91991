package tools

import (
	"fmt"
	"strconv"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/tool"
)

// Conversion factors to the base unit of each category (m, g, m²).
var unitTables = map[string]map[string]float64{
	"length": {
		"mm": 0.001, "cm": 0.01, "m": 1, "km": 1000,
		"inch": 0.0254, "ft": 0.3048, "yard": 0.9144, "mile": 1609.34,
	},
	"weight": {
		"mg": 0.001, "g": 1, "kg": 1000, "ton": 1_000_000,
		"oz": 28.3495, "lb": 453.592,
	},
	"area": {
		"cm2": 0.0001, "m2": 1, "km2": 1_000_000,
		"acre": 4046.86, "hectare": 10000,
	},
}

var temperatureSymbols = map[string]string{"C": "°C", "F": "°F", "K": "K"}

// ConversionArgs are the arguments of unit_converter.
type ConversionArgs struct {
	Value    float64 `json:"value" jsonschema_description:"Value to convert"`
	FromUnit string  `json:"from_unit" jsonschema_description:"Source unit, e.g. cm, kg, m2, C"`
	ToUnit   string  `json:"to_unit" jsonschema_description:"Target unit"`
	Category string  `json:"category" jsonschema_description:"One of 'length', 'weight', 'temperature', 'area'"`
}

// NewUnitConverterTool returns unit_converter.
func NewUnitConverterTool() *tool.FunctionTool {
	return tool.NewTypedTool("unit_converter", "Convert a value between units of length, weight, area or temperature.",
		func(_ *core.ToolContext, args ConversionArgs) (any, error) {
			return ConvertUnits(args.Value, args.FromUnit, args.ToUnit, args.Category), nil
		})
}

// ConvertUnits renders the conversion of value, or "Unsupported unit
// conversion" when the category or a unit is unknown.
func ConvertUnits(value float64, from, to, category string) string {
	const unsupported = "Unsupported unit conversion"

	v := strconv.FormatFloat(value, 'f', -1, 64)

	if category == "temperature" {
		result, ok := convertTemperature(value, from, to)
		if !ok {
			return unsupported
		}

		return fmt.Sprintf("Conversion result: %s%s = %.2f%s", v, temperatureSymbols[from], result, temperatureSymbols[to])
	}

	table, ok := unitTables[category]
	if !ok {
		return unsupported
	}

	fromFactor, ok1 := table[from]
	toFactor, ok2 := table[to]

	if !ok1 || !ok2 {
		return unsupported
	}

	return fmt.Sprintf("Conversion result: %s %s = %.4f %s", v, from, value*fromFactor/toFactor, to)
}

func convertTemperature(value float64, from, to string) (float64, bool) {
	switch from + "->" + to {
	case "C->F":
		return value*9/5 + 32, true
	case "F->C":
		return (value - 32) * 5 / 9, true
	case "C->K":
		return value + 273.15, true
	case "K->C":
		return value - 273.15, true
	case "F->K":
		return (value-32)*5/9 + 273.15, true
	case "K->F":
		return (value-273.15)*9/5 + 32, true
	default:
		return 0, false
	}
}
