package llm

var (
	recordStringKeys = []string{
		"pickup_date", "delivery_date", "invoice_date",
		"origin_city", "origin_state", "origin_zip",
		"destination_city", "destination_state", "destination_zip",
		"commodity", "equipment_type", "broker_name", "truck_number",
		"client_name", "client_address", "client_phone", "client_city", "client_state", "client_zip",
	}
	recordMoneyKeys = []string{
		"total_rate", "amount_due", "line_haul", "rate_per_mile", "miles",
		"detention", "lumper", "factoring_fee",
	}
)

// BuildRecordJSONSchema returns the JSON-Schema (draft 2020-12 subset) an LLM reply must match
// after sanitizing. Every key is nullable; none is required.
func BuildRecordJSONSchema() map[string]any {
	props := map[string]any{}
	for _, k := range recordStringKeys {
		props[k] = map[string]any{"type": []string{"string", "null"}}
	}
	for _, k := range recordMoneyKeys {
		props[k] = map[string]any{"type": []string{"number", "null"}, "minimum": 0}
	}
	props["weight"] = map[string]any{"type": []string{"integer", "null"}, "minimum": 0}
	props["accessorials"] = map[string]any{
		"type":                 []string{"object", "null"},
		"additionalProperties": map[string]any{"type": "number"},
	}
	props["pickup_date"] = nullableDate()
	props["delivery_date"] = nullableDate()
	props["invoice_date"] = nullableDate()

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

func nullableDate() map[string]any {
	return map[string]any{
		"anyOf": []any{
			map[string]any{"type": "null"},
			map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		},
	}
}
