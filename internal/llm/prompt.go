package llm

// MaxPromptText is how much of the document text goes into one prompt, in characters.
const MaxPromptText = 12000

const extractPrompt = `Extract from this OCR text from a freight invoice/BOL. Return only valid JSON with these keys (use null if not found):
- pickup_date, delivery_date, invoice_date (YYYY-MM-DD). For pickup_date use the date under PU 1 / PU / Pickup (starting point).
- origin_city, origin_state, origin_zip: from the address under PU 1 / PU / Pickup (the beginning/left/above). Example: WAVERLY, NY, 14892.
- destination_city, destination_state, destination_zip: from the address under SO 2 / SO / Delivery (below the PU block). Example: HIRAM, OH, 44234.
- total_rate, amount_due (base cost for rate-per-mile), line_haul, rate_per_mile (if stated).
- detention, lumper, factoring_fee (numbers), commodity, weight (integer lbs), equipment_type, broker_name, truck_number.
- client_name (customer/client/payer name from the PDF), client_address, client_phone, client_city, client_state, client_zip if present.
Miles are computed from the two places (origin/destination); rate_per_mile = cost / miles.

Text:
`

// BuildPrompt is the fixed instruction followed by the first MaxPromptText characters of text.
func BuildPrompt(text string) string {
	r := []rune(text)
	if len(r) > MaxPromptText {
		r = r[:MaxPromptText]
	}
	return extractPrompt + string(r)
}
