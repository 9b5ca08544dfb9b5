package models

// ODRecord is one directional origin→destination route for an operator.
// The csv tags define the exact column set and order consumed by the
// downstream merge step; empty strings serialize as empty cells and stand in
// for unknown city/country/station values.
type ODRecord struct {
	TransportType      string `csv:"transport_type"`
	OperatorName       string `csv:"operator_name"`
	Duration           string `csv:"duration"`
	FrequencyDaily     int    `csv:"frequency_daily"`
	FrequencyLabel     string `csv:"frequency_label"`
	OriginStation      string `csv:"origin_station"`
	DestinationStation string `csv:"destination_station"`
	OriginCity         string `csv:"origin_city"`
	DestinationCity    string `csv:"destination_city"`
	OriginCountry      string `csv:"origin_country"`
	DestinationCountry string `csv:"destination_country"`
}
