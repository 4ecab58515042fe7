package models

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Code    int          `json:"code"`
	Details []FieldError `json:"details,omitempty"`
}

type AirportsResponse struct {
	Address  string          `json:"address"`
	Airports TopAirportCodes `json:"airports"`
}
