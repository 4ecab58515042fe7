package providers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dharmasatrya/flightchart/internal/logger"
	"github.com/dharmasatrya/flightchart/internal/models"
)

var airportCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// AirportCache memoizes resolved addresses.
type AirportCache interface {
	GetAirports(ctx context.Context, address string) (models.TopAirportCodes, bool)
	SetAirports(ctx context.Context, address string, codes models.TopAirportCodes) error
}

// AirportResolver maps a free-form address to the codes of its nearest airports.
type AirportResolver struct {
	geocoder Geocoder
	locator  AirportLocator
	cache    AirportCache
}

func NewAirportResolver(geocoder Geocoder, locator AirportLocator, cache AirportCache) *AirportResolver {
	return &AirportResolver{
		geocoder: geocoder,
		locator:  locator,
		cache:    cache,
	}
}

// Resolve geocodes address and returns up to three codes, most relevant first, with
// airports that belong to a metropolitan area replaced by its city code.
func (r *AirportResolver) Resolve(ctx context.Context, address string) (models.TopAirportCodes, error) {
	if strings.TrimSpace(address) == "" {
		return nil, models.ErrMissingAddress
	}

	if codes, ok := r.cache.GetAirports(ctx, address); ok {
		logger.L().Debug().Str("address", address).Strs("airports", codes).Msg("airports_cache_hit")
		return codes, nil
	}

	at, err := r.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	nearest, err := r.locator.NearestAirports(ctx, at)
	if err != nil {
		return nil, err
	}
	if len(nearest) == 0 || !airportCodePattern.MatchString(nearest[0]) {
		return nil, NewProviderError(AmadeusName, fmt.Errorf("%w: invalid airport code %q", ErrMalformedResponse, first(nearest)))
	}

	codes := make(models.TopAirportCodes, len(nearest))
	for i, code := range nearest {
		codes[i] = CityCode(code)
	}

	if err := r.cache.SetAirports(ctx, address, codes); err != nil {
		logger.L().Warn().Err(err).Str("address", address).Msg("airports_cache_set_failed")
	}
	logger.L().Info().Str("address", address).Strs("airports", codes).Msg("airports_resolved")
	return codes, nil
}

func first(codes []string) string {
	if len(codes) == 0 {
		return ""
	}
	return codes[0]
}

var cityCodes = map[string]string{
	"PEK": "BJS", "PKX": "BJS", "NAY": "BJS", // Beijing
	"ORD": "CHI", "MDW": "CHI", "RFD": "CHI", // Chicago
	"IXC": "DEL", "LKO": "DEL", // Delhi
	"DWC": "DXB", "SHJ": "DXB", // Dubai
	"HHN": "FRA", "FKB": "FRA", // Frankfurt
	"SAW": "IST", "ESB": "IST", // Istanbul
	"CGK": "JKT", "HLP": "JKT", "BDO": "JKT", // Jakarta
	"LHR": "LON", "LGW": "LON", "STN": "LON", "LCY": "LON", // London
	"BUR": "LAX", "SNA": "LAX", // Los Angeles
	"SVO": "MOW", "DME": "MOW", "VKO": "MOW", // Moscow
	"PNQ": "BOM", "GOI": "BOM", // Mumbai
	"JFK": "NYC", "LGA": "NYC", "EWR": "NYC", // New York
	"CDG": "PAR", "ORY": "PAR", "BVA": "PAR", // Paris
	"PVG": "SHA", "HSN": "SHA", // Shanghai
	"BNE": "SYD", "MEL": "SYD", // Sydney
	"HND": "TYO", "NRT": "TYO", "NGO": "TYO", // Tokyo
}

// CityCode returns the metropolitan code for an airport, or the airport code itself.
func CityCode(airport string) string {
	if city, ok := cityCodes[airport]; ok {
		return city
	}
	return airport
}
