package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightchart/internal/models"
)

func TestFormatAddress(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"London", "London"},
		{"10 Downing St., London", "10+Downing+St+London"},
		{"  Paris,\tFrance  ", "Paris+France"},
		{"Rue de l'Église", "Rue+de+l+glise"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, formatAddress(c.in), "formatAddress(%q)", c.in)
	}
}

func newTestGeocoder(t *testing.T, reply string, status int) (*GoogleGeocoder, *string) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, geocodePath, r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	return NewGoogleGeocoder(GoogleConfig{
		BaseURL:    srv.URL,
		APIKey:     "k&ey",
		HTTPClient: srv.Client(),
		Retry:      fastRetry(),
	}), &gotQuery
}

func TestGeocode(t *testing.T) {
	g, query := newTestGeocoder(t, `{"status":"OK","results":[
		{"formatted_address":"London, UK","geometry":{"location":{"lat":51.5072,"lng":-0.1276}}},
		{"formatted_address":"London, ON","geometry":{"location":{"lat":42.98,"lng":-81.24}}}
	]}`, http.StatusOK)

	loc, err := g.Geocode(context.Background(), "London, UK")
	require.NoError(t, err)
	assert.Equal(t, models.LatLng{Lat: 51.5072, Lng: -0.1276}, loc)
	assert.Equal(t, "address=London+UK&key=k%26ey", *query)
}

func TestGeocode_Failures(t *testing.T) {
	cases := []struct {
		name   string
		reply  string
		status int
		want   error
	}{
		{name: "zero results", reply: `{"status":"ZERO_RESULTS","results":[]}`, status: http.StatusOK, want: ErrNoResults},
		{name: "no location", reply: `{"status":"OK","results":[{"geometry":{}}]}`, status: http.StatusOK, want: ErrMalformedResponse},
		{name: "denied", reply: `{"status":"REQUEST_DENIED","error_message":"bad key"}`, status: http.StatusOK},
		{name: "forbidden", reply: `nope`, status: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, _ := newTestGeocoder(t, tc.reply, tc.status)

			_, err := g.Geocode(context.Background(), "Nowhere")
			require.Error(t, err)

			var pe *ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, GoogleName, pe.Provider)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}
