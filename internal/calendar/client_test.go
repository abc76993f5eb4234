package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shulsite/api/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(nil, config.CalendarConfig{
		BaseURL:   srv.URL,
		Latitude:  33.7175,
		Longitude: -117.8311,
		Timezone:  "America/Los_Angeles",
		CacheTTL:  time.Hour,
	}, zerolog.Nop())
}

func TestShabbat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/shabbat", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "json", query.Get("cfg"))
		assert.Equal(t, "pos", query.Get("geo"))
		assert.Equal(t, "America/Los_Angeles", query.Get("tzid"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{"title": "Candle lighting: 7:04pm", "category": "candles", "date": "2026-08-28T19:04:00-07:00"},
				{"title": "Parashat Ki Teitzei", "hebrew": "פרשת כי־תצא", "category": "parashat",
				 "leyning": {"torah": "Deuteronomy 21:10-25:19", "haftarah": "Isaiah 54:1-10"}},
				{"title": "Havdalah: 8:01pm", "category": "havdalah", "date": "2026-08-29T20:01:00-07:00"}
			]
		}`))
	})

	info, err := client.Shabbat(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Ki Teitzei", info.Parashah)
	assert.Equal(t, "כי־תצא", info.ParashahHebrew)
	assert.Equal(t, "Deuteronomy 21:10-25:19", info.Torah)
	assert.Equal(t, "Isaiah 54:1-10", info.Haftarah)
	assert.Equal(t, "2026-08-28T19:04:00-07:00", info.CandleLighting)
	assert.Equal(t, "2026-08-29T20:01:00-07:00", info.Havdalah)
}

func TestHebrewDateFor(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/converter", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "1", query.Get("g2h"))
		assert.Equal(t, "2026", query.Get("gy"))
		assert.Equal(t, "8", query.Get("gm"))
		assert.Equal(t, "28", query.Get("gd"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hebrew": "ט״ו אלול תשפ״ו", "hy": 5786, "hm": "Elul", "hd": 15}`))
	})

	date := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	hdate, err := client.HebrewDateFor(context.Background(), date)
	require.NoError(t, err)

	assert.Equal(t, "ט״ו אלול תשפ״ו", hdate.Hebrew)
	assert.Equal(t, 5786, hdate.Year)
	assert.Equal(t, "Elul", hdate.Month)
	assert.Equal(t, 15, hdate.Day)
}

func TestUpstreamErrorPropagates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := client.Shabbat(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
