// Package calendar proxies Hebcal so the public site gets candle-lighting
// times, the weekly parashah, and Hebrew dates from one cached endpoint
// instead of every visitor's browser calling Hebcal directly.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"shulsite/api/internal/config"
)

type ShabbatInfo struct {
	Parashah       string `json:"parashah"`
	ParashahHebrew string `json:"parashahHebrew,omitempty"`
	Torah          string `json:"torah,omitempty"`
	Haftarah       string `json:"haftarah,omitempty"`
	CandleLighting string `json:"candleLighting,omitempty"`
	Havdalah       string `json:"havdalah,omitempty"`
}

type HebrewDate struct {
	Hebrew string `json:"hebrew"`
	Year   int    `json:"year"`
	Month  string `json:"month"`
	Day    int    `json:"day"`
}

type Client struct {
	http  *http.Client
	cache *redis.Client
	cfg   config.CalendarConfig
	log   zerolog.Logger
}

// NewClient builds a Hebcal client. cache may be nil, in which case every
// call goes upstream.
func NewClient(cache *redis.Client, cfg config.CalendarConfig, log zerolog.Logger) *Client {
	return &Client{
		http:  &http.Client{Timeout: 10 * time.Second},
		cache: cache,
		cfg:   cfg,
		log:   log,
	}
}

type shabbatResponse struct {
	Items []struct {
		Title    string `json:"title"`
		Hebrew   string `json:"hebrew"`
		Category string `json:"category"`
		Date     string `json:"date"`
		Leyning  struct {
			Torah    string `json:"torah"`
			Haftarah string `json:"haftarah"`
		} `json:"leyning"`
	} `json:"items"`
}

// Shabbat returns this week's candle lighting, havdalah, and parashah
// for the configured coordinates.
func (c *Client) Shabbat(ctx context.Context) (ShabbatInfo, error) {
	const cacheKey = "calendar:shabbat"

	var info ShabbatInfo
	if c.fromCache(ctx, cacheKey, &info) {
		return info, nil
	}

	query := url.Values{}
	query.Set("cfg", "json")
	query.Set("geo", "pos")
	query.Set("latitude", fmt.Sprintf("%f", c.cfg.Latitude))
	query.Set("longitude", fmt.Sprintf("%f", c.cfg.Longitude))
	query.Set("tzid", c.cfg.Timezone)

	var parsed shabbatResponse
	if err := c.fetch(ctx, "/shabbat", query, &parsed); err != nil {
		return ShabbatInfo{}, err
	}

	for _, item := range parsed.Items {
		switch item.Category {
		case "parashat":
			info.Parashah = strings.TrimPrefix(item.Title, "Parashat ")
			info.ParashahHebrew = strings.TrimPrefix(item.Hebrew, "פרשת ")
			info.Torah = item.Leyning.Torah
			info.Haftarah = item.Leyning.Haftarah
		case "candles":
			if info.CandleLighting == "" {
				info.CandleLighting = item.Date
			}
		case "havdalah":
			info.Havdalah = item.Date
		}
	}

	c.toCache(ctx, cacheKey, info)
	return info, nil
}

type converterResponse struct {
	Hebrew string `json:"hebrew"`
	HY     int    `json:"hy"`
	HM     string `json:"hm"`
	HD     int    `json:"hd"`
}

// HebrewDateFor converts a Gregorian date.
func (c *Client) HebrewDateFor(ctx context.Context, date time.Time) (HebrewDate, error) {
	cacheKey := "calendar:hdate:" + date.Format("2006-01-02")

	var hdate HebrewDate
	if c.fromCache(ctx, cacheKey, &hdate) {
		return hdate, nil
	}

	query := url.Values{}
	query.Set("cfg", "json")
	query.Set("g2h", "1")
	query.Set("gy", fmt.Sprintf("%d", date.Year()))
	query.Set("gm", fmt.Sprintf("%d", int(date.Month())))
	query.Set("gd", fmt.Sprintf("%d", date.Day()))

	var parsed converterResponse
	if err := c.fetch(ctx, "/converter", query, &parsed); err != nil {
		return HebrewDate{}, err
	}

	hdate = HebrewDate{
		Hebrew: parsed.Hebrew,
		Year:   parsed.HY,
		Month:  parsed.HM,
		Day:    parsed.HD,
	}

	c.toCache(ctx, cacheKey, hdate)
	return hdate, nil
}

func (c *Client) fetch(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.cfg.BaseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("hebcal request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hebcal status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode hebcal response: %w", err)
	}
	return nil
}

func (c *Client) fromCache(ctx context.Context, key string, out any) bool {
	if c.cache == nil {
		return false
	}
	raw, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (c *Client) toCache(ctx context.Context, key string, value any) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.cfg.CacheTTL).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("calendar cache write failed")
	}
}
