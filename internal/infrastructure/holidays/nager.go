package holidays

import (
	"context"
	"fmt"
	"strings"

	"github.com/garikaib/rates-scrapper/internal/domain"
	"github.com/garikaib/rates-scrapper/internal/infrastructure/httpx"
)

// APIClient fetches a year's public holidays from a Nager.Date compatible
// calendar API.
type APIClient struct {
	BaseURL string
	Country string
	HTTP    *httpx.Client
}

type nagerHoliday struct {
	Date        string `json:"date"`
	LocalName   string `json:"localName"`
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
}

func (c *APIClient) Holidays(ctx context.Context, year int) ([]domain.Holiday, error) {
	url := fmt.Sprintf("%s/api/v3/publicholidays/%d/%s",
		strings.TrimRight(c.BaseURL, "/"), year, c.Country)
	var raw []nagerHoliday
	if err := c.HTTP.GetJSON(ctx, url, &raw); err != nil {
		return nil, fmt.Errorf("nager: fetch %d: %w", year, err)
	}
	out := make([]domain.Holiday, 0, len(raw))
	for _, h := range raw {
		d, err := domain.ParseDay(h.Date)
		if err != nil {
			continue
		}
		out = append(out, domain.Holiday{Date: d, Name: h.Name, LocalName: h.LocalName})
	}
	return out, nil
}
