package amis

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sproutsell/agricredit/pkg/config"
	"github.com/sproutsell/agricredit/pkg/httputil"
	"github.com/sproutsell/agricredit/pkg/logger"
)

// MarketPrice is one commodity price observation from the AMIS Kenya
// market information table.
type MarketPrice struct {
	Commodity string    `json:"commodity"`
	Market    string    `json:"market"`
	Unit      string    `json:"unit"`
	Wholesale float64   `json:"wholesale"`
	Retail    float64   `json:"retail"`
	Date      time.Time `json:"date"`
}

// Client scrapes commodity prices from the AMIS market page.
type Client struct {
	cfg    config.MarketConfig
	http   *httputil.Client
	logger *logger.Logger
}

// NewClient creates a new AMIS client.
func NewClient(cfg config.MarketConfig, http *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   http,
		logger: log,
	}
}

// FetchPrices retrieves and parses the current market price table.
func (c *Client) FetchPrices(ctx context.Context) ([]MarketPrice, error) {
	resp, err := c.http.Get(ctx, c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch market prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("fetch market prices: unexpected status %d", resp.StatusCode)
	}

	prices, err := parsePrices(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.WithField("count", len(prices)).Debug("Fetched market prices")
	return prices, nil
}

// parsePrices extracts price rows from the AMIS HTML table. Rows with an
// unparseable date or no commodity are skipped, not fatal.
func parsePrices(body io.Reader) ([]MarketPrice, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse market page: %w", err)
	}

	var prices []MarketPrice
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td").Map(func(_ int, cell *goquery.Selection) string {
			return strings.TrimSpace(cell.Text())
		})
		if len(cells) < 6 {
			return
		}

		commodity := cells[0]
		if commodity == "" {
			return
		}

		date, err := time.Parse("2006-01-02", cells[5])
		if err != nil {
			return
		}

		prices = append(prices, MarketPrice{
			Commodity: commodity,
			Market:    cells[1],
			Unit:      cells[2],
			Wholesale: parsePrice(cells[3]),
			Retail:    parsePrice(cells[4]),
			Date:      date,
		})
	})

	return prices, nil
}

// parsePrice handles "Ksh 1,200.00" style cells; dashes and blanks are 0.
func parsePrice(s string) float64 {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "Ksh"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return 0
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
