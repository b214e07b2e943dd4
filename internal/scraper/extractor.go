package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/goldyhq/goldy/internal/models"
)

// Selector keys understood in a dealer's ScrapingConfig.
const (
	SelectorSellPrice      = "sellPrice"
	SelectorBuyPrice       = "buyPrice"
	SelectorStockStatus    = "stockStatus"
	SelectorDelivery       = "delivery"
	SelectorPriceContainer = "priceContainer"
)

// defaultSelectors are the fallbacks used when a dealer's config leaves a
// selector unset.
var defaultSelectors = map[string]string{
	SelectorSellPrice:      ".price-sell, .buy-price",
	SelectorBuyPrice:       ".price-buy, .sell-back-price",
	SelectorStockStatus:    ".stock-status, .availability",
	SelectorDelivery:       ".delivery-info, .shipping-info",
	SelectorPriceContainer: ".price-container",
}

var outOfStockPhrases = []string{"out of stock", "unavailable", "sold out"}

// Extractor pulls prices, stock status, and delivery estimates out of
// rendered dealer markup using config-driven selectors and text heuristics.
type Extractor struct {
	pricePattern    *regexp.Regexp
	deliveryPattern *regexp.Regexp
	currencyCleaner *strings.Replacer
}

func NewExtractor() *Extractor {
	return &Extractor{
		pricePattern:    regexp.MustCompile(`\d+\.?\d*`),
		deliveryPattern: regexp.MustCompile(`(?i)(\d+)(?:\s*-\s*\d+)?\s*(?:business\s+)?days?`),
		currencyCleaner: strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "", "\t", "", "\n", ""),
	}
}

// Extract parses markup and pulls a price observation out of it using the
// dealer's selectors, falling back to defaults for any that are unset.
func (e *Extractor) Extract(html string, selectors map[string]string) (*models.ScrapedPrice, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	scraped := &models.ScrapedPrice{
		SellPrice:    e.Price(e.elementText(doc, selectors, SelectorSellPrice)),
		BuyPrice:     e.Price(e.elementText(doc, selectors, SelectorBuyPrice)),
		InStock:      e.InStock(e.elementText(doc, selectors, SelectorStockStatus)),
		DeliveryDays: e.DeliveryDays(e.elementText(doc, selectors, SelectorDelivery)),
	}

	return scraped, nil
}

// Price strips currency symbols, commas, and whitespace, then parses the
// first decimal-number token. No match yields nil, never zero.
func (e *Extractor) Price(text string) *float64 {
	clean := e.currencyCleaner.Replace(text)
	match := e.pricePattern.FindString(clean)
	if match == "" {
		return nil
	}

	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}

	return &value
}

// InStock reports availability from a status element's text. A listing is in
// stock unless the text carries an explicit out-of-stock phrase, so an empty
// or unrecognized status counts as available.
func (e *Extractor) InStock(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range outOfStockPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}

// DeliveryDays parses an estimate like "Ships in 7 business days". The first
// captured integer wins: "3-5 business days" yields 3, not a range.
func (e *Extractor) DeliveryDays(text string) *int {
	match := e.deliveryPattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	days, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}

	return &days
}

// SelectorOrDefault resolves a selector key against a dealer config,
// falling back to the hardcoded default.
func SelectorOrDefault(selectors map[string]string, key string) string {
	if s, ok := selectors[key]; ok && s != "" {
		return s
	}
	return defaultSelectors[key]
}

func (e *Extractor) elementText(doc *goquery.Document, selectors map[string]string, key string) string {
	return strings.TrimSpace(doc.Find(SelectorOrDefault(selectors, key)).First().Text())
}
