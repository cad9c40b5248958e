package provider

import (
	"strconv"

	"stockcsv/internal/pricefile"
)

var (
	barHeader   = []string{"symbol", "timestamp", "open", "high", "low", "close", "volume"}
	quoteHeader = []string{"symbol", "price", "currency", "timestamp"}
)

func (Bar) Header() []string { return barHeader }

func (b Bar) Fields() []string {
	return []string{
		b.Symbol,
		pricefile.FormatTime(b.Timestamp, pricefile.NaiveTimeLayout),
		pricefile.FormatDecimal(b.Open),
		pricefile.FormatDecimal(b.High),
		pricefile.FormatDecimal(b.Low),
		pricefile.FormatDecimal(b.Close),
		strconv.FormatInt(b.Volume, 10),
	}
}

func (Quote) Header() []string { return quoteHeader }

func (q Quote) Fields() []string {
	return []string{
		q.Symbol,
		q.Price,
		q.Currency,
		pricefile.FormatTime(q.MarketTime.UTC(), pricefile.ZonedTimeLayout),
	}
}

var (
	_ pricefile.Row[Bar]   = Bar{}
	_ pricefile.Row[Quote] = Quote{}
)
