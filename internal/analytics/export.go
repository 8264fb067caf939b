package analytics

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteTopProductsCSV emits the best sellers as CSV.
func WriteTopProductsCSV(w io.Writer, rng Range, products []TopProduct) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Period", periodLabel(rng)}); err != nil {
		return err
	}
	if err := writer.Write([]string{"Rank", "Product ID", "Product", "Quantity Sold", "Revenue"}); err != nil {
		return err
	}
	for i, p := range products {
		if err := writer.Write([]string{
			strconv.Itoa(i + 1),
			p.ProductID,
			p.Name,
			strconv.Itoa(p.Quantity),
			p.Revenue.StringFixed(2),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func periodLabel(rng Range) string {
	switch {
	case rng.From == "" && rng.To == "":
		return "all time"
	case rng.From == "":
		return "until " + rng.To
	case rng.To == "":
		return "from " + rng.From
	default:
		return rng.From + " to " + rng.To
	}
}
