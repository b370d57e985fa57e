package orders

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/angelmondragon/icecream-backend/pkg/types"
)

// ticketLine matches "<flavor> <qty> - - - $<price>" receipt lines.
var ticketLine = regexp.MustCompile(`^(.+?)\s+(\d+)\s+-\s+-\s+-\s+\$(\d+\.\d{2})$`)

// parseTicket recovers order lines from receipt text. Lines that do not match
// or carry a zero quantity are skipped; skipped counts them.
func parseTicket(ticket string) (items []ItemDTO, skipped int) {
	for _, line := range strings.Split(ticket, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		m := ticketLine.FindStringSubmatch(line)
		if m == nil {
			skipped++
			continue
		}
		qty, err := strconv.Atoi(m[2])
		if err != nil || qty <= 0 {
			skipped++
			continue
		}
		price, ok := types.Money(m[3])
		if !ok {
			skipped++
			continue
		}
		items = append(items, ItemDTO{Flavor: strings.TrimSpace(m[1]), Quantity: qty, Price: price})
	}
	return items, skipped
}
