// Package settlementfeed parses the line-oriented settlement files supplied
// by the external biller: `REFERENCE_NUMBER|AMOUNT|DATE[|STATUS]`, optionally
// preceded by a header line containing the substring "REFERENCE".
package settlementfeed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/coopbank/cashdesk_app/internal/apperrors"
	"github.com/coopbank/cashdesk_app/internal/core/domain"
	portsrepo "github.com/coopbank/cashdesk_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

const (
	fieldDelimiter = "|"
	headerMarker   = "REFERENCE"
	minFields      = 3
)

// Reader implements the SettlementFeedReader port for the pipe-delimited
// format. Malformed lines are skipped and counted, never fatal: the batch
// must always complete with whatever could be parsed.
type Reader struct{}

// NewReader creates a settlement feed reader.
func NewReader() portsrepo.SettlementFeedReader {
	return &Reader{}
}

// ReadEntries parses the feed, returning the parsed entries and the number
// of lines skipped. Only a stream that cannot be read at all is an error.
func (r *Reader) ReadEntries(ctx context.Context, feed io.Reader) ([]domain.ExternalSettlementEntry, int, error) {
	scanner := bufio.NewScanner(feed)
	var entries []domain.ExternalSettlementEntry
	skipped := 0
	lineNo := 0

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if lineNo == 1 && strings.Contains(strings.ToUpper(line), headerMarker) {
			continue
		}

		fields := strings.Split(line, fieldDelimiter)
		if len(fields) < minFields {
			skipped++
			continue
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(fields[1]))
		if err != nil {
			skipped++
			continue
		}

		entry := domain.ExternalSettlementEntry{
			ReferenceNumber: strings.TrimSpace(fields[0]),
			Amount:          amount,
			Date:            strings.TrimSpace(fields[2]),
		}
		if len(fields) > 3 {
			entry.Status = strings.TrimSpace(fields[3])
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: failed to read settlement feed: %v", apperrors.ErrParse, err)
	}
	return entries, skipped, nil
}
