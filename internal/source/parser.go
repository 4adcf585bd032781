// Package source discovers and parses expense ledger files (JSONL and CSV).
package source

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ledgerNamespace seeds deterministic IDs for entries that carry none.
var ledgerNamespace = uuid.MustParse("5b7c1d0e-3f1a-4c55-9a2e-6d1f0f7b9a01")

// Layouts tried for timestamps without an explicit zone, in order.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

var (
	errMissingAmount    = errors.New("missing amount")
	errNegativeAmount   = errors.New("negative amount")
	errMissingTimestamp = errors.New("missing timestamp")
)

// ParseResult holds the output of parsing a single ledger file.
type ParseResult struct {
	Expenses    []model.Expense
	ParseErrors int
	Err         error
}

// ParseFile reads a ledger file and returns its expenses in file order.
// Entries sharing an ID are deduplicated, keeping the last one (a later line
// corrects an earlier one). Zone-less timestamps are read in loc, and missing
// impulsive/night flags are derived from the local time of purchase.
func ParseFile(df DiscoveredFile, loc *time.Location) ParseResult {
	if loc == nil {
		loc = time.Local
	}

	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	var result ParseResult
	switch df.Format {
	case FormatCSV:
		result = parseCSV(f, df, loc)
	default:
		result = parseJSONL(f, df, loc)
	}
	if result.Err != nil {
		return result
	}

	result.Expenses = dedupe(result.Expenses)
	return result
}

func parseJSONL(r io.Reader, df DiscoveredFile, loc *time.Location) ParseResult {
	var (
		expenses    []model.Expense
		parseErrors int
		lineNo      int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var raw RawExpense
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			parseErrors++
			continue
		}

		e, err := toExpense(raw, df, lineNo, loc)
		if err != nil {
			parseErrors++
			continue
		}
		expenses = append(expenses, e)
	}

	if err := scanner.Err(); err != nil {
		return ParseResult{Err: err}
	}

	return ParseResult{Expenses: expenses, ParseErrors: parseErrors}
}

func parseCSV(r io.Reader, df DiscoveredFile, loc *time.Location) ParseResult {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ParseResult{}
		}
		return ParseResult{Err: fmt.Errorf("reading csv header: %w", err)}
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, required := range csvColumns[:2] {
		if _, ok := cols[required]; !ok {
			return ParseResult{Err: fmt.Errorf("csv header missing %q column", required)}
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var (
		expenses    []model.Expense
		parseErrors int
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			parseErrors++
			continue
		}
		lineNo, _ := reader.FieldPos(0)

		raw := RawExpense{
			ID:        field(record, "id"),
			Category:  field(record, "category"),
			Title:     field(record, "title"),
			Timestamp: field(record, "date"),
			Merchant:  field(record, "merchant"),
			Notes:     field(record, "notes"),
		}
		if s := field(record, "amount"); s != "" {
			amount, err := parseAmount(s)
			if err != nil {
				parseErrors++
				continue
			}
			raw.Amount = &amount
		}
		raw.IsImpulsive = parseFlag(field(record, "impulsive"))
		raw.IsNightPurchase = parseFlag(field(record, "night"))

		e, err := toExpense(raw, df, lineNo, loc)
		if err != nil {
			parseErrors++
			continue
		}
		expenses = append(expenses, e)
	}

	return ParseResult{Expenses: expenses, ParseErrors: parseErrors}
}

// toExpense validates a raw entry and fills in derived fields.
func toExpense(raw RawExpense, df DiscoveredFile, lineNo int, loc *time.Location) (model.Expense, error) {
	if raw.Amount == nil {
		return model.Expense{}, errMissingAmount
	}
	if raw.Amount.IsNegative() {
		return model.Expense{}, errNegativeAmount
	}

	stamp := raw.Timestamp
	if stamp == "" {
		stamp = raw.Date
	}
	ts, err := ParseTimestamp(stamp, loc)
	if err != nil {
		return model.Expense{}, err
	}

	category, _ := model.ParseCategory(raw.Category)

	id := raw.ID
	if id == "" {
		id = uuid.NewSHA1(ledgerNamespace, []byte(fmt.Sprintf("%s:%d", df.Path, lineNo))).String()
	}

	title := raw.Title
	if title == "" {
		title = raw.Merchant
	}
	if title == "" {
		title = category.Label()
	}

	e := model.Expense{
		ID:         id,
		Amount:     *raw.Amount,
		Category:   category,
		Title:      title,
		Timestamp:  ts,
		Merchant:   raw.Merchant,
		Notes:      raw.Notes,
		SourceFile: df.Path,
	}

	if raw.IsNightPurchase != nil {
		e.IsNightPurchase = *raw.IsNightPurchase
	} else {
		e.IsNightPurchase = analysis.IsNightPurchase(ts)
	}
	if raw.IsImpulsive != nil {
		e.IsImpulsive = *raw.IsImpulsive
	} else {
		e.IsImpulsive = analysis.IsCompulsive(e.Amount, category, ts)
	}

	return e, nil
}

// ParseTimestamp accepts RFC 3339 or a zone-less date/time read in loc.
// The result is always expressed in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errMissingTimestamp
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.In(loc), nil
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// parseAmount reads a CSV amount written with either decimal mark. When both
// '.' and ',' appear, the last one is the decimal mark and the other groups
// thousands. A lone separator that repeats ("1.234.567") groups thousands;
// otherwise it is the decimal mark, so "1,234" reads as 1.234.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer(" ", "", "'", "", "\u00a0", "").Replace(strings.TrimSpace(s))

	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	return decimal.NewFromString(s)
}

// parseFlag reads a CSV boolean column. Empty means "not recorded".
func parseFlag(s string) *bool {
	var v bool
	switch strings.ToLower(s) {
	case "":
		return nil
	case "yes", "y", "si", "sì":
		v = true
	case "no", "n":
		v = false
	default:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil
		}
		v = b
	}
	return &v
}

// dedupe keeps the last entry per ID at the position of its first occurrence.
func dedupe(expenses []model.Expense) []model.Expense {
	index := make(map[string]int, len(expenses))
	out := expenses[:0]
	for _, e := range expenses {
		if i, ok := index[e.ID]; ok {
			out[i] = e
			continue
		}
		index[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}
