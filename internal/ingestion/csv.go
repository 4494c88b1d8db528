package ingestion

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"lotto-lab/internal/domain"
)

// ErrNoHeader is returned when no row names the round and number columns.
var ErrNoHeader = errors.New("csv: header row not found")

// Column roles. Each role accepts the published Korean header and an English alias.
const (
	colRound = iota
	colDate
	colNum1 // colNum1..colNum1+5 are the winning numbers
	colBonus       = colNum1 + domain.PickCount
	colTierWinners = colBonus + 1 // five columns
	colTierAmount  = colTierWinners + 5
)

var columnAliases = func() map[string]int {
	m := map[string]int{
		"회차": colRound, "round": colRound,
		"일자": colDate, "date": colDate,
		"당첨번호#7": colBonus, "bonus": colBonus,
	}
	for i := 0; i < domain.PickCount; i++ {
		m[fmt.Sprintf("당첨번호#%d", i+1)] = colNum1 + i
		m[fmt.Sprintf("n%d", i+1)] = colNum1 + i
	}
	for i := 0; i < 5; i++ {
		m[fmt.Sprintf("%d등 당첨자수", i+1)] = colTierWinners + i
		m[fmt.Sprintf("tier%d_winners", i+1)] = colTierWinners + i
		m[fmt.Sprintf("%d등 당첨액", i+1)] = colTierAmount + i
		m[fmt.Sprintf("tier%d_amount", i+1)] = colTierAmount + i
	}
	return m
}()

var dateLayouts = []string{"2006.01.02", "2006-01-02", "2006/01/02", "20060102"}

// ReadCSV parses a draw history export. Rows before the header are skipped,
// rows with an empty or non-numeric round are dropped, and any other malformed
// row is an error naming its line. Tier amount columns hold the total paid to
// the tier; Payout is that total divided by the winner count.
func ReadCSV(r io.Reader) ([]domain.DrawRecord, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		index  map[int]int
		draws  []domain.DrawRecord
		lineNo int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNo++
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", lineNo, err)
		}

		if index == nil {
			index = headerIndex(rec)
			continue
		}

		d, ok, err := parseRow(rec, index)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", lineNo, err)
		}
		if ok {
			draws = append(draws, d)
		}
	}
	if index == nil {
		return nil, ErrNoHeader
	}

	SortDraws(draws)
	return draws, nil
}

// headerIndex maps roles to field positions, or returns nil if rec is not a
// header carrying the round and all number columns.
func headerIndex(rec []string) map[int]int {
	index := make(map[int]int)
	for pos, name := range rec {
		if role, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
			index[role] = pos
		}
	}
	for _, role := range []int{colRound, colBonus} {
		if _, ok := index[role]; !ok {
			return nil
		}
	}
	for i := 0; i < domain.PickCount; i++ {
		if _, ok := index[colNum1+i]; !ok {
			return nil
		}
	}
	return index
}

func parseRow(rec []string, index map[int]int) (domain.DrawRecord, bool, error) {
	field := func(role int) string {
		pos, ok := index[role]
		if !ok || pos >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[pos])
	}

	round, err := strconv.Atoi(field(colRound))
	if err != nil {
		return domain.DrawRecord{}, false, nil
	}

	nums := make([]int, domain.PickCount)
	for i := range nums {
		if nums[i], err = strconv.Atoi(field(colNum1 + i)); err != nil {
			return domain.DrawRecord{}, false, fmt.Errorf("round %d: number #%d: %w", round, i+1, err)
		}
	}
	bonus, err := strconv.Atoi(field(colBonus))
	if err != nil {
		return domain.DrawRecord{}, false, fmt.Errorf("round %d: bonus: %w", round, err)
	}

	date, err := parseDate(field(colDate))
	if err != nil {
		return domain.DrawRecord{}, false, fmt.Errorf("round %d: %w", round, err)
	}

	d, err := domain.NewDrawRecord(round, date, nums, bonus)
	if err != nil {
		return domain.DrawRecord{}, false, fmt.Errorf("round %d: %w", round, err)
	}

	for i := range d.Prizes {
		winners, err := parseAmount(field(colTierWinners + i))
		if err != nil {
			return domain.DrawRecord{}, false, fmt.Errorf("round %d: tier %d winners: %w", round, i+1, err)
		}
		total, err := parseAmount(field(colTierAmount + i))
		if err != nil {
			return domain.DrawRecord{}, false, fmt.Errorf("round %d: tier %d amount: %w", round, i+1, err)
		}
		if winners < 0 || total < 0 {
			return domain.DrawRecord{}, false, fmt.Errorf("round %d: tier %d: negative prize", round, i+1)
		}
		d.Prizes[i].Winners = winners
		if winners > 0 {
			d.Prizes[i].Payout = total / winners
		}
	}
	return *d, true, nil
}

// lineIndex is the positional layout ParseDrawLine reads:
// round, date, six numbers, bonus.
var lineIndex = func() map[int]int {
	m := map[int]int{colRound: 0, colDate: 1, colBonus: 2 + domain.PickCount}
	for i := 0; i < domain.PickCount; i++ {
		m[colNum1+i] = 2 + i
	}
	return m
}()

// ParseDrawLine parses one draw written as "round,date,n1,...,n6,bonus".
// Prize columns are left empty.
func ParseDrawLine(line string) (domain.DrawRecord, error) {
	rec := strings.Split(line, ",")
	if len(rec) != len(lineIndex) {
		return domain.DrawRecord{}, fmt.Errorf("%w: want %d fields, got %d", domain.ErrValidation, len(lineIndex), len(rec))
	}
	d, ok, err := parseRow(rec, lineIndex)
	if err != nil {
		return domain.DrawRecord{}, err
	}
	if !ok {
		return domain.DrawRecord{}, fmt.Errorf("%w: round %q", domain.ErrValidation, rec[0])
	}
	return d, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseAmount reads integers written with thousands separators or a currency suffix.
func parseAmount(s string) (int64, error) {
	s = strings.TrimSuffix(strings.ReplaceAll(s, ",", ""), "원")
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// WriteCSV writes draws newest first with the English header ReadCSV accepts.
// Amount columns hold the tier total, so a round trip preserves Payout.
func WriteCSV(w io.Writer, draws []domain.DrawRecord) error {
	cw := csv.NewWriter(w)

	header := []string{"round", "date"}
	for i := 0; i < domain.PickCount; i++ {
		header = append(header, fmt.Sprintf("n%d", i+1))
	}
	header = append(header, "bonus")
	for i := 0; i < 5; i++ {
		header = append(header, fmt.Sprintf("tier%d_winners", i+1), fmt.Sprintf("tier%d_amount", i+1))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	sorted := make([]domain.DrawRecord, len(draws))
	copy(sorted, draws)
	SortDraws(sorted)

	for i := len(sorted) - 1; i >= 0; i-- {
		d := sorted[i]
		row := []string{strconv.Itoa(d.Round), ""}
		if !d.Date.IsZero() {
			row[1] = d.Date.Format("2006.01.02")
		}
		for _, n := range d.Numbers {
			row = append(row, strconv.Itoa(n))
		}
		row = append(row, strconv.Itoa(d.Bonus))
		for _, p := range d.Prizes {
			row = append(row, strconv.FormatInt(p.Winners, 10), strconv.FormatInt(p.Winners*p.Payout, 10))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
