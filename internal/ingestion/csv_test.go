package ingestion

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"lotto-lab/internal/domain"
)

const koreanExport = "\ufeff회차,당첨번호,,,,,,,,,,,,,,,,,,,\n" +
	"year,회차,일자,1등 당첨자수,1등 당첨액,2등 당첨자수,2등 당첨액,3등 당첨자수,3등 당첨액,4등 당첨자수,4등 당첨액,5등 당첨자수,5등 당첨액,당첨번호#1,당첨번호#2,당첨번호#3,당첨번호#4,당첨번호#5,당첨번호#6,당첨번호#7\n" +
	"2026,1205,2026.01.03,10,\"32,263,862,630\",97,5377310527,3486,5377311870,174740,8737000000,2915978,14579890000,31,4,16,23,1,41,2\n" +
	"2025,1204,2025.12.27,12,30000000000,80,5000000000,3000,4500000000,150000,7500000000,2500000,12500000000,8,16,28,30,31,44,27\n" +
	",,,,,,,,,,,,,,,,,,,,\n"

func TestReadCSV_KoreanExport(t *testing.T) {
	draws, err := ReadCSV(strings.NewReader(koreanExport))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(draws) != 2 {
		t.Fatalf("expected 2 draws, got %d", len(draws))
	}

	if draws[0].Round != 1204 || draws[1].Round != 1205 {
		t.Errorf("draws not sorted ascending: %d, %d", draws[0].Round, draws[1].Round)
	}

	d := draws[1]
	if d.Numbers != [6]int{1, 4, 16, 23, 31, 41} {
		t.Errorf("numbers = %v, want sorted 1 4 16 23 31 41", d.Numbers)
	}
	if d.Bonus != 2 {
		t.Errorf("bonus = %d, want 2", d.Bonus)
	}
	if !d.Date.Equal(time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", d.Date)
	}
	if d.Prizes[0].Winners != 10 || d.Prizes[0].Payout != 3_226_386_263 {
		t.Errorf("tier 1 = %+v", d.Prizes[0])
	}
	if d.Prizes[4].Payout != 5000 {
		t.Errorf("tier 5 payout = %d, want 5000", d.Prizes[4].Payout)
	}
}

func TestReadCSV_InvalidRow(t *testing.T) {
	in := "round,date,n1,n2,n3,n4,n5,n6,bonus\n" +
		"1,2002.12.07,1,2,3,4,5,5,9\n"

	_, err := ReadCSV(strings.NewReader(in))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the line: %v", err)
	}
}

func TestReadCSV_NoHeader(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("1,2,3\n4,5,6\n"))
	if !errors.Is(err, ErrNoHeader) {
		t.Fatalf("expected ErrNoHeader, got %v", err)
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	in, err := ReadCSV(strings.NewReader(koreanExport))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, in); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.HasPrefix(strings.SplitN(buf.String(), "\n", 3)[1], "1205,") {
		t.Errorf("newest round should be written first:\n%s", buf.String())
	}

	out, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV of written csv: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("round trip lost rows: %d vs %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("row %d differs:\n in=%+v\nout=%+v", i, in[i], out[i])
		}
	}
}

func TestGaps(t *testing.T) {
	draws := []domain.DrawRecord{{Round: 1}, {Round: 2}, {Round: 5}, {Round: 7}}
	gaps := Gaps(draws)
	want := []int{3, 4, 6}
	if len(gaps) != len(want) {
		t.Fatalf("gaps = %v, want %v", gaps, want)
	}
	for i := range want {
		if gaps[i] != want[i] {
			t.Errorf("gaps = %v, want %v", gaps, want)
		}
	}
}

func TestValidateDrawOrdering(t *testing.T) {
	if err := ValidateDrawOrdering([]domain.DrawRecord{{Round: 1}, {Round: 3}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateDrawOrdering([]domain.DrawRecord{{Round: 1}, {Round: 1}}); !errors.Is(err, ErrInvalidOrdering) {
		t.Errorf("expected ErrInvalidOrdering, got %v", err)
	}
}

func TestParseDrawLine(t *testing.T) {
	d, err := ParseDrawLine("1100, 2023.12.30, 17, 26, 29, 30, 31, 43, 12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Round != 1100 || d.Bonus != 12 {
		t.Errorf("got round %d bonus %d", d.Round, d.Bonus)
	}
	if d.Numbers != [6]int{17, 26, 29, 30, 31, 43} {
		t.Errorf("numbers = %v", d.Numbers)
	}
	if d.Date.Year() != 2023 {
		t.Errorf("date = %v", d.Date)
	}
}

func TestParseDrawLine_Invalid(t *testing.T) {
	for _, line := range []string{
		"1100,2023.12.30,17,26,29,30,31,43",
		"x,2023.12.30,17,26,29,30,31,43,12",
		"1100,2023.12.30,17,17,29,30,31,43,12",
		"1100,2023.12.30,17,26,29,30,31,43,43",
	} {
		if _, err := ParseDrawLine(line); err == nil {
			t.Errorf("%q: expected error", line)
		}
	}
}
