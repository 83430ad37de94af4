// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Kolom tanggal (move_in, due_date, payment_date) disimpan sebagai tengah malam UTC
// dari tanggal kalender Asia/Jakarta. Semua perbandingan tanggal memakai bentuk itu.

const DateLayout = "2006-01-02"

var (
	locOnce sync.Once
	loc     *time.Location
)

// Location mengembalikan Asia/Jakarta, fallback UTC kalau tzdata tidak ada.
func Location() *time.Location {
	locOnce.Do(func() {
		l, err := time.LoadLocation("Asia/Jakarta")
		if err != nil {
			l = time.UTC
		}
		loc = l
	})
	return loc
}

// DateOnly memotong t ke tanggal kalendernya (di zona t sendiri) sebagai UTC midnight.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today: tanggal hari ini di Asia/Jakarta.
func Today(now time.Time) time.Time {
	return DateOnly(now.In(Location()))
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// ParseDatePtr: string kosong → nil.
func ParseDatePtr(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func FormatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatDate(*t)
	return &s
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampedDate: hari ke-day dari (year, month), dipotong ke hari terakhir bulan itu.
func ClampedDate(year int, month time.Month, day int) time.Time {
	if day < 1 {
		day = 1
	}
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddMonths menggeser (year, month) sebanyak delta bulan.
func AddMonths(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return t.Year(), t.Month()
}

// DaysBetween: selisih hari kalender b - a.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

var monthNamesID = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// MonthName: nama bulan dalam bahasa Indonesia.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNamesID[m-1]
}

// PeriodLabel, contoh: "Juni 2025".
func PeriodLabel(month, year int) string {
	return MonthName(time.Month(month)) + " " + strconv.Itoa(year)
}
