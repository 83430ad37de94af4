// Package sequence menerbitkan nomor tampilan (PAY-001, ASN-001, USR-001)
// dari tabel counter, di dalam transaksi pemanggil.
package sequence

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	Payment    = "PAY"
	Assignment = "ASN"
	User       = "USR"
)

type DisplaySequence struct {
	Name  string `gorm:"column:seq_name;type:varchar(32);primaryKey"`
	Value int64  `gorm:"column:seq_value;not null"`
}

func (DisplaySequence) TableName() string { return "display_sequences" }

// Next menaikkan counter name dan mengembalikan nilai barunya.
// UPDATE mengunci baris counter sampai transaksi selesai, jadi dua transaksi
// tidak pernah mendapat nilai yang sama.
func Next(tx *gorm.DB, name string) (int64, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&DisplaySequence{Name: name}).Error; err != nil {
		return 0, fmt.Errorf("init sequence %s: %w", name, err)
	}
	res := tx.Model(&DisplaySequence{}).
		Where("seq_name = ?", name).
		Update("seq_value", gorm.Expr("seq_value + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("bump sequence %s: %w", name, res.Error)
	}
	var s DisplaySequence
	if err := tx.Where("seq_name = ?", name).Take(&s).Error; err != nil {
		return 0, fmt.Errorf("read sequence %s: %w", name, err)
	}
	return s.Value, nil
}

// NextCode: Next + Format.
func NextCode(tx *gorm.DB, prefix string) (string, error) {
	n, err := Next(tx, prefix)
	if err != nil {
		return "", err
	}
	return Format(prefix, n), nil
}

func Format(prefix string, n int64) string {
	return fmt.Sprintf("%s-%03d", strings.ToUpper(prefix), n)
}
