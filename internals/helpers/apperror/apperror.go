// Package apperror berisi taksonomi error domain yang dipakai semua service.
// Controller memetakan Kind ke status HTTP lewat helper.JsonAppError.
package apperror

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindInvalidInput       Kind = "invalid_input"
	KindForbidden          Kind = "forbidden"
	KindPreconditionFailed Kind = "precondition_failed"
	KindInternal           Kind = "internal"
)

// Kode error yang stabil untuk klien.
const (
	CodeAlreadyPaid         = "ALREADY_PAID"
	CodeInvalidDate         = "INVALID_DATE"
	CodeRoomOccupied        = "ROOM_OCCUPIED"
	CodeRoomNotAvailable    = "ROOM_NOT_AVAILABLE"
	CodeTenantHasAssignment = "TENANT_HAS_ASSIGNMENT"
	CodeDuplicatePeriod     = "DUPLICATE_PERIOD"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is membuat errors.Is(err, ErrAlreadyPaid) cocok berdasarkan Kind + Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Code == t.Code
	}
	return t.Message == "" && e.Kind == t.Kind
}

var (
	ErrAlreadyPaid = &Error{Kind: KindConflict, Code: CodeAlreadyPaid, Message: "Pembayaran sudah lunas"}
	ErrInvalidDate = &Error{Kind: KindInvalidInput, Code: CodeInvalidDate, Message: "Tanggal tidak valid"}

	// Dipakai sebagai target errors.Is untuk mengecek Kind saja.
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrPreconditionFailed = &Error{Kind: KindPreconditionFailed}
)

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func NotFound(msg string) *Error           { return New(KindNotFound, msg) }
func Conflict(msg string) *Error           { return New(KindConflict, msg) }
func InvalidInput(msg string) *Error       { return New(KindInvalidInput, msg) }
func Forbidden(msg string) *Error          { return New(KindForbidden, msg) }
func PreconditionFailed(msg string) *Error { return New(KindPreconditionFailed, msg) }

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// WithCode mengembalikan salinan error dengan kode tertentu.
func (e *Error) WithCode(code string) *Error {
	cp := *e
	cp.Code = code
	return &cp
}

// Withf mengganti pesan tanpa mengubah Kind/Code (untuk sentinel).
func (e *Error) Withf(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// KindOf mengembalikan Kind dari err, KindInternal kalau bukan *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

/* ===================== DB mapping ===================== */

// IsUniqueViolation: Postgres 23505 (pgx / lib/pq) atau SQLite UNIQUE.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == "23505" {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key") ||
		strings.Contains(s, "unique constraint") ||
		strings.Contains(s, "sqlstate 23505")
}

func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == "23503" {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

// FromDB mengklasifikasikan error persistence. *Error diteruskan apa adanya.
func FromDB(err error, msg string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Message: msg, Err: err}
	case IsUniqueViolation(err):
		return &Error{Kind: KindConflict, Message: msg, Err: err}
	case IsForeignKeyViolation(err):
		return &Error{Kind: KindInvalidInput, Message: msg, Err: err}
	default:
		return Internal(msg, err)
	}
}
