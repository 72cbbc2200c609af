package havs

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("havs week not found")
	ErrMemberNotFound       = errors.New("gang member not found")
	ErrWeekExists           = errors.New("a HAVS week already exists for this ganger and week ending")
	ErrWeekSubmitted        = errors.New("week has been submitted and can no longer be changed")
	ErrGangFull             = errors.New("gang already has the maximum number of operatives")
	ErrDuplicateMember      = errors.New("person is already a member of this gang")
	ErrGangerMember         = errors.New("the ganger cannot be removed from their own week")
	ErrConfirmationRequired = errors.New("removing a member deletes their exposure data and must be confirmed")
	ErrNothingToSubmit      = errors.New("week has no exposure recorded")
	ErrUnknownEquipment     = errors.New("unknown equipment")
	ErrInvalidMinutes       = errors.New("minutes must be whole numbers between 0 and 1440")
	ErrInvalidWeekEnding    = errors.New("week ending must be a Sunday")
	ErrInvalidMember        = errors.New("member must have either an employee or a manual name")
	ErrNotOperative         = errors.New("employee cannot be added as an operative")
	ErrNotGanger            = errors.New("only gangers can own a HAVS week")
	ErrInvalidRange         = errors.New("invalid date range")
	ErrRevisionImmutable    = errors.New("revisions are append-only")
)

// IsValidation reports whether err is caused by bad input rather than state.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrGangFull, ErrDuplicateMember, ErrGangerMember, ErrConfirmationRequired,
		ErrUnknownEquipment, ErrInvalidMinutes, ErrInvalidWeekEnding, ErrInvalidMember,
		ErrNotOperative, ErrNotGanger, ErrInvalidRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsUniqueViolation detects a uniqueness-constraint failure from the store,
// whether gorm translated it or it surfaced as a raw Postgres error.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
