package dao

import (
	"database/sql/driver"
	"errors"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventSlugExists     = errors.New("slug already exists")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTicketTokenExists   = errors.New("ticket token already exists")
	ErrStorageConnectivity = errors.New("database connection failed")
)

const (
	eventSlugConstraint   = "uni_events_slug"
	ticketTokenConstraint = "uni_tickets_token"
)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		pgErr.ConstraintName == constraint
}

func isConnectivity(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn)
}

// classify maps driver errors the service cares about onto sentinels and
// returns everything else unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isConnectivity(err) {
		return errors.Join(ErrStorageConnectivity, err)
	}

	return err
}
