package postgresengine

import (
	"context"
	"errors"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/librento/librento/directory"
	"github.com/librento/librento/postgresengine/internal/adapters"
)

const (
	colMemberID        = "id"
	colMemberName      = "name"
	colMemberEmail     = "email"
	colMemberRole      = "role"
	colMemberPhone     = "phone"
	colMemberAddress   = "address"
	colMemberCreatedAt = "created_at"

	logActionGetMember    = "get member"
	logActionFindByEmail  = "find member by email"
	logActionListMembers  = "list members"
	logActionInsertMember = "insert member"
)

// MemberDirectory implements directory.Directory on top of Postgres.
// Email lookups fold case so the stored spelling does not matter.
type MemberDirectory struct {
	engine Engine
}

var _ directory.Directory = (*MemberDirectory)(nil)

func (d *MemberDirectory) memberColumns() []any {
	return []any{
		colMemberID, colMemberName, colMemberEmail, colMemberRole,
		colMemberPhone, colMemberAddress, colMemberCreatedAt,
	}
}

// Get returns the member with the given id.
func (d *MemberDirectory) Get(ctx context.Context, memberID uuid.UUID) (directory.Member, error) {
	return d.find(ctx, logActionGetMember, goqu.C(colMemberID).Eq(memberID.String()))
}

// FindByEmail returns the member with the given email, compared case-insensitively.
func (d *MemberDirectory) FindByEmail(ctx context.Context, email string) (directory.Member, error) {
	return d.find(ctx, logActionFindByEmail,
		goqu.L("LOWER("+colMemberEmail+")").Eq(strings.ToLower(email)))
}

func (d *MemberDirectory) find(ctx context.Context, action string, where goqu.Expression) (directory.Member, error) {
	sqlQuery, _, toSQLErr := builder().
		From(d.engine.tables.Members).
		Select(d.memberColumns()...).
		Where(where).
		ToSQL()
	if toSQLErr != nil {
		d.engine.logError(logMsgBuildQueryFailed, toSQLErr)
		return directory.Member{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, err := d.engine.query(ctx, action, sqlQuery)
	if err != nil {
		return directory.Member{}, err
	}
	defer d.engine.closeRows(rows)

	if !rows.Next() {
		return directory.Member{}, directory.ErrUnknownMember
	}

	return d.scanMember(rows)
}

// List returns all members ordered by creation time.
func (d *MemberDirectory) List(ctx context.Context) ([]directory.Member, error) {
	sqlQuery, _, toSQLErr := builder().
		From(d.engine.tables.Members).
		Select(d.memberColumns()...).
		Order(goqu.I(colMemberCreatedAt).Asc(), goqu.I(colMemberID).Asc()).
		ToSQL()
	if toSQLErr != nil {
		d.engine.logError(logMsgBuildQueryFailed, toSQLErr)
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, err := d.engine.query(ctx, logActionListMembers, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer d.engine.closeRows(rows)

	members := make([]directory.Member, 0)

	for rows.Next() {
		member, scanErr := d.scanMember(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		members = append(members, member)
	}

	return members, nil
}

// Add inserts a new member.
func (d *MemberDirectory) Add(ctx context.Context, member directory.Member) error {
	sqlQuery, _, toSQLErr := builder().
		Insert(d.engine.tables.Members).
		Rows(goqu.Record{
			colMemberID:        member.ID.String(),
			colMemberName:      member.Name,
			colMemberEmail:     member.Email,
			colMemberRole:      string(member.Role),
			colMemberPhone:     member.Phone,
			colMemberAddress:   member.Address,
			colMemberCreatedAt: member.CreatedAt,
		}).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if toSQLErr != nil {
		d.engine.logError(logMsgBuildQueryFailed, toSQLErr)
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, err := d.engine.exec(ctx, logActionInsertMember, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return directory.ErrMemberExists
	}

	return nil
}

func (d *MemberDirectory) scanMember(rows adapters.DBRows) (directory.Member, error) {
	var (
		member  directory.Member
		rawID   string
		rawRole string
	)

	scanErr := rows.Scan(
		&rawID, &member.Name, &member.Email, &rawRole,
		&member.Phone, &member.Address, &member.CreatedAt,
	)
	if scanErr != nil {
		d.engine.logError(logMsgScanRowFailed, scanErr)
		return directory.Member{}, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	id, parseErr := uuid.Parse(rawID)
	if parseErr != nil {
		return directory.Member{}, errors.Join(ErrScanningDBRowFailed, parseErr)
	}

	member.ID = id
	member.Role = directory.Role(rawRole)

	return member, nil
}
