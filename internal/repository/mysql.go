package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DJaayy/slot-booking/internal/model"
)

// MySQLStore is the production implementation of Store over a
// MySQL database. The booking ledger operations run inside a
// transaction with the target slot row locked, so two concurrent
// booking attempts on the same slot cannot both succeed.
//
// Date columns are DATE (day granularity); the variables dictionary
// of email templates is stored as a JSON column.
type MySQLStore struct {
	db  *sql.DB
	log *zap.Logger
}

// NewMySQLStore returns a MySQLStore bound to the given database.
func NewMySQLStore(db *sql.DB, log *zap.Logger) *MySQLStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &MySQLStore{db: db, log: log}
}

// DB exposes the underlying sql.DB for callers that need to manage
// their own transactions or run migrations.
func (s *MySQLStore) DB() *sql.DB { return s.db }

const slotColumns = `id, date, time, time_detail, booked, release_id`

func scanSlot(row interface{ Scan(...any) error }) (*model.Slot, error) {
	var (
		slot      model.Slot
		detail    sql.NullString
		releaseID sql.NullInt64
	)
	if err := row.Scan(&slot.ID, &slot.Date, &slot.Time, &detail, &slot.Booked, &releaseID); err != nil {
		return nil, err
	}
	slot.TimeDetail = detail.String
	if releaseID.Valid {
		id := uint64(releaseID.Int64)
		slot.ReleaseID = &id
	}
	slot.Date = DayOf(slot.Date)
	return &slot, nil
}

const releaseColumns = `id, name, version, team, release_type, description, status, comments, slot_id`

func scanRelease(row interface{ Scan(...any) error }) (*model.Release, error) {
	var (
		rel                    model.Release
		version, desc, comment sql.NullString
	)
	if err := row.Scan(&rel.ID, &rel.Name, &version, &rel.Team, &rel.ReleaseType, &desc, &rel.Status, &comment, &rel.SlotID); err != nil {
		return nil, err
	}
	rel.Version = version.String
	rel.Description = desc.String
	rel.Comments = comment.String
	return &rel, nil
}

// GetSlot returns the slot with the given id or ErrSlotNotFound.
func (s *MySQLStore) GetSlot(ctx context.Context, id uint64) (*model.Slot, error) {
	const q = `SELECT ` + slotColumns + ` FROM deployment_slots WHERE id = ?`
	slot, err := scanSlot(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	return slot, err
}

// GetSlots returns every slot ordered by date then slot label.
func (s *MySQLStore) GetSlots(ctx context.Context) ([]model.Slot, error) {
	const q = `SELECT ` + slotColumns + ` FROM deployment_slots ORDER BY date, time`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *slot)
	}
	return out, rows.Err()
}

// GetSlotsByWeek returns the slots of the Monday-start week
// containing date, each joined with its release via LEFT JOIN so a
// dangling release reference degrades to a free-looking slot.
func (s *MySQLStore) GetSlotsByWeek(ctx context.Context, date time.Time) ([]model.SlotWithRelease, error) {
	monday, sunday := WeekOf(date)
	const q = `SELECT s.id, s.date, s.time, s.time_detail, s.booked, s.release_id,
	                  r.id, r.name, r.version, r.team, r.release_type, r.description, r.status, r.comments, r.slot_id
	           FROM deployment_slots s
	           LEFT JOIN releases r ON r.id = s.release_id
	           WHERE s.date BETWEEN ? AND ?
	           ORDER BY s.date, s.time`
	rows, err := s.db.QueryContext(ctx, q, monday, sunday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.SlotWithRelease
	for rows.Next() {
		var (
			item      model.SlotWithRelease
			detail    sql.NullString
			releaseID sql.NullInt64

			relID                          sql.NullInt64
			relName, relTeam, relType      sql.NullString
			relVersion, relDesc            sql.NullString
			relStatus, relComments         sql.NullString
			relSlotID                      sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &item.Date, &item.Time, &detail, &item.Booked, &releaseID,
			&relID, &relName, &relVersion, &relTeam, &relType, &relDesc, &relStatus, &relComments, &relSlotID); err != nil {
			return nil, err
		}
		item.TimeDetail = detail.String
		item.Date = DayOf(item.Date)
		if releaseID.Valid {
			id := uint64(releaseID.Int64)
			item.ReleaseID = &id
		}
		if relID.Valid {
			item.Release = &model.Release{
				ID:          uint64(relID.Int64),
				Name:        relName.String,
				Version:     relVersion.String,
				Team:        relTeam.String,
				ReleaseType: relType.String,
				Description: relDesc.String,
				Status:      model.ReleaseStatus(relStatus.String),
				Comments:    relComments.String,
				SlotID:      uint64(relSlotID.Int64),
			}
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// CreateSlot inserts a slot unless one exists for the same
// (date, time) pair. The UNIQUE KEY on (date, time) backs the
// idempotence; on conflict the existing row's id is fetched back.
func (s *MySQLStore) CreateSlot(ctx context.Context, slot *model.Slot) (bool, error) {
	slot.Date = DayOf(slot.Date)
	const sel = `SELECT id FROM deployment_slots WHERE date = ? AND time = ?`
	err := s.db.QueryRowContext(ctx, sel, slot.Date, slot.Time).Scan(&slot.ID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	const ins = `INSERT INTO deployment_slots (date, time, time_detail, booked) VALUES (?, ?, ?, FALSE)`
	res, err := s.db.ExecContext(ctx, ins, slot.Date, slot.Time, nullable(slot.TimeDetail))
	if err != nil {
		return false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, err
	}
	slot.ID = uint64(id)
	return true, nil
}

// Book creates a release and marks the slot booked inside one
// transaction. The slot row is locked with FOR UPDATE so a
// concurrent booking of the same slot blocks and then fails with
// ErrSlotBooked.
func (s *MySQLStore) Book(ctx context.Context, req model.BookingRequest, now time.Time) (*model.Release, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const sel = `SELECT date, booked FROM deployment_slots WHERE id = ? FOR UPDATE`
	var (
		slotDate time.Time
		booked   bool
	)
	if err := tx.QueryRowContext(ctx, sel, req.SlotID).Scan(&slotDate, &booked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	if booked {
		return nil, ErrSlotBooked
	}
	if err := validateBooking(req, slotDate, now); err != nil {
		return nil, err
	}

	const ins = `INSERT INTO releases (name, version, team, release_type, description, status, slot_id)
	             VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins, req.ReleaseName, nullable(req.Version), req.Team,
		req.ReleaseType, nullable(req.Description), model.StatusPending, req.SlotID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	rel := &model.Release{
		ID:          uint64(id),
		Name:        req.ReleaseName,
		Version:     req.Version,
		Team:        req.Team,
		ReleaseType: req.ReleaseType,
		Description: req.Description,
		Status:      model.StatusPending,
		SlotID:      req.SlotID,
	}

	const upd = `UPDATE deployment_slots SET booked = TRUE, release_id = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, rel.ID, req.SlotID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return rel, nil
}

// Cancel deletes the release and frees its slot in one
// transaction. A missing slot row is logged and tolerated so a
// corrupted pairing can still be cleaned up.
func (s *MySQLStore) Cancel(ctx context.Context, releaseID uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const sel = `SELECT slot_id FROM releases WHERE id = ? FOR UPDATE`
	var slotID uint64
	if err := tx.QueryRowContext(ctx, sel, releaseID).Scan(&slotID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReleaseNotFound
		}
		return err
	}
	const del = `DELETE FROM releases WHERE id = ?`
	if _, err := tx.ExecContext(ctx, del, releaseID); err != nil {
		return err
	}
	const upd = `UPDATE deployment_slots SET booked = FALSE, release_id = NULL WHERE id = ?`
	res, err := tx.ExecContext(ctx, upd, slotID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.log.Warn("cancelled release referenced a missing slot",
			zap.Uint64("release_id", releaseID),
			zap.Uint64("slot_id", slotID))
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpdateReleaseStatus sets status and comments in place and returns
// the updated release.
func (s *MySQLStore) UpdateReleaseStatus(ctx context.Context, releaseID uint64, status model.ReleaseStatus, comments string) (*model.Release, error) {
	const upd = `UPDATE releases SET status = ?, comments = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, upd, status, nullable(comments), releaseID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op
		// update, so confirm existence before reporting not found.
		if _, err := s.GetRelease(ctx, releaseID); err != nil {
			return nil, err
		}
	}
	return s.GetRelease(ctx, releaseID)
}

// GetRelease returns the release with the given id or ErrReleaseNotFound.
func (s *MySQLStore) GetRelease(ctx context.Context, id uint64) (*model.Release, error) {
	const q = `SELECT ` + releaseColumns + ` FROM releases WHERE id = ?`
	rel, err := scanRelease(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReleaseNotFound
	}
	return rel, err
}

// GetReleases returns every release in the store.
func (s *MySQLStore) GetReleases(ctx context.Context) ([]model.Release, error) {
	const q = `SELECT ` + releaseColumns + ` FROM releases ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Release
	for rows.Next() {
		rel, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rel)
	}
	return out, rows.Err()
}

// GetUpcomingReleases returns all releases joined with their slots,
// ordered by slot date then slot label; releases with a dangling
// slot reference sort last.
func (s *MySQLStore) GetUpcomingReleases(ctx context.Context) ([]model.ReleaseWithSlot, error) {
	const q = `SELECT r.id, r.name, r.version, r.team, r.release_type, r.description, r.status, r.comments, r.slot_id,
	                  s.id, s.date, s.time, s.time_detail, s.booked, s.release_id
	           FROM releases r
	           LEFT JOIN deployment_slots s ON s.id = r.slot_id
	           ORDER BY s.date IS NULL, s.date, s.time, r.id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ReleaseWithSlot
	for rows.Next() {
		var (
			item                   model.ReleaseWithSlot
			version, desc, comment sql.NullString

			slotID, slotReleaseID sql.NullInt64
			slotDate              sql.NullTime
			slotTime, slotDetail  sql.NullString
			slotBooked            sql.NullBool
		)
		if err := rows.Scan(&item.ID, &item.Name, &version, &item.Team, &item.ReleaseType, &desc, &item.Status, &comment, &item.SlotID,
			&slotID, &slotDate, &slotTime, &slotDetail, &slotBooked, &slotReleaseID); err != nil {
			return nil, err
		}
		item.Version = version.String
		item.Description = desc.String
		item.Comments = comment.String
		if slotID.Valid {
			slot := &model.Slot{
				ID:         uint64(slotID.Int64),
				Date:       DayOf(slotDate.Time),
				Time:       slotTime.String,
				TimeDetail: slotDetail.String,
				Booked:     slotBooked.Bool,
			}
			if slotReleaseID.Valid {
				rid := uint64(slotReleaseID.Int64)
				slot.ReleaseID = &rid
			}
			item.Slot = slot
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

const templateColumns = `id, name, category, subject, body, variables, is_default`

func scanTemplate(row interface{ Scan(...any) error }) (*model.EmailTemplate, error) {
	var (
		t    model.EmailTemplate
		vars sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Category, &t.Subject, &t.Body, &vars, &t.IsDefault); err != nil {
		return nil, err
	}
	if vars.Valid && vars.String != "" {
		if err := json.Unmarshal([]byte(vars.String), &t.Variables); err != nil {
			return nil, err
		}
	}
	if t.Variables == nil {
		t.Variables = map[string]string{}
	}
	return &t, nil
}

// GetEmailTemplate returns the template with the given id or
// ErrTemplateNotFound.
func (s *MySQLStore) GetEmailTemplate(ctx context.Context, id uint64) (*model.EmailTemplate, error) {
	const q = `SELECT ` + templateColumns + ` FROM email_templates WHERE id = ?`
	t, err := scanTemplate(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	return t, err
}

// GetEmailTemplates returns all templates, filtered by category
// when category is non-empty.
func (s *MySQLStore) GetEmailTemplates(ctx context.Context, category string) ([]model.EmailTemplate, error) {
	q := `SELECT ` + templateColumns + ` FROM email_templates`
	args := []any{}
	if category != "" {
		q += ` WHERE category = ?`
		args = append(args, category)
	}
	q += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.EmailTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// CreateEmailTemplate inserts a template and populates its ID.
func (s *MySQLStore) CreateEmailTemplate(ctx context.Context, t *model.EmailTemplate) error {
	vars, err := json.Marshal(t.Variables)
	if err != nil {
		return err
	}
	const q = `INSERT INTO email_templates (name, category, subject, body, variables, is_default)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, t.Name, t.Category, t.Subject, t.Body, string(vars), t.IsDefault)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// UpdateEmailTemplate replaces the mutable fields of a template.
// The default flag is owned by the seeder and left untouched.
func (s *MySQLStore) UpdateEmailTemplate(ctx context.Context, t *model.EmailTemplate) error {
	vars, err := json.Marshal(t.Variables)
	if err != nil {
		return err
	}
	const q = `UPDATE email_templates SET name = ?, category = ?, subject = ?, body = ?, variables = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, t.Name, t.Category, t.Subject, t.Body, string(vars), t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := s.GetEmailTemplate(ctx, t.ID); err != nil {
			return err
		}
	}
	stored, err := s.GetEmailTemplate(ctx, t.ID)
	if err != nil {
		return err
	}
	t.IsDefault = stored.IsDefault
	return nil
}

// DeleteEmailTemplate removes a template unless it is a protected
// default.
func (s *MySQLStore) DeleteEmailTemplate(ctx context.Context, id uint64) error {
	t, err := s.GetEmailTemplate(ctx, id)
	if err != nil {
		return err
	}
	if t.IsDefault {
		return ErrForbidden
	}
	const q = `DELETE FROM email_templates WHERE id = ?`
	_, err = s.db.ExecContext(ctx, q, id)
	return err
}

// CreateUser inserts a user, rejecting duplicate usernames.
func (s *MySQLStore) CreateUser(ctx context.Context, u *model.User) error {
	const dup = `SELECT id FROM users WHERE username = ?`
	var existing uint64
	switch err := s.db.QueryRowContext(ctx, dup, u.Username).Scan(&existing); {
	case err == nil:
		return ErrUsernameTaken
	case !errors.Is(err, sql.ErrNoRows):
		return err
	}
	const q = `INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, u.Username, u.PasswordHash, u.Role)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetUserByUsername returns the user or ErrUserNotFound.
func (s *MySQLStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT id, username, password_hash, role, created_at FROM users WHERE username = ?`
	var u model.User
	err := s.db.QueryRowContext(ctx, q, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
