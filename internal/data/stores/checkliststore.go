// Package stores implements checklist persistence on SQLite.
package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/internal/data/db"
	"github.com/colonyops/checkup/pkg/randid"
)

// ChecklistStore implements checklist.Source on the local SQLite database,
// plus the authoring operations the CLI needs (create, add item, list).
type ChecklistStore struct {
	db           *db.DB
	pollInterval time.Duration

	now func() time.Time
}

var _ checklist.Source = (*ChecklistStore)(nil)

// NewChecklistStore creates a SQLite-backed checklist store. pollInterval
// controls how often Subscribe checks for changes; zero disables polling
// (Subscribe becomes a no-op, suitable for one-shot commands).
func NewChecklistStore(database *db.DB, pollInterval time.Duration) *ChecklistStore {
	return &ChecklistStore{
		db:           database,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// Summary is the row shape `checkup ls` renders.
type Summary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	ClientName string    `json:"client_name,omitempty"`
	Items      int       `json:"items"`
	Completed  int       `json:"completed"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateChecklist persists a new checklist with its items. Generates IDs
// for the checklist and any item missing one.
func (s *ChecklistStore) CreateChecklist(ctx context.Context, cl checklist.Checklist) (checklist.Checklist, error) {
	if cl.ID == "" {
		cl.ID = randid.Generate(8)
	}
	now := s.now()
	if cl.CreatedAt.IsZero() {
		cl.CreatedAt = now
	}
	cl.UpdatedAt = now

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var (
			clientID, clientName, clientType, clientIndustry, clientSize sql.NullString
		)
		if cp := cl.ClientProfile; cp != nil {
			clientID = toNullString(cp.ID)
			clientName = toNullString(cp.Name)
			clientType = toNullString(cp.BusinessType)
			clientIndustry = toNullString(cp.Industry)
			clientSize = toNullString(cp.CompanySize)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO checklists (id, title, description, client_id, client_name, client_business_type, client_industry, client_company_size, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cl.ID, cl.Title, toNullString(cl.Description),
			clientID, clientName, clientType, clientIndustry, clientSize,
			cl.CreatedAt.UnixNano(), cl.UpdatedAt.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("insert checklist: %w", err)
		}

		for i := range cl.Items {
			if cl.Items[i].ID == "" {
				cl.Items[i].ID = randid.Generate(8)
			}
			if cl.Items[i].CreatedAt.IsZero() {
				cl.Items[i].CreatedAt = now
			}
			cl.Items[i].UpdatedAt = now
			if err := insertItem(ctx, tx, cl.ID, i, cl.Items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return checklist.Checklist{}, err
	}

	return cl, nil
}

// AddItem appends an item to an existing checklist.
func (s *ChecklistStore) AddItem(ctx context.Context, checklistID string, it checklist.Item) (checklist.Item, error) {
	if it.ID == "" {
		it.ID = randid.Generate(8)
	}
	now := s.now()
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}
	it.UpdatedAt = now

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var position int
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position)+1, 0) FROM checklist_items WHERE checklist_id = ?`,
			checklistID,
		).Scan(&position)
		if err != nil {
			return fmt.Errorf("next item position: %w", err)
		}

		var exists int
		err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM checklists WHERE id = ?`, checklistID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check checklist: %w", err)
		}
		if exists == 0 {
			return checklist.ErrNotFound
		}

		return insertItem(ctx, tx, checklistID, position, it)
	})
	if err != nil {
		return checklist.Item{}, err
	}

	return it, nil
}

// ListChecklists returns summaries of all checklists, most recently
// updated first.
func (s *ChecklistStore) ListChecklists(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT c.id, c.title, COALESCE(c.client_name, ''), c.updated_at,
		       COUNT(i.id), COALESCE(SUM(i.is_completed), 0)
		FROM checklists c
		LEFT JOIN checklist_items i ON i.checklist_id = c.id
		GROUP BY c.id
		ORDER BY c.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list checklists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := make([]Summary, 0)
	for rows.Next() {
		var (
			sum       Summary
			updatedAt int64
		)
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.ClientName, &updatedAt, &sum.Items, &sum.Completed); err != nil {
			return nil, fmt.Errorf("scan checklist row: %w", err)
		}
		sum.UpdatedAt = time.Unix(0, updatedAt)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// FetchChecklist loads a checklist with its items in authoring order.
// Returns checklist.ErrNotFound if the checklist does not exist.
func (s *ChecklistStore) FetchChecklist(ctx context.Context, id string) (checklist.Checklist, error) {
	row := s.db.Conn().QueryRowContext(ctx, `
		SELECT id, title, COALESCE(description, ''),
		       COALESCE(client_id, ''), COALESCE(client_name, ''),
		       COALESCE(client_business_type, ''), COALESCE(client_industry, ''), COALESCE(client_company_size, ''),
		       created_at, updated_at
		FROM checklists WHERE id = ?`, id)

	var (
		cl                   checklist.Checklist
		clientID, clientName string
		clientType, clientIndustry, clientSize string
		createdAt, updatedAt int64
	)
	err := row.Scan(&cl.ID, &cl.Title, &cl.Description,
		&clientID, &clientName, &clientType, &clientIndustry, &clientSize,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return checklist.Checklist{}, checklist.ErrNotFound
	}
	if err != nil {
		return checklist.Checklist{}, fmt.Errorf("get checklist: %w", err)
	}

	cl.CreatedAt = time.Unix(0, createdAt)
	cl.UpdatedAt = time.Unix(0, updatedAt)
	if clientID != "" || clientName != "" {
		cl.ClientProfile = &checklist.ClientProfile{
			ID:           clientID,
			Name:         clientName,
			BusinessType: clientType,
			Industry:     clientIndustry,
			CompanySize:  clientSize,
		}
	}

	items, err := s.fetchItems(ctx, id, 0)
	if err != nil {
		return checklist.Checklist{}, err
	}
	cl.Items = items

	return cl, nil
}

// WriteItemPatch applies a patch to a stored item and returns the result.
// Returns checklist.ErrNotFound if the item does not exist in the checklist.
func (s *ChecklistStore) WriteItemPatch(ctx context.Context, checklistID, itemID string, patch checklist.Patch) (checklist.Item, error) {
	if err := patch.Validate(); err != nil {
		return checklist.Item{}, err
	}

	var updated checklist.Item
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, itemSelect+` WHERE checklist_id = ? AND id = ?`, checklistID, itemID)
		it, err := scanItem(row)
		if errors.Is(err, sql.ErrNoRows) {
			return checklist.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get item: %w", err)
		}

		updated = patch.Apply(it, s.now())

		var (
			completedAt, verifiedAt             sql.NullInt64
			verificationMethod, verificationStatus sql.NullString
		)
		if updated.CompletedAt != nil {
			completedAt = sql.NullInt64{Int64: updated.CompletedAt.UnixNano(), Valid: true}
		}
		if v := updated.Verification; v != nil {
			verificationMethod = toNullString(string(v.Method))
			verificationStatus = toNullString(string(v.Status))
			if v.VerifiedAt != nil {
				verifiedAt = sql.NullInt64{Int64: v.VerifiedAt.UnixNano(), Valid: true}
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE checklist_items
			SET is_completed = ?, completed_at = ?, notes = ?,
			    actual_minutes = ?, verification_method = ?, verification_status = ?, verified_at = ?,
			    updated_at = ?
			WHERE id = ?`,
			boolToInt(updated.IsCompleted), completedAt, toNullString(updated.Notes),
			toNullInt(updated.ActualMinutes), verificationMethod, verificationStatus, verifiedAt,
			updated.UpdatedAt.UnixNano(), itemID,
		)
		if err != nil {
			return fmt.Errorf("update item: %w", err)
		}

		_, err = tx.ExecContext(ctx, `UPDATE checklists SET updated_at = ? WHERE id = ?`,
			updated.UpdatedAt.UnixNano(), checklistID)
		if err != nil {
			return fmt.Errorf("touch checklist: %w", err)
		}
		return nil
	})
	if err != nil {
		return checklist.Item{}, err
	}

	return updated, nil
}

// Subscribe polls for item changes on the checklist and invokes
// onRemoteChange for each changed item. The local database has no push
// channel, so polling stands in for the realtime subscription a hosted
// backend provides.
func (s *ChecklistStore) Subscribe(checklistID string, onRemoteChange func(checklist.Item)) checklist.Unsubscribe {
	if s.pollInterval <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go s.poll(ctx, checklistID, onRemoteChange)
	return func() { cancel() }
}

func (s *ChecklistStore) poll(ctx context.Context, checklistID string, onRemoteChange func(checklist.Item)) {
	watermark := s.now().UnixNano()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			items, err := s.fetchItems(ctx, checklistID, watermark)
			if err != nil {
				continue // transient; next tick retries
			}
			for _, it := range items {
				if at := it.UpdatedAt.UnixNano(); at > watermark {
					watermark = at
				}
				onRemoteChange(it)
			}
		}
	}
}

const itemSelect = `
	SELECT id, title, COALESCE(description, ''), category, priority,
	       is_completed, completed_at, estimated_minutes, actual_minutes,
	       COALESCE(notes, ''), verification_method, verification_status, verified_at,
	       created_at, updated_at
	FROM checklist_items`

// fetchItems returns a checklist's items in position order. When since is
// non-zero only items updated after that instant are returned.
func (s *ChecklistStore) fetchItems(ctx context.Context, checklistID string, since int64) ([]checklist.Item, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		itemSelect+` WHERE checklist_id = ? AND updated_at > ? ORDER BY position`,
		checklistID, since)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]checklist.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (checklist.Item, error) {
	var (
		it                              checklist.Item
		isCompleted                     int
		completedAt, verifiedAt         sql.NullInt64
		estimatedMinutes, actualMinutes sql.NullInt64
		verificationMethod, verificationStatus sql.NullString
		createdAt, updatedAt            int64
	)

	err := row.Scan(&it.ID, &it.Title, &it.Description, &it.Category, &it.Priority,
		&isCompleted, &completedAt, &estimatedMinutes, &actualMinutes,
		&it.Notes, &verificationMethod, &verificationStatus, &verifiedAt,
		&createdAt, &updatedAt)
	if err != nil {
		return checklist.Item{}, err
	}

	it.IsCompleted = isCompleted != 0
	if completedAt.Valid {
		at := time.Unix(0, completedAt.Int64)
		it.CompletedAt = &at
	}
	if estimatedMinutes.Valid {
		m := int(estimatedMinutes.Int64)
		it.EstimatedMinutes = &m
	}
	if actualMinutes.Valid {
		m := int(actualMinutes.Int64)
		it.ActualMinutes = &m
	}
	if verificationMethod.Valid {
		v := &checklist.Verification{
			Method: checklist.VerificationMethod(verificationMethod.String),
			Status: checklist.VerificationStatus(verificationStatus.String),
		}
		if verifiedAt.Valid {
			at := time.Unix(0, verifiedAt.Int64)
			v.VerifiedAt = &at
		}
		it.Verification = v
	}
	it.CreatedAt = time.Unix(0, createdAt)
	it.UpdatedAt = time.Unix(0, updatedAt)

	return it, nil
}

func insertItem(ctx context.Context, tx *sql.Tx, checklistID string, position int, it checklist.Item) error {
	var (
		completedAt, verifiedAt             sql.NullInt64
		verificationMethod, verificationStatus sql.NullString
	)
	if it.CompletedAt != nil {
		completedAt = sql.NullInt64{Int64: it.CompletedAt.UnixNano(), Valid: true}
	}
	if v := it.Verification; v != nil {
		verificationMethod = toNullString(string(v.Method))
		verificationStatus = toNullString(string(v.Status))
		if v.VerifiedAt != nil {
			verifiedAt = sql.NullInt64{Int64: v.VerifiedAt.UnixNano(), Valid: true}
		}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO checklist_items (id, checklist_id, position, title, description, category, priority,
			is_completed, completed_at, estimated_minutes, actual_minutes, notes,
			verification_method, verification_status, verified_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, checklistID, position, it.Title, toNullString(it.Description),
		string(it.Category), string(it.Priority),
		boolToInt(it.IsCompleted), completedAt, toNullInt(it.EstimatedMinutes), toNullInt(it.ActualMinutes),
		toNullString(it.Notes), verificationMethod, verificationStatus, verifiedAt,
		it.CreatedAt.UnixNano(), it.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert item %s: %w", it.ID, err)
	}
	return nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toNullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
