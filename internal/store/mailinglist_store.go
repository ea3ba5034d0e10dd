package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maxking/archive-reader/internal/model"
)

// GetOrCreateMailingList returns the mailing list stored under url,
// creating it from defaults when absent. Subscribing twice to the same
// list therefore never produces a second row.
func (s *SQLiteStore) GetOrCreateMailingList(
	ctx context.Context,
	url string,
	defaults model.MailingList,
) (*model.MailingList, bool, error) {
	var ml model.MailingList
	err := s.db.GetContext(ctx, &ml,
		"SELECT * FROM mailinglist WHERE url = ?", url,
	)
	if err == nil {
		return &ml, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("querying mailing list %s: %w", url, err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO mailinglist (
			url, name, display_name, description,
			subject_prefix, archive_policy, created_at,
			threads_url, emails_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		url, defaults.Name, defaults.DisplayName, defaults.Description,
		defaults.SubjectPrefix, defaults.ArchivePolicy, defaults.CreatedAt.UTC(),
		defaults.ThreadsURL, defaults.EmailsURL,
	)
	if err != nil {
		return nil, false, fmt.Errorf("creating mailing list %s: %w", url, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("reading mailing list row id: %w", err)
	}

	ml = defaults
	ml.ID = id
	ml.URL = url
	return &ml, true, nil
}

// ListMailingLists returns all subscribed mailing lists ordered by name.
func (s *SQLiteStore) ListMailingLists(ctx context.Context) ([]model.MailingList, error) {
	var lists []model.MailingList
	err := s.db.SelectContext(ctx, &lists,
		"SELECT * FROM mailinglist ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("querying mailing lists: %w", err)
	}
	return lists, nil
}
