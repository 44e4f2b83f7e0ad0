package crmload

import (
	"context"
	"database/sql"

	apperrors "news-intel/internal/common/errors"
	"news-intel/internal/common/logger"
	"news-intel/internal/models"
)

// Contacts are listed in priority order so the first row per company is the top contact.
const crmSnapshotQuery = `
	SELECT c.name, c.relationship_strength, k.name, k.role
	FROM crm_companies c
	LEFT JOIN crm_contacts k ON k.company_id = c.id
	ORDER BY c.position, c.id, k.priority, k.id`

// PostgresSource reads crm_companies and crm_contacts in a single query.
type PostgresSource struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresSource(deps ServiceDependencies, db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db, logger: deps.Logger}
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) Load(ctx context.Context) (*models.CRMBook, error) {
	rows, err := s.db.QueryContext(ctx, crmSnapshotQuery)
	if err != nil {
		return nil, apperrors.NewTransportError("crm snapshot query", err)
	}
	defer rows.Close()

	// Accumulate per company first so contacts attach to the right record.
	type pending struct {
		name   string
		record models.CRMRecord
	}
	var order []string
	companies := make(map[string]*pending)

	for rows.Next() {
		var (
			company     string
			strength    int
			contactName sql.NullString
			contactRole sql.NullString
		)
		if err := rows.Scan(&company, &strength, &contactName, &contactRole); err != nil {
			return nil, apperrors.NewParseError("crm snapshot row", err)
		}

		p, ok := companies[company]
		if !ok {
			p = &pending{name: company, record: models.CRMRecord{RelationshipStrength: strength}}
			companies[company] = p
			order = append(order, company)
		}
		if contactName.Valid && contactName.String != "" {
			p.record.KeyContacts = append(p.record.KeyContacts, models.Contact{
				Name: contactName.String,
				Role: contactRole.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewTransportError("crm snapshot query", err)
	}

	book := models.NewCRMBook()
	for _, company := range order {
		book.Add(companies[company].name, companies[company].record)
	}

	s.logger.Info("loaded CRM data", map[string]interface{}{
		"source":    s.Name(),
		"companies": book.Len(),
	})
	return book, nil
}
