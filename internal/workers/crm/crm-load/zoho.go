package crmload

import (
	"context"
	"strings"

	"news-intel/internal/common/logger"
	"news-intel/internal/common/zoho"
	"news-intel/internal/models"
)

// ZohoAPI is the part of the Zoho CRM client the snapshot needs.
type ZohoAPI interface {
	ListAccounts(ctx context.Context) ([]zoho.Account, error)
	ListContacts(ctx context.Context) ([]zoho.Contact, error)
}

// ZohoSource builds the snapshot from Zoho Accounts and their Contacts.
type ZohoSource struct {
	client ZohoAPI
	logger logger.Logger
}

func NewZohoSource(deps ServiceDependencies, client ZohoAPI) *ZohoSource {
	return &ZohoSource{client: client, logger: deps.Logger}
}

func (s *ZohoSource) Name() string { return "zoho" }

func (s *ZohoSource) Load(ctx context.Context) (*models.CRMBook, error) {
	accounts, err := s.client.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	contacts, err := s.client.ListContacts(ctx)
	if err != nil {
		return nil, err
	}

	byAccount := make(map[string][]models.Contact)
	for _, c := range contacts {
		key := strings.ToLower(strings.TrimSpace(c.AccountName()))
		if key == "" || c.FullName == "" {
			continue
		}
		byAccount[key] = append(byAccount[key], models.Contact{Name: c.FullName, Role: c.Title})
	}

	book := models.NewCRMBook()
	for _, a := range accounts {
		book.Add(a.Name, models.CRMRecord{
			RelationshipStrength: a.RelationshipStrength,
			KeyContacts:          byAccount[strings.ToLower(strings.TrimSpace(a.Name))],
		})
	}

	s.logger.Info("loaded CRM data", map[string]interface{}{
		"source":    s.Name(),
		"companies": book.Len(),
		"contacts":  len(contacts),
	})
	return book, nil
}
