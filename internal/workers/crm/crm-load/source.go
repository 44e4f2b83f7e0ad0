// Package crmload reads the CRM snapshot once at startup from a file, a
// Postgres table pair or the Zoho CRM API.
package crmload

import (
	"context"
	"fmt"

	"news-intel/internal/common/config"
	"news-intel/internal/common/database"
	apperrors "news-intel/internal/common/errors"
	"news-intel/internal/common/logger"
	"news-intel/internal/common/zoho"
	"news-intel/internal/models"
)

// Source produces a CRM snapshot.
type Source interface {
	Load(ctx context.Context) (*models.CRMBook, error)
	Name() string
}

type ServiceDependencies struct {
	Logger logger.Logger
}

// NewSource picks the source configured under crm.source. The returned closer
// releases any connection the source holds.
func NewSource(ctx context.Context, deps ServiceDependencies, cfg *config.Config) (Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.CRM.Source {
	case config.CRMSourceFile, "":
		return NewFileSource(deps, cfg.Inputs.CRMFile), noop, nil
	case config.CRMSourcePostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, noop, err
		}
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return nil, noop, apperrors.NewTransportError("postgres ping", err)
		}
		return NewPostgresSource(deps, pg.DB), pg.Close, nil
	case config.CRMSourceZoho:
		client := zoho.NewCRMClient(cfg.Integrations.Zoho.BaseURL, cfg.Integrations.Zoho.AuthToken)
		return NewZohoSource(deps, client), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown crm source %q", cfg.CRM.Source)
	}
}
