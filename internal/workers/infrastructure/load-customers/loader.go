// Package loadcustomers reads and validates the customer list at startup.
package loadcustomers

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "news-intel/internal/common/errors"
	"news-intel/internal/common/logger"
	"news-intel/internal/common/validation"
	"news-intel/internal/models"
)

const customersSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["name", "email", "topic_query", "interests"],
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"email": {"type": "string", "minLength": 3},
			"topic_query": {"type": "string", "minLength": 1},
			"interests": {"type": "string", "minLength": 1}
		}
	}
}`

type Loader struct {
	logger logger.Logger
}

func NewLoader(log logger.Logger) *Loader {
	return &Loader{logger: log}
}

// Load reads the customer list at path. A missing, unreadable or invalid file
// is a ConfigError.
func (l *Loader) Load(path string) ([]models.Customer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("read customers file %s", path), err)
	}

	res, err := validation.ValidateDocument(customersSchema, data)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("customers file %s is not valid JSON", path), err)
	}
	if !res.Valid {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("customers file %s: %s", path, strings.Join(res.GetErrorMessages(), "; ")), nil)
	}

	var customers []models.Customer
	if err := json.Unmarshal(data, &customers); err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("decode customers file %s", path), err)
	}

	for i := range customers {
		c := &customers[i]
		c.Name = strings.TrimSpace(c.Name)
		c.Email = strings.TrimSpace(c.Email)
		c.TopicQuery = strings.TrimSpace(c.TopicQuery)

		if res := validation.ValidateStruct(c); !res.Valid {
			return nil, apperrors.NewConfigError(
				fmt.Sprintf("customer %d (%s): %s", i, c.Name, strings.Join(res.GetErrorMessages(), "; ")), nil)
		}
	}

	if len(customers) == 0 {
		l.logger.Warn("customers file has no entries", map[string]interface{}{"path": path})
	} else {
		l.logger.Info("loaded customers", map[string]interface{}{
			"path":      path,
			"customers": len(customers),
		})
	}
	return customers, nil
}
