package crmload

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	apperrors "news-intel/internal/common/errors"
	"news-intel/internal/common/logger"
	"news-intel/internal/common/validation"
	"news-intel/internal/models"
)

const crmSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"properties": {
			"relationship_strength": {"type": "integer"},
			"key_contacts": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["name", "role"],
					"properties": {
						"name": {"type": "string"},
						"role": {"type": "string"}
					}
				}
			}
		}
	}
}`

// FileSource reads a {"Company": {relationship_strength, key_contacts}} JSON file.
type FileSource struct {
	path   string
	logger logger.Logger
}

func NewFileSource(deps ServiceDependencies, path string) *FileSource {
	return &FileSource{path: path, logger: deps.Logger}
}

func (s *FileSource) Name() string { return "file" }

// Load returns an empty book with a warning when the file does not exist.
func (s *FileSource) Load(_ context.Context) (*models.CRMBook, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("CRM file not found, running without CRM insights", map[string]interface{}{
				"path": s.path,
			})
			return models.NewCRMBook(), nil
		}
		return nil, apperrors.NewConfigError(fmt.Sprintf("read CRM file %s", s.path), err)
	}

	res, err := validation.ValidateDocument(crmSchema, data)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("CRM file %s is not valid JSON", s.path), err)
	}
	if !res.Valid {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("CRM file %s: %s", s.path, strings.Join(res.GetErrorMessages(), "; ")), nil)
	}

	book := models.NewCRMBook()
	if err := json.Unmarshal(data, book); err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("decode CRM file %s", s.path), err)
	}

	s.logger.Info("loaded CRM data", map[string]interface{}{
		"path":      s.path,
		"companies": book.Len(),
	})
	return book, nil
}
