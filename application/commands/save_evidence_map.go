package commands

import (
	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/pkg/utils"
)

// SaveEvidenceMapCommand replaces the stored map of a case
type SaveEvidenceMapCommand struct {
	CaseID   string              `json:"case_id" validate:"required,max=200"`
	Document aggregates.Document `json:"document"`
}

// Validate validates the command
func (c SaveEvidenceMapCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	_, err := valueobjects.ParseCaseID(c.CaseID)
	return err
}
