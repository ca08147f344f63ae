package repositories

import (
	"errors"
	"fmt"
	"time"

	"fiber-mes/controllers/idgen"
	"fiber-mes/models"
	"fiber-mes/services"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// percentageTolerance is how far the ingredient percentage sum may deviate
// from 100 and still lock.
var percentageTolerance = decimal.NewFromFloat(0.01)

var oneHundred = decimal.NewFromInt(100)

type FormulationRepository struct {
	db *gorm.DB
}

func NewFormulationRepository(db *gorm.DB) *FormulationRepository {
	return &FormulationRepository{db}
}

func (r *FormulationRepository) Create(formulation *models.Formulation) error {
	if formulation.ID == 0 {
		formulation.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return r.db.Create(formulation).Error
}

func (r *FormulationRepository) Get(id types.SnowflakeID) (*models.Formulation, error) {
	var formulation models.Formulation
	err := r.db.
		Preload("Versions", func(db *gorm.DB) *gorm.DB { return db.Order("version_number") }).
		Preload("Versions.Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&formulation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &formulation, nil
}

func (r *FormulationRepository) List() ([]models.Formulation, error) {
	var formulations []models.Formulation
	err := r.db.
		Preload("Versions", func(db *gorm.DB) *gorm.DB { return db.Order("version_number") }).
		Order("name").Find(&formulations).Error
	if err != nil {
		return nil, err
	}
	return formulations, nil
}

// Version loads one formulation version with its ingredients in declared
// order. Implements services.FormulationSource.
func (r *FormulationRepository) Version(id types.SnowflakeID) (*models.FormulationVersion, error) {
	var version models.FormulationVersion
	err := r.db.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&version, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

// CreateVersion authors a new draft with the next monotonic version number
// for the formulation.
func (r *FormulationRepository) CreateVersion(formulationID types.SnowflakeID, ingredients []models.Ingredient, createdBy int) (*models.FormulationVersion, error) {
	var version *models.FormulationVersion

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Formulation{}).Where("id = ?", formulationID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return services.ErrNotFound
		}

		var maxVersion int
		row := tx.Model(&models.FormulationVersion{}).
			Where("formulation_id = ?", formulationID).
			Select("COALESCE(MAX(version_number), 0)").
			Row()
		if err := row.Scan(&maxVersion); err != nil {
			return err
		}

		version = &models.FormulationVersion{
			ID:            types.SnowflakeID(idgen.GenerateID()),
			FormulationID: formulationID,
			VersionNumber: maxVersion + 1,
			CreatedBy:     createdBy,
		}
		for i := range ingredients {
			ingredients[i].ID = 0
			ingredients[i].FormulationVersionID = version.ID
			ingredients[i].Position = i + 1
		}
		version.Ingredients = ingredients

		return tx.Create(version).Error
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

// Lock makes a version immutable and production-eligible. The percentage sum
// must land on 100 within tolerance; the downstream batch math assumes it.
func (r *FormulationRepository) Lock(versionID types.SnowflakeID, userID int) (*models.FormulationVersion, error) {
	var version *models.FormulationVersion

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var v models.FormulationVersion
		err := tx.
			Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
			First(&v, "id = ?", versionID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.ErrNotFound
			}
			return err
		}
		if v.Locked {
			return fmt.Errorf("%w: version %d is already locked", services.ErrInvalidInput, v.VersionNumber)
		}
		if len(v.Ingredients) == 0 {
			return fmt.Errorf("%w: cannot lock a version without ingredients", services.ErrInvalidInput)
		}
		if sum := v.PercentageSum(); sum.Sub(oneHundred).Abs().GreaterThan(percentageTolerance) {
			return fmt.Errorf("%w: ingredient percentages sum to %s, expected 100", services.ErrInvalidInput, sum)
		}

		now := time.Now()
		res := tx.Model(&models.FormulationVersion{}).
			Where("id = ? AND locked = ?", versionID, false).
			Updates(map[string]interface{}{"locked": true, "locked_at": now, "locked_by": userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: version %d is already locked", services.ErrInvalidInput, v.VersionNumber)
		}

		v.Locked = true
		v.LockedAt = &now
		v.LockedBy = userID
		version = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

// Rollback copies a historical version's ingredient list into a fresh draft
// with the next version number.
func (r *FormulationRepository) Rollback(formulationID types.SnowflakeID, versionNumber int, userID int) (*models.FormulationVersion, error) {
	var source models.FormulationVersion
	err := r.db.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&source, "formulation_id = ? AND version_number = ?", formulationID, versionNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}

	copied := make([]models.Ingredient, len(source.Ingredients))
	for i, ing := range source.Ingredients {
		copied[i] = models.Ingredient{
			MaterialID:   ing.MaterialID,
			MaterialName: ing.MaterialName,
			Percentage:   ing.Percentage,
			Unit:         ing.Unit,
			Notes:        ing.Notes,
		}
	}

	return r.CreateVersion(formulationID, copied, userID)
}
