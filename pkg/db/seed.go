package db

import (
	"os"

	"github.com/google/uuid"
	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedFile is the on-disk shape of the reference-data seed.
type SeedFile struct {
	Priorities []struct {
		Name string `yaml:"name"`
		Rank int    `yaml:"rank"`
	} `yaml:"priorities"`
	Complexities []struct {
		Name string `yaml:"name"`
		Rank int    `yaml:"rank"`
	} `yaml:"complexities"`
	Workcenters []struct {
		Code string `yaml:"code"`
		Name string `yaml:"name"`
	} `yaml:"workcenters"`
}

// Seed loads reference data from the YAML file at path. Existing rows
// are matched by their unique name or code, so seeding is idempotent.
func Seed(conn *gorm.DB, path string) error {
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read seed file")
	}

	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return errors.Wrap(err, "failed to parse seed file")
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		for _, p := range seed.Priorities {
			row := models.Priority{ID: uuid.New(), Name: p.Name, Rank: p.Rank}
			if err := tx.Where("name = ?", p.Name).FirstOrCreate(&row).Error; err != nil {
				return err
			}
		}

		for _, c := range seed.Complexities {
			row := models.Complexity{ID: uuid.New(), Name: c.Name, Rank: c.Rank}
			if err := tx.Where("name = ?", c.Name).FirstOrCreate(&row).Error; err != nil {
				return err
			}
		}

		for _, w := range seed.Workcenters {
			row := models.Workcenter{ID: uuid.New(), Code: w.Code, Name: w.Name}
			if err := tx.Where("code = ?", w.Code).FirstOrCreate(&row).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
