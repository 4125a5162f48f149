package repositories

import (
	"errors"

	"kvr/userdb/internal/models"

	"gorm.io/gorm"
)

// Column describes one live column of the users table: its name and the
// type the database declares for it. The descriptor is read per request so
// columns added out-of-band by cmd/addcolumn appear without a restart.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Columns reads the current column set of the users table, in table order.
func (r *UserRepository) Columns() ([]Column, error) {
	types, err := r.DB.Migrator().ColumnTypes(&models.User{})
	if err != nil {
		return nil, err
	}
	columns := make([]Column, 0, len(types))
	for _, t := range types {
		columns = append(columns, Column{Name: t.Name(), Type: t.DatabaseTypeName()})
	}
	return columns, nil
}

// ListAll returns every row with every live column, internal id included.
// The admin console renders whatever comes back, so nothing is filtered.
func (r *UserRepository) ListAll() ([]map[string]any, error) {
	rows := []map[string]any{}
	err := r.DB.Table(models.User{}.TableName()).Order("id").Find(&rows).Error
	return rows, err
}

// GetRow reads one user as a raw column map.
func (r *UserRepository) GetRow(username string) (map[string]any, error) {
	row := map[string]any{}
	err := r.DB.Table(models.User{}.TableName()).Where("username = ?", username).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return row, err
}

// CreateFromMap inserts a row from an already-filtered column map.
func (r *UserRepository) CreateFromMap(values map[string]any) error {
	err := r.DB.Table(models.User{}.TableName()).Create(values).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// UpdateFromMap applies an already-filtered column map to one user, keyed by
// username.
func (r *UserRepository) UpdateFromMap(username string, updates map[string]any) error {
	result := r.DB.Table(models.User{}.TableName()).Where("username = ?", username).Updates(updates)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
