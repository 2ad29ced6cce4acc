package user

import (
	"context"

	userModel "asset-booking/models/user"

	"gorm.io/gorm"
)

// Directory answers identity questions the booking engine has about
// registered users.
type Directory struct {
	DB *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{DB: db}
}

// ByUUID resolves a user from the uuid claim in their token.
func (d *Directory) ByUUID(ctx context.Context, uuid string) (*userModel.User, error) {
	var u userModel.User
	if err := d.DB.WithContext(ctx).Where("uuid = ?", uuid).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// AdminEmails returns the notification targets for an organization's
// admins and managers.
func (d *Directory) AdminEmails(ctx context.Context, orgID uint) ([]string, error) {
	var emails []string
	err := d.DB.WithContext(ctx).
		Model(&userModel.User{}).
		Where("organization_id = ? AND role IN ? AND email IS NOT NULL", orgID,
			[]userModel.Role{userModel.RoleAdmin, userModel.RoleManager}).
		Pluck("email", &emails).Error
	return emails, err
}
