package asset

import (
	"github.com/go-playground/validator/v10"
)

type AssetCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
	KitID       *string `json:"kit_id" validate:"omitempty,uuid4"`
}

func (req *AssetCreateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}

type KitCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

func (req *KitCreateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}
