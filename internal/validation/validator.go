package validation

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var once sync.Once

// Register adds the coordinate validators to gin's binding engine so that
// `binding:"latitude"` and `binding:"longitude"` tags can be used on request
// structs. Safe to call more than once.
func Register() error {
	var err error
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		if err = v.RegisterValidation("latitude", validateLatitude); err != nil {
			return
		}
		err = v.RegisterValidation("longitude", validateLongitude)
	})
	return err
}

func validateLatitude(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()
	return lat >= -90 && lat <= 90
}

func validateLongitude(fl validator.FieldLevel) bool {
	lon := fl.Field().Float()
	return lon >= -180 && lon <= 180
}
