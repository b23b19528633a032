package validation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// BindAndValidate binds JSON body into `out` and runs validation.
// If validation fails, it writes a 400 response and returns an error for the handler to short-circuit.
func BindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate) error {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid_request_body",
			"msg":   err.Error(),
		})
		return err
	}

	if err := Struct(v, out); err != nil {
		WriteFieldErrors(c, err)
		return err
	}
	return nil
}

// WriteFieldErrors writes a 400 validation_failed response for err.
func WriteFieldErrors(c *gin.Context, err error) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation_failed",
			"fields": fe,
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error": "validation_failed",
		"msg":   err.Error(),
	})
}
