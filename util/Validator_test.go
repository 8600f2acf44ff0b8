package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type phonePayload struct {
	Phone string `validate:"required,phone"`
}

func TestValidateStruct_Phone(t *testing.T) {
	for _, ok := range []string{"0901234567", "+4915112345678", "123456"} {
		assert.NoError(t, ValidateStruct(&phonePayload{Phone: ok}), ok)
	}
	for _, bad := range []string{"", "12345", "09-0123-4567", "+", "phone", "1234567890123456"} {
		assert.Error(t, ValidateStruct(&phonePayload{Phone: bad}), bad)
	}
}
