package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type reviewInput struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=20"`
	Reason  string `json:"reason" validate:"notblank"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(reviewInput{Rating: 4, Reason: "scratched"}))

	errs := Validate(reviewInput{Rating: 9, Reason: "   "})
	assert.Equal(t, map[string]string{"rating": "max", "reason": "notblank"}, errs)
}
