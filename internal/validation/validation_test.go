package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Phone string `json:"phone" validate:"required,digits=11"`
	DOB   string `json:"dob" validate:"required,date"`
}

func TestDigits(t *testing.T) {
	assert.NoError(t, Struct(sample{Phone: "03001234567", DOB: "1990-01-01"}))

	for _, phone := range []string{"0300123456", "030012345678", "0300-123456", "+3001234567"} {
		err := Struct(sample{Phone: phone, DOB: "1990-01-01"})
		require.Error(t, err, phone)

		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, "phone", verrs[0].Field())
		assert.Equal(t, "digits", verrs[0].Tag())
	}
}

func TestDate(t *testing.T) {
	for _, dob := range []string{"1990-01-01", "2025-03-04T10:30", "2025-03-04T10:30:00Z"} {
		assert.NoError(t, Struct(sample{Phone: "03001234567", DOB: dob}), dob)
	}
	assert.Error(t, Struct(sample{Phone: "03001234567", DOB: "01/02/1990"}))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("yesterday")
	assert.Error(t, err)
}

func TestParseDay(t *testing.T) {
	got, err := ParseDay(" 2025-03-04 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), got)

	for _, s := range []string{"2025-03-04T10:00:00Z", "2025-03-04T10:00", "04/03/2025", ""} {
		_, err := ParseDay(s)
		assert.Error(t, err, s)
	}
}
