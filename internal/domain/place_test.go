package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPlace(t *testing.T) {
	p := NewPlace("Gukbap House", "Seoul Jung-gu 1", Coordinate{Lon: 126.97, Lat: 37.56}, "음식점 > 한식 > 국밥")

	assert.Equal(t, "Gukbap House", p.Name)
	assert.Equal(t, "Seoul Jung-gu 1", p.FullAddress)
	assert.Equal(t, 126.97, p.Coordinate.Lon)
	assert.Equal(t, 37.56, p.Coordinate.Lat)
	assert.Equal(t, "음식점 > 한식 > 국밥", p.CategoryLabel)
}

func TestPlace_DisplayName(t *testing.T) {
	assert.Equal(t, "Seoul Jung-gu 1 (City Hall)", Place{Name: "City Hall", FullAddress: "Seoul Jung-gu 1"}.DisplayName())
	assert.Equal(t, "Seoul Jung-gu 1", Place{FullAddress: "Seoul Jung-gu 1"}.DisplayName())
	assert.Equal(t, "Seoul Jung-gu 1", Place{Name: "Seoul Jung-gu 1", FullAddress: "Seoul Jung-gu 1"}.DisplayName())
}

func TestValidateRadius(t *testing.T) {
	assert.NoError(t, ValidateRadius(DefaultRadiusMeters))
	assert.NoError(t, ValidateRadius(MaxRadiusMeters))
	assert.ErrorIs(t, ValidateRadius(0), ErrInvalidRadius)
	assert.ErrorIs(t, ValidateRadius(-5), ErrInvalidRadius)
	assert.NoError(t, ValidateRadius(MinRadiusMeters))
	assert.ErrorIs(t, ValidateRadius(0.4), ErrInvalidRadius)
	assert.ErrorIs(t, ValidateRadius(0.999), ErrInvalidRadius)
	assert.ErrorIs(t, ValidateRadius(MaxRadiusMeters+1), ErrInvalidRadius)
	assert.ErrorIs(t, ValidateRadius(math.NaN()), ErrInvalidRadius)
}

func TestCoordinate_Validate(t *testing.T) {
	assert.NoError(t, DefaultCenter().Validate())

	err := Coordinate{Lon: 200, Lat: 10}.Validate()
	assert.True(t, errors.Is(err, ErrInvalidCoordinate))
	assert.Equal(t, ErrCodeValidation, CodeOf(err))
}
