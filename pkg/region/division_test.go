package region_test

import (
	"testing"

	"github.com/bastiangx/addrserve/internal/fixture"
	"github.com/bastiangx/addrserve/pkg/region"
	"github.com/stretchr/testify/assert"
)

func TestDivisionSetCountyFillsAncestors(t *testing.T) {
	cat := fixture.Catalog()

	var d region.Division
	d.SetCounty(cat, cat.Get(440184))

	assert.True(t, d.Complete())
	assert.Equal(t, int64(440000), d.Province.ID)
	assert.Equal(t, int64(440100), d.City.ID)
	assert.True(t, d.ProvinceInferred)
	assert.True(t, d.CityInferred)
	assert.False(t, d.CountyInferred)
	assert.Equal(t, int64(440184), d.Least().ID)
}

func TestDivisionCityLevelCounty(t *testing.T) {
	cat := fixture.Catalog()

	var d region.Division
	d.SetProvince(cat.Get(650000))
	d.SetCity(cat, cat.Get(652900))
	d.SetCounty(cat, cat.Get(659002))

	assert.Equal(t, int64(650000), d.Province.ID)
	assert.Equal(t, int64(659002), d.City.ID)
	assert.Equal(t, int64(659002), d.County.ID)
	assert.False(t, d.ProvinceInferred)
	assert.False(t, d.CityInferred)
}

func TestDivisionSetProvinceClearsDeeperLevels(t *testing.T) {
	cat := fixture.Catalog()

	var d region.Division
	d.SetCounty(cat, cat.Get(130322))
	d.SetProvince(cat.Get(370000))

	assert.Equal(t, int64(370000), d.Province.ID)
	assert.Nil(t, d.City)
	assert.Nil(t, d.County)
	assert.False(t, d.HasCity())
	assert.Equal(t, int64(370000), d.Least().ID)
}

func TestDivisionMunicipality(t *testing.T) {
	cat := fixture.Catalog()

	var d region.Division
	d.SetProvince(cat.Get(110000))
	d.SetCounty(cat, cat.Get(110105))

	assert.Equal(t, int64(110000), d.Province.ID)
	assert.False(t, d.ProvinceInferred)
	assert.Equal(t, int64(110100), d.City.ID)
	assert.True(t, d.CityInferred)

	other := region.Division{Province: cat.Get(110000), City: cat.Get(110100)}
	assert.True(t, d.Same(other))
	assert.True(t, d.Contains(cat.Get(110105)))
	assert.False(t, d.Contains(cat.Get(130322)))
}
