package region

// Division is a resolved province/city/county triple. The Inferred flags mark
// levels derived from a matched descendant instead of matched in the text.
type Division struct {
	Province *Region
	City     *Region
	County   *Region

	ProvinceInferred bool
	CityInferred     bool
	CountyInferred   bool
}

func (d Division) HasProvince() bool { return d.Province != nil }
func (d Division) HasCity() bool     { return d.City != nil }
func (d Division) HasCounty() bool   { return d.County != nil }

// Complete reports whether all three levels are known.
func (d Division) Complete() bool {
	return d.Province != nil && d.City != nil && d.County != nil
}

// Empty reports whether no level is known.
func (d Division) Empty() bool {
	return d.Province == nil && d.City == nil && d.County == nil
}

// Least returns the most specific known level.
func (d Division) Least() *Region {
	switch {
	case d.County != nil:
		return d.County
	case d.City != nil:
		return d.City
	default:
		return d.Province
	}
}

// Contains reports whether r is one of the known levels.
func (d Division) Contains(r *Region) bool {
	if r == nil {
		return false
	}
	return sameRegion(d.Province, r) || sameRegion(d.City, r) || sameRegion(d.County, r)
}

// Same reports whether d and o name the same province and city.
func (d Division) Same(o Division) bool {
	return sameRegion(d.Province, o.Province) && sameRegion(d.City, o.City)
}

func (d *Division) clearBelowProvince() {
	d.City, d.County = nil, nil
	d.CityInferred, d.CountyInferred = false, false
}

// SetProvince records a matched province and forgets deeper levels.
func (d *Division) SetProvince(r *Region) {
	d.Province = r
	d.ProvinceInferred = false
	d.clearBelowProvince()
}

// SetCity records a matched city, forgets the county and back-fills the
// province from the catalog when it is missing or inconsistent.
func (d *Division) SetCity(c *Catalog, r *Region) {
	d.City = r
	d.CityInferred = false
	d.County = nil
	d.CountyInferred = false
	d.fillAncestors(c, r)
}

// SetCounty records a matched county. A CityLevelCounty fills the city level
// with itself; a plain county back-fills city and province from the catalog.
func (d *Division) SetCounty(c *Catalog, r *Region) {
	d.County = r
	d.CountyInferred = false
	if r.Type == CityLevelCounty {
		d.City = r
		d.CityInferred = false
	}
	d.fillAncestors(c, r)
}

func (d *Division) fillAncestors(c *Catalog, r *Region) {
	for p := c.Parent(r); p != nil; p = c.Parent(p) {
		switch {
		case p.Type.IsCityLike() && d.City != r:
			if !sameRegion(d.City, p) {
				d.City = p
				d.CityInferred = true
			}
		case p.Type.IsProvinceLike():
			if !sameRegion(d.Province, p) {
				d.Province = p
				d.ProvinceInferred = true
			}
			return
		}
	}
}

func sameRegion(a, b *Region) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}
