package address

import "github.com/bastiangx/addrserve/pkg/region"

// Record is the structured form of one address. Text holds whatever the
// stages did not consume, followed by any bracketed annotations.
type Record struct {
	Raw  string
	Text string

	Province *region.Region
	City     *region.Region
	County   *region.Region

	ProvinceInferred bool
	CityInferred     bool
	CountyInferred   bool

	// Towns lists street offices, towns and townships in text order.
	Towns       []string
	Village     string
	Road        string
	RoadNum     string
	BuildingNum string

	notes []string
}

// Interpreted reports whether province, city and county are all known.
func (r *Record) Interpreted() bool {
	return r.Province != nil && r.City != nil && r.County != nil
}

// Division returns the region levels of r.
func (r *Record) Division() region.Division {
	return region.Division{
		Province:         r.Province,
		City:             r.City,
		County:           r.County,
		ProvinceInferred: r.ProvinceInferred,
		CityInferred:     r.CityInferred,
		CountyInferred:   r.CountyInferred,
	}
}

func (r *Record) setDivision(d region.Division) {
	r.Province, r.City, r.County = d.Province, d.City, d.County
	r.ProvinceInferred = d.ProvinceInferred
	r.CityInferred = d.CityInferred
	r.CountyInferred = d.CountyInferred
}

func (r *Record) addTown(t string) {
	if t == "" {
		return
	}
	for _, existing := range r.Towns {
		if existing == t {
			return
		}
	}
	r.Towns = append(r.Towns, t)
}

// View is the wire form of a Record, shared by the server, the cache and
// the bulk command.
type View struct {
	Raw         string   `msgpack:"raw" json:"raw"`
	Text        string   `msgpack:"text" json:"text"`
	Interpreted bool     `msgpack:"ok" json:"interpreted"`
	ProvinceID  int64    `msgpack:"pid,omitempty" json:"province_id,omitempty"`
	Province    string   `msgpack:"p,omitempty" json:"province,omitempty"`
	CityID      int64    `msgpack:"cid,omitempty" json:"city_id,omitempty"`
	City        string   `msgpack:"c,omitempty" json:"city,omitempty"`
	CountyID    int64    `msgpack:"did,omitempty" json:"county_id,omitempty"`
	County      string   `msgpack:"d,omitempty" json:"county,omitempty"`
	Inferred    []string `msgpack:"inf,omitempty" json:"inferred,omitempty"`
	Towns       []string `msgpack:"towns,omitempty" json:"towns,omitempty"`
	Village     string   `msgpack:"village,omitempty" json:"village,omitempty"`
	Road        string   `msgpack:"road,omitempty" json:"road,omitempty"`
	RoadNum     string   `msgpack:"road_num,omitempty" json:"road_num,omitempty"`
	BuildingNum string   `msgpack:"building,omitempty" json:"building_num,omitempty"`
}

// View flattens r for encoding.
func (r *Record) View() View {
	v := View{
		Raw:         r.Raw,
		Text:        r.Text,
		Interpreted: r.Interpreted(),
		Towns:       r.Towns,
		Village:     r.Village,
		Road:        r.Road,
		RoadNum:     r.RoadNum,
		BuildingNum: r.BuildingNum,
	}
	if r.Province != nil {
		v.ProvinceID, v.Province = r.Province.ID, r.Province.Name
		if r.ProvinceInferred {
			v.Inferred = append(v.Inferred, "province")
		}
	}
	if r.City != nil {
		v.CityID, v.City = r.City.ID, r.City.Name
		if r.CityInferred {
			v.Inferred = append(v.Inferred, "city")
		}
	}
	if r.County != nil {
		v.CountyID, v.County = r.County.ID, r.County.Name
		if r.CountyInferred {
			v.Inferred = append(v.Inferred, "county")
		}
	}
	return v
}
