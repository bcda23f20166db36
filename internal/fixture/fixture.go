// Package fixture provides a small region catalog with real administrative
// ids for tests across packages.
package fixture

import (
	"github.com/bastiangx/addrserve/pkg/index"
	"github.com/bastiangx/addrserve/pkg/region"
)

// StopWords are indexed as noise terms in the fixture index.
var StopWords = []string{"中国", "中华人民共和国"}

// Records returns the fixture catalog in flat form.
func Records() []region.Record {
	return []region.Record{
		{ID: 1, ParentID: 0, Type: region.Country, Name: "中国"},

		{ID: 110000, ParentID: 1, Type: region.ProvinceLevelCity1, Name: "北京市", Alias: []string{"北京"}},
		{ID: 110100, ParentID: 110000, Type: region.ProvinceLevelCity2, Name: "北京市", Alias: []string{"北京"}},
		{ID: 110105, ParentID: 110100, Type: region.County, Name: "朝阳区", Alias: []string{"朝阳"}},

		{ID: 130000, ParentID: 1, Type: region.Province, Name: "河北省", Alias: []string{"河北"}},
		{ID: 130300, ParentID: 130000, Type: region.City, Name: "秦皇岛市", Alias: []string{"秦皇岛"}},
		{ID: 130302, ParentID: 130300, Type: region.County, Name: "海港区", Alias: []string{"海港"}},
		{ID: 130322, ParentID: 130300, Type: region.County, Name: "昌黎县", Alias: []string{"昌黎"}},
		{ID: 130322100, ParentID: 130322, Type: region.Town, Name: "昌黎镇"},

		{ID: 220000, ParentID: 1, Type: region.Province, Name: "吉林省", Alias: []string{"吉林"}},
		{ID: 220200, ParentID: 220000, Type: region.City, Name: "吉林市", Alias: []string{"吉林"}},
		{ID: 220202, ParentID: 220200, Type: region.County, Name: "昌邑区", Alias: []string{"昌邑"}},

		{ID: 350000, ParentID: 1, Type: region.Province, Name: "福建省", Alias: []string{"福建"}},
		{ID: 350900, ParentID: 350000, Type: region.City, Name: "宁德市", Alias: []string{"宁德"}},
		{ID: 350902, ParentID: 350900, Type: region.County, Name: "蕉城区", Alias: []string{"蕉城"}},

		{ID: 370000, ParentID: 1, Type: region.Province, Name: "山东省", Alias: []string{"山东"}},
		{ID: 370200, ParentID: 370000, Type: region.City, Name: "青岛市", Alias: []string{"青岛"}},
		{ID: 370202, ParentID: 370200, Type: region.County, Name: "市南区", Alias: []string{"市南"}},
		{ID: 370203, ParentID: 370200, Type: region.County, Name: "市北区", Alias: []string{"市北"}},
		{ID: 370900, ParentID: 370000, Type: region.City, Name: "泰安市", Alias: []string{"泰安"}},
		{ID: 370983, ParentID: 370900, Type: region.County, Name: "肥城市", Alias: []string{"肥城"}},

		{ID: 440000, ParentID: 1, Type: region.Province, Name: "广东省", Alias: []string{"广东"}},
		{ID: 440100, ParentID: 440000, Type: region.City, Name: "广州市", Alias: []string{"广州"}},
		{ID: 440106, ParentID: 440100, Type: region.County, Name: "天河区", Alias: []string{"天河"}},
		{ID: 440184, ParentID: 440100, Type: region.County, Name: "从化区", Alias: []string{"从化"}},

		{ID: 610000, ParentID: 1, Type: region.Province, Name: "陕西省", Alias: []string{"陕西"}},
		{ID: 610600, ParentID: 610000, Type: region.City, Name: "延安市", Alias: []string{"延安"}},
		{ID: 610602, ParentID: 610600, Type: region.County, Name: "宝塔区", Alias: []string{"宝塔"}},

		{ID: 630000, ParentID: 1, Type: region.Province, Name: "青海省", Alias: []string{"青海"}},
		{ID: 632800, ParentID: 630000, Type: region.City, Name: "海西蒙古族藏族自治州", Alias: []string{"海西", "海西州"}},
		{ID: 632801, ParentID: 632800, Type: region.County, Name: "格尔木市", Alias: []string{"格尔木"}},

		{ID: 650000, ParentID: 1, Type: region.Province, Name: "新疆维吾尔自治区", Alias: []string{"新疆"}},
		{ID: 652900, ParentID: 650000, Type: region.City, Name: "阿克苏地区", Alias: []string{"阿克苏"}},
		{ID: 652901, ParentID: 652900, Type: region.County, Name: "阿克苏市", Alias: []string{"阿克苏"}},
		{ID: 659002, ParentID: 650000, Type: region.CityLevelCounty, Name: "阿拉尔市", Alias: []string{"阿拉尔"}},
	}
}

// Catalog builds the fixture catalog and panics on error.
func Catalog() *region.Catalog {
	cat, err := region.NewCatalog(Records())
	if err != nil {
		panic(err)
	}
	return cat
}

// Index builds the fixture catalog and its term index.
func Index() (*region.Catalog, *index.TermIndex) {
	cat := Catalog()
	idx, err := index.Build(cat, StopWords)
	if err != nil {
		panic(err)
	}
	return cat, idx
}
