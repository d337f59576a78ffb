package region

import "time"

// SeedSource tags every built-in record.
const SeedSource = "mock"

// SeedUpdatedAt is the lastUpdated stamp of the built-in dataset.
var SeedUpdatedAt = time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)

// CitySeed describes a metropolitan city.
type CitySeed struct {
	ID          string
	Code        string
	Name        string
	AddressHint string
	Aliases     []string
	Center      GeoPoint
	LawdCode    string
}

// GuSeed describes a district belonging to CityID.
type GuSeed struct {
	ID          string
	Code        string
	CityID      string
	Name        string
	AddressHint string
	Aliases     []string
	Center      GeoPoint
	LawdCode    string
}

// Alias maps free text to a record id.
type Alias struct {
	Text     string
	RegionID string
}

var (
	cityBaseline = Metrics{AgingScore: 68, InfraRisk: 66, MarketScore: 64, PolicyFit: 70}
	guBaseline   = Metrics{AgingScore: 72, InfraRisk: 70, MarketScore: 66, PolicyFit: 74}
)

var citySeeds = []CitySeed{
	{ID: "seoul", Code: "seoul", Name: "서울특별시", AddressHint: "서울", Aliases: []string{"서울", "서울특별시", "seoul"}, Center: GeoPoint{Lat: 37.5665, Lng: 126.978}, LawdCode: "11110"},
	{ID: "busan", Code: "busan", Name: "부산광역시", AddressHint: "부산", Aliases: []string{"부산", "부산광역시", "busan"}, Center: GeoPoint{Lat: 35.1796, Lng: 129.0756}, LawdCode: "26110"},
	{ID: "daegu", Code: "daegu", Name: "대구광역시", AddressHint: "대구", Aliases: []string{"대구", "대구광역시", "daegu"}, Center: GeoPoint{Lat: 35.8714, Lng: 128.6014}, LawdCode: "27110"},
	{ID: "incheon", Code: "incheon", Name: "인천광역시", AddressHint: "인천", Aliases: []string{"인천", "인천광역시", "incheon"}, Center: GeoPoint{Lat: 37.4563, Lng: 126.7052}, LawdCode: "28110"},
	{ID: "gwangju", Code: "gwangju", Name: "광주광역시", AddressHint: "광주", Aliases: []string{"광주", "광주광역시", "gwangju"}, Center: GeoPoint{Lat: 35.1595, Lng: 126.8526}, LawdCode: "29110"},
	{ID: "daejeon", Code: "daejeon", Name: "대전광역시", AddressHint: "대전", Aliases: []string{"대전", "대전광역시", "daejeon"}, Center: GeoPoint{Lat: 36.3504, Lng: 127.3845}, LawdCode: "30110"},
	{ID: "ulsan", Code: "ulsan", Name: "울산광역시", AddressHint: "울산", Aliases: []string{"울산", "울산광역시", "ulsan"}, Center: GeoPoint{Lat: 35.5384, Lng: 129.3114}, LawdCode: "31110"},
	{ID: "jeju", Code: "jeju", Name: "제주특별자치도", AddressHint: "제주", Aliases: []string{"제주", "제주도", "제주특별자치도", "jeju"}, Center: GeoPoint{Lat: 33.4996, Lng: 126.5312}, LawdCode: "50110"},
}

var seoulGuSeeds = []GuSeed{
	{ID: "seoul-jongno-gu", Code: "jongno-gu", CityID: "seoul", Name: "서울 종로구", AddressHint: "종로구", Aliases: []string{"종로구", "jongno-gu", "jongno"}, Center: GeoPoint{Lat: 37.5735, Lng: 126.979}, LawdCode: "11110"},
	{ID: "seoul-jung-gu", Code: "jung-gu-seoul", CityID: "seoul", Name: "서울 중구", AddressHint: "중구", Aliases: []string{"서울중구", "중구서울", "jung-gu-seoul"}, Center: GeoPoint{Lat: 37.5641, Lng: 126.9979}, LawdCode: "11140"},
	{ID: "seoul-yongsan-gu", Code: "yongsan-gu", CityID: "seoul", Name: "서울 용산구", AddressHint: "용산구", Aliases: []string{"용산구", "yongsan-gu", "yongsan"}, Center: GeoPoint{Lat: 37.5325, Lng: 126.9905}, LawdCode: "11170"},
	{ID: "seoul-seongdong-gu", Code: "seongdong-gu", CityID: "seoul", Name: "서울 성동구", AddressHint: "성동구", Aliases: []string{"성동구", "seongdong-gu", "seongdong"}, Center: GeoPoint{Lat: 37.5633, Lng: 127.0365}, LawdCode: "11200"},
	{ID: "seoul-gwangjin-gu", Code: "gwangjin-gu", CityID: "seoul", Name: "서울 광진구", AddressHint: "광진구", Aliases: []string{"광진구", "gwangjin-gu", "gwangjin"}, Center: GeoPoint{Lat: 37.5384, Lng: 127.0822}, LawdCode: "11215"},
	{ID: "seoul-dongdaemun-gu", Code: "dongdaemun-gu", CityID: "seoul", Name: "서울 동대문구", AddressHint: "동대문구", Aliases: []string{"동대문구", "dongdaemun-gu", "dongdaemun"}, Center: GeoPoint{Lat: 37.5744, Lng: 127.0395}, LawdCode: "11230"},
	{ID: "seoul-jungnang-gu", Code: "jungnang-gu", CityID: "seoul", Name: "서울 중랑구", AddressHint: "중랑구", Aliases: []string{"중랑구", "jungnang-gu", "jungnang"}, Center: GeoPoint{Lat: 37.6063, Lng: 127.0927}, LawdCode: "11260"},
	{ID: "seoul-seongbuk-gu", Code: "seongbuk-gu", CityID: "seoul", Name: "서울 성북구", AddressHint: "성북구", Aliases: []string{"성북구", "seongbuk-gu", "seongbuk"}, Center: GeoPoint{Lat: 37.5894, Lng: 127.0167}, LawdCode: "11290"},
	{ID: "seoul-gangbuk-gu", Code: "gangbuk-gu", CityID: "seoul", Name: "서울 강북구", AddressHint: "강북구", Aliases: []string{"강북구", "gangbuk-gu", "gangbuk"}, Center: GeoPoint{Lat: 37.6396, Lng: 127.0257}, LawdCode: "11305"},
	{ID: "seoul-dobong-gu", Code: "dobong-gu", CityID: "seoul", Name: "서울 도봉구", AddressHint: "도봉구", Aliases: []string{"도봉구", "dobong-gu", "dobong"}, Center: GeoPoint{Lat: 37.6688, Lng: 127.0471}, LawdCode: "11320"},
	{ID: "seoul-nowon-gu", Code: "nowon-gu", CityID: "seoul", Name: "서울 노원구", AddressHint: "노원구", Aliases: []string{"노원구", "nowon-gu", "nowon"}, Center: GeoPoint{Lat: 37.6542, Lng: 127.0568}, LawdCode: "11350"},
	{ID: "seoul-eunpyeong-gu", Code: "eunpyeong-gu", CityID: "seoul", Name: "서울 은평구", AddressHint: "은평구", Aliases: []string{"은평구", "eunpyeong-gu", "eunpyeong"}, Center: GeoPoint{Lat: 37.6027, Lng: 126.9291}, LawdCode: "11380"},
	{ID: "seoul-seodaemun-gu", Code: "seodaemun-gu", CityID: "seoul", Name: "서울 서대문구", AddressHint: "서대문구", Aliases: []string{"서대문구", "seodaemun-gu", "seodaemun"}, Center: GeoPoint{Lat: 37.5791, Lng: 126.9368}, LawdCode: "11410"},
	{ID: "seoul-mapo-gu", Code: "mapo-gu", CityID: "seoul", Name: "서울 마포구", AddressHint: "마포구", Aliases: []string{"마포구", "mapo-gu", "mapo"}, Center: GeoPoint{Lat: 37.5663, Lng: 126.9019}, LawdCode: "11440"},
	{ID: "seoul-yangcheon-gu", Code: "yangcheon-gu", CityID: "seoul", Name: "서울 양천구", AddressHint: "양천구", Aliases: []string{"양천구", "yangcheon-gu", "yangcheon"}, Center: GeoPoint{Lat: 37.517, Lng: 126.8665}, LawdCode: "11470"},
	{ID: "seoul-gangseo-gu", Code: "gangseo-gu-seoul", CityID: "seoul", Name: "서울 강서구", AddressHint: "강서구", Aliases: []string{"서울강서구", "강서구서울", "gangseo-gu-seoul"}, Center: GeoPoint{Lat: 37.5509, Lng: 126.8495}, LawdCode: "11500"},
	{ID: "seoul-guro-gu", Code: "guro-gu", CityID: "seoul", Name: "서울 구로구", AddressHint: "구로구", Aliases: []string{"구로구", "guro-gu", "guro"}, Center: GeoPoint{Lat: 37.4955, Lng: 126.8876}, LawdCode: "11530"},
	{ID: "seoul-geumcheon-gu", Code: "geumcheon-gu", CityID: "seoul", Name: "서울 금천구", AddressHint: "금천구", Aliases: []string{"금천구", "geumcheon-gu", "geumcheon"}, Center: GeoPoint{Lat: 37.4569, Lng: 126.8955}, LawdCode: "11545"},
	{ID: "seoul-yeongdeungpo-gu", Code: "yeongdeungpo-gu", CityID: "seoul", Name: "서울 영등포구", AddressHint: "영등포구", Aliases: []string{"영등포구", "yeongdeungpo-gu", "yeongdeungpo"}, Center: GeoPoint{Lat: 37.5264, Lng: 126.8962}, LawdCode: "11560"},
	{ID: "seoul-dongjak-gu", Code: "dongjak-gu", CityID: "seoul", Name: "서울 동작구", AddressHint: "동작구", Aliases: []string{"동작구", "dongjak-gu", "dongjak"}, Center: GeoPoint{Lat: 37.5124, Lng: 126.9393}, LawdCode: "11590"},
	{ID: "seoul-gwanak-gu", Code: "gwanak-gu", CityID: "seoul", Name: "서울 관악구", AddressHint: "관악구", Aliases: []string{"관악구", "gwanak-gu", "gwanak"}, Center: GeoPoint{Lat: 37.4781, Lng: 126.9515}, LawdCode: "11620"},
	{ID: "seoul-seocho-gu", Code: "seocho-gu", CityID: "seoul", Name: "서울 서초구", AddressHint: "서초구", Aliases: []string{"서초구", "seocho-gu", "seocho"}, Center: GeoPoint{Lat: 37.4837, Lng: 127.0324}, LawdCode: "11650"},
	{ID: "seoul-gangnam-gu", Code: "gangnam-gu", CityID: "seoul", Name: "서울 강남구", AddressHint: "강남구", Aliases: []string{"강남구", "gangnam-gu", "gangnam"}, Center: GeoPoint{Lat: 37.5172, Lng: 127.0473}, LawdCode: "11680"},
	{ID: "seoul-songpa-gu", Code: "songpa-gu", CityID: "seoul", Name: "서울 송파구", AddressHint: "송파구", Aliases: []string{"송파구", "songpa-gu", "songpa"}, Center: GeoPoint{Lat: 37.5145, Lng: 127.1066}, LawdCode: "11710"},
	{ID: "seoul-gangdong-gu", Code: "gangdong-gu", CityID: "seoul", Name: "서울 강동구", AddressHint: "강동구", Aliases: []string{"강동구", "gangdong-gu", "gangdong"}, Center: GeoPoint{Lat: 37.53, Lng: 127.1238}, LawdCode: "11740"},
}

var metroGuSeeds = []GuSeed{
	{ID: "busan-haeundae-gu", Code: "haeundae-gu", CityID: "busan", Name: "부산 해운대구", AddressHint: "해운대구", Aliases: []string{"부산해운대구", "해운대구", "haeundae-gu", "haeundae"}, Center: GeoPoint{Lat: 35.1632, Lng: 129.1636}, LawdCode: "26350"},
	{ID: "busan-busanjin-gu", Code: "busanjin-gu", CityID: "busan", Name: "부산 부산진구", AddressHint: "부산진구", Aliases: []string{"부산진구", "busanjin-gu", "busanjin"}, Center: GeoPoint{Lat: 35.1628, Lng: 129.0533}, LawdCode: "26230"},
	{ID: "busan-nam-gu", Code: "nam-gu-busan", CityID: "busan", Name: "부산 남구", AddressHint: "남구", Aliases: []string{"부산남구", "남구부산", "nam-gu-busan"}, Center: GeoPoint{Lat: 35.1366, Lng: 129.0846}, LawdCode: "26290"},
	{ID: "daegu-suseong-gu", Code: "suseong-gu", CityID: "daegu", Name: "대구 수성구", AddressHint: "수성구", Aliases: []string{"수성구", "suseong-gu", "suseong"}, Center: GeoPoint{Lat: 35.8586, Lng: 128.6306}, LawdCode: "27260"},
	{ID: "daegu-dalseo-gu", Code: "dalseo-gu", CityID: "daegu", Name: "대구 달서구", AddressHint: "달서구", Aliases: []string{"달서구", "dalseo-gu", "dalseo"}, Center: GeoPoint{Lat: 35.8297, Lng: 128.5324}, LawdCode: "27290"},
	{ID: "incheon-yeonsu-gu", Code: "yeonsu-gu", CityID: "incheon", Name: "인천 연수구", AddressHint: "연수구", Aliases: []string{"연수구", "yeonsu-gu", "yeonsu"}, Center: GeoPoint{Lat: 37.4102, Lng: 126.6788}, LawdCode: "28185"},
	{ID: "incheon-namdong-gu", Code: "namdong-gu", CityID: "incheon", Name: "인천 남동구", AddressHint: "남동구", Aliases: []string{"남동구", "namdong-gu", "namdong"}, Center: GeoPoint{Lat: 37.4473, Lng: 126.7315}, LawdCode: "28200"},
	{ID: "incheon-bupyeong-gu", Code: "bupyeong-gu", CityID: "incheon", Name: "인천 부평구", AddressHint: "부평구", Aliases: []string{"부평구", "bupyeong-gu", "bupyeong"}, Center: GeoPoint{Lat: 37.507, Lng: 126.7218}, LawdCode: "28237"},
	{ID: "gwangju-buk-gu", Code: "buk-gu-gwangju", CityID: "gwangju", Name: "광주 북구", AddressHint: "북구", Aliases: []string{"광주북구", "북구광주", "buk-gu-gwangju"}, Center: GeoPoint{Lat: 35.1742, Lng: 126.9112}, LawdCode: "29170"},
	{ID: "gwangju-gwangsan-gu", Code: "gwangsan-gu", CityID: "gwangju", Name: "광주 광산구", AddressHint: "광산구", Aliases: []string{"광산구", "gwangsan-gu", "gwangsan"}, Center: GeoPoint{Lat: 35.139, Lng: 126.793}, LawdCode: "29200"},
	{ID: "daejeon-yuseong-gu", Code: "yuseong-gu", CityID: "daejeon", Name: "대전 유성구", AddressHint: "유성구", Aliases: []string{"유성구", "yuseong-gu", "yuseong"}, Center: GeoPoint{Lat: 36.3623, Lng: 127.3569}, LawdCode: "30200"},
	{ID: "daejeon-seo-gu", Code: "seo-gu-daejeon", CityID: "daejeon", Name: "대전 서구", AddressHint: "서구", Aliases: []string{"대전서구", "서구대전", "seo-gu-daejeon"}, Center: GeoPoint{Lat: 36.3554, Lng: 127.3838}, LawdCode: "30170"},
	{ID: "ulsan-nam-gu", Code: "nam-gu-ulsan", CityID: "ulsan", Name: "울산 남구", AddressHint: "남구", Aliases: []string{"울산남구", "남구울산", "nam-gu-ulsan"}, Center: GeoPoint{Lat: 35.5438, Lng: 129.3302}, LawdCode: "31140"},
	{ID: "ulsan-buk-gu", Code: "buk-gu-ulsan", CityID: "ulsan", Name: "울산 북구", AddressHint: "북구", Aliases: []string{"울산북구", "북구울산", "buk-gu-ulsan"}, Center: GeoPoint{Lat: 35.5825, Lng: 129.3613}, LawdCode: "31170"},
}

func specialRegions() []Region {
	return []Region{
		{
			ID:             "gangnam-daechi",
			Code:           "gangnam-daechi",
			Name:           "서울 강남구 대치동",
			Level:          LevelDong,
			ParentRegionID: "seoul-gangnam-gu",
			AddressHint:    "서울 강남구 대치동",
			Center:         GeoPoint{Lat: 37.4992, Lng: 127.0635},
			LawdCode:       "11680",
			BuildingLookup: &BuildingLookup{SigunguCd: "11680", BjdongCd: "10600", PlatGbCd: "0", Bun: "0001", Ji: "0000"},
			Metrics:        Metrics{AgingScore: 82, InfraRisk: 74, MarketScore: 68, PolicyFit: 77},
			Source:         SeedSource,
			LastUpdated:    SeedUpdatedAt,
		},
		{
			ID:             "gangbuk-target",
			Code:           "gangbuk-target",
			Name:           "서울 강북구 미아 정비구역",
			Level:          LevelGu,
			ParentRegionID: "seoul",
			AddressHint:    "서울 강북구 미아",
			Center:         GeoPoint{Lat: 37.6266, Lng: 127.0261},
			LawdCode:       "11305",
			BuildingLookup: &BuildingLookup{SigunguCd: "11305", BjdongCd: "10300", PlatGbCd: "0", Bun: "0001", Ji: "0000"},
			Metrics:        Metrics{AgingScore: 91, InfraRisk: 88, MarketScore: 54, PolicyFit: 95},
			Source:         SeedSource,
			LastUpdated:    SeedUpdatedAt,
		},
	}
}

// SeedRecords returns the built-in records (cities, districts, then special
// sub-regions) and the alias list in index-build order.
func SeedRecords() ([]Region, []Alias) {
	var (
		records []Region
		aliases []Alias
	)

	for _, s := range citySeeds {
		records = append(records, Region{
			ID:          s.ID,
			Code:        s.Code,
			Name:        s.Name,
			Level:       LevelCity,
			AddressHint: s.AddressHint,
			Center:      s.Center,
			LawdCode:    s.LawdCode,
			Metrics:     cityBaseline,
			Source:      SeedSource,
			LastUpdated: SeedUpdatedAt,
		})
		for _, a := range s.Aliases {
			aliases = append(aliases, Alias{Text: a, RegionID: s.ID})
		}
	}

	gus := append(append([]GuSeed{}, seoulGuSeeds...), metroGuSeeds...)
	for _, s := range gus {
		records = append(records, Region{
			ID:             s.ID,
			Code:           s.Code,
			Name:           s.Name,
			Level:          LevelGu,
			ParentRegionID: s.CityID,
			AddressHint:    s.AddressHint,
			Center:         s.Center,
			LawdCode:       s.LawdCode,
			Metrics:        guBaseline,
			Source:         SeedSource,
			LastUpdated:    SeedUpdatedAt,
		})
		for _, a := range s.Aliases {
			aliases = append(aliases, Alias{Text: a, RegionID: s.ID})
		}
	}

	records = append(records, specialRegions()...)
	aliases = append(aliases,
		Alias{Text: "강남구 대치동", RegionID: "gangnam-daechi"},
		Alias{Text: "대치동", RegionID: "gangnam-daechi"},
		Alias{Text: "미아 정비구역", RegionID: "gangbuk-target"},
	)

	return records, aliases
}

//Personal.AI order the ending
