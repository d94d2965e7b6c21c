package template

import "strings"

// cityRegion resolves a sender city to its region. Covers the manufacturing
// regions seen on inbound manifests; unknown cities resolve to nothing.
var cityRegion = map[string]string{
	"shenzhen":  "Guangdong",
	"guangzhou": "Guangdong",
	"dongguan":  "Guangdong",
	"foshan":    "Guangdong",
	"zhuhai":    "Guangdong",
	"hangzhou":  "Zhejiang",
	"ningbo":    "Zhejiang",
	"yiwu":      "Zhejiang",
	"wenzhou":   "Zhejiang",
	"suzhou":    "Jiangsu",
	"nanjing":   "Jiangsu",
	"wuxi":      "Jiangsu",
	"shanghai":  "Shanghai",
	"beijing":   "Beijing",
	"xiamen":    "Fujian",
	"quanzhou":  "Fujian",
	"fuzhou":    "Fujian",
	"qingdao":   "Shandong",
	"jinan":     "Shandong",
	"chengdu":   "Sichuan",
}

// regionAbbr resolves a region to the two-letter code the template wants.
var regionAbbr = map[string]string{
	"Guangdong": "GD",
	"Zhejiang":  "ZJ",
	"Jiangsu":   "JS",
	"Shanghai":  "SH",
	"Beijing":   "BJ",
	"Fujian":    "FJ",
	"Shandong":  "SD",
	"Sichuan":   "SC",
}

// RegionAbbr derives the two-letter region code for a city via the two-stage
// city-to-region, region-to-abbreviation lookup. Either stage missing yields
// an empty string; this is best-effort enrichment, not validation.
func RegionAbbr(city string) string {
	region, ok := cityRegion[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		return ""
	}
	return regionAbbr[region]
}
