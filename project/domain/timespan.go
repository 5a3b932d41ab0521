package domain

import (
	"regexp"
	"strconv"
	"time"
)

// spanPattern は期間トークンのパターンです
// トークン全体の形式検証ではなく、文字列中のどこにあっても最初の一致を採用します
var spanPattern = regexp.MustCompile(`(\d+)([smhd])`)

// spanUnits は期間単位ごとの乗数です
var spanUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// ParseSpan は "10m" や "2h" のような期間トークンを time.Duration へ変換します
// 数字+単位（s/m/h/d）のパターンが見つからない場合は false を返します
// 値 0 は有効で、遅延なしのタスクとして扱われます
func ParseSpan(token string) (time.Duration, bool) {
	m := spanPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, false
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		// 桁あふれなどでパースできない場合は一致なし扱い
		return 0, false
	}

	return time.Duration(n) * spanUnits[m[2]], true
}
