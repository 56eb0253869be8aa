package domain

import (
	"regexp"
	"strings"
)

var (
	sixDigitPattern  = regexp.MustCompile(`^[0-9]{6}$`)
	fiveDigitPattern = regexp.MustCompile(`^[0-9]{5}$`)
	usTickerPattern  = regexp.MustCompile(`^[A-Z]{1,5}$`)
)

// aSharePrefixes A股有效代码前缀
var aSharePrefixes = []string{
	"600", "601", "603", "605", // 沪市主板
	"000", "001", "002", // 深市主板/中小板
	"300", "301", // 创业板
	"688", "689", // 科创板
	"830", "831", "832", "833", // 北交所
	"430", "420", // 新三板
}

// IsValidCode 检查是否为有效的股票代码
//
// 规则：A股为 6 位数字且前缀在登记表内；港股为 5 位数字；
// 美股为 1-5 位字母（大小写不敏感）。
func IsValidCode(code string) bool {
	// A股：6位数字，前缀必须登记在册
	if sixDigitPattern.MatchString(code) {
		for _, prefix := range aSharePrefixes {
			if strings.HasPrefix(code, prefix) {
				return true
			}
		}
		return false
	}

	// 港股：5位数字，无前缀限制
	if fiveDigitPattern.MatchString(code) {
		return true
	}

	// 美股：1-5位字母，仅校验时转大写，输出保留原始大小写
	return usTickerPattern.MatchString(strings.ToUpper(code))
}

// ValidateCodes 验证并清理候选代码列表
//
// 逐个去除首尾空白，按首次出现顺序去重，再按市场规则过滤；
// 输出顺序与输入顺序一致，对任意输入幂等。
func ValidateCodes(codes []string) []string {
	validCodes := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))

	for _, code := range codes {
		code = strings.TrimSpace(code)

		if _, ok := seen[code]; ok {
			continue
		}

		if IsValidCode(code) {
			validCodes = append(validCodes, code)
			seen[code] = struct{}{}
		}
	}

	return validCodes
}
