package usecase

import (
	"encoding/json"
	"errors"
	"regexp"

	"stock-assistant-app/internal/modules/ocr/domain"
)

// ErrNoValidCode 两阶段解析均未提取到有效代码
var ErrNoValidCode = errors.New("未能识别到有效的股票代码")

var (
	// codesObjectPattern 提取模型响应中包含 codes 键的单层 JSON 对象，
	// 不处理嵌套花括号，匹配失败时落入正则兜底
	codesObjectPattern = regexp.MustCompile(`\{[^{}]*"codes"[^{}]*\}`)

	aShareCodePattern = regexp.MustCompile(`\b[0-9]{6}\b`)
	hkCodePattern     = regexp.MustCompile(`\b[0-9]{5}\b`)
)

// parseResponse 解析模型响应，提取股票代码
//
// 第一阶段尝试结构化提取：隔离 {"codes": [...], "count": N} 形状的
// JSON 子串并解码，codes 非空时直接送入市场规则校验，不再进入第二阶段。
// 第二阶段对原始文本做 6 位、5 位数字的正则扫描，逐个校验去重。
func parseResponse(responseText string) ([]string, error) {
	if jsonStr := codesObjectPattern.FindString(responseText); jsonStr != "" {
		var result struct {
			Codes []string `json:"codes"`
		}
		if err := json.Unmarshal([]byte(jsonStr), &result); err == nil && len(result.Codes) > 0 {
			return domain.ValidateCodes(result.Codes), nil
		}
	}

	// JSON 解析失败，尝试正则提取
	if codes := extractCodesByRegex(responseText); len(codes) > 0 {
		return codes, nil
	}

	return nil, ErrNoValidCode
}

// extractCodesByRegex 使用正则表达式从文本中提取股票代码
//
// 先扫 6 位数字（A股），再扫 5 位数字（港股），逐个命中即校验，
// 仅保留有效且未出现过的代码，顺序为首次命中顺序。
func extractCodesByRegex(text string) []string {
	var codes []string
	seen := make(map[string]struct{})

	for _, pattern := range []*regexp.Regexp{aShareCodePattern, hkCodePattern} {
		for _, code := range pattern.FindAllString(text, -1) {
			if _, ok := seen[code]; ok {
				continue
			}
			if domain.IsValidCode(code) {
				codes = append(codes, code)
				seen[code] = struct{}{}
			}
		}
	}

	return codes
}
