package domain

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"unicode"
)

func TestIsValidCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		// A股
		{name: "正常_沪市主板", code: "600519", want: true},
		{name: "正常_沪市601", code: "601318", want: true},
		{name: "正常_沪市603", code: "603259", want: true},
		{name: "正常_沪市605", code: "605111", want: true},
		{name: "正常_深市主板", code: "000001", want: true},
		{name: "正常_深市001", code: "001979", want: true},
		{name: "正常_中小板", code: "002594", want: true},
		{name: "正常_创业板", code: "300750", want: true},
		{name: "正常_创业板301", code: "301236", want: true},
		{name: "正常_科创板", code: "688981", want: true},
		{name: "正常_科创板689", code: "689009", want: true},
		{name: "正常_北交所830", code: "830799", want: true},
		{name: "正常_北交所833", code: "833171", want: true},
		{name: "正常_新三板430", code: "430047", want: true},
		{name: "正常_新三板420", code: "420001", want: true},
		{name: "异常_前缀700未登记", code: "700000", want: false},
		{name: "异常_前缀930未登记", code: "930000", want: false},
		{name: "异常_前缀123未登记", code: "123456", want: false},
		// 港股
		{name: "正常_港股腾讯", code: "00700", want: true},
		{name: "正常_港股任意前缀", code: "99999", want: true},
		// 美股
		{name: "正常_美股大写", code: "AAPL", want: true},
		{name: "正常_美股小写", code: "tsla", want: true},
		{name: "正常_美股单字母", code: "F", want: true},
		{name: "正常_美股五字母", code: "GOOGL", want: true},
		// 无效格式
		{name: "异常_八位数字", code: "12345678", want: false},
		{name: "异常_四位数字", code: "6005", want: false},
		{name: "异常_六位字母", code: "ABCDEF", want: false},
		{name: "异常_字母数字混合", code: "600A19", want: false},
		{name: "异常_含符号", code: "600-519", want: false},
		{name: "异常_空字符串", code: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidCode(tt.code); got != tt.want {
				t.Errorf("IsValidCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

// referenceValid 独立实现的校验参照，用于随机性质测试交叉验证
func referenceValid(code string) bool {
	allDigits := code != "" && strings.IndexFunc(code, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
	allLetters := code != "" && strings.IndexFunc(code, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	}) < 0

	if allDigits && len(code) == 6 {
		for _, p := range []string{
			"600", "601", "603", "605", "000", "001", "002",
			"300", "301", "688", "689", "830", "831", "832", "833",
			"430", "420",
		} {
			if strings.HasPrefix(code, p) {
				return true
			}
		}
		return false
	}
	if allDigits && len(code) == 5 {
		return true
	}
	return allLetters && len(code) >= 1 && len(code) <= 5
}

func TestIsValidCode_RandomProperty(t *testing.T) {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		length := 1 + rng.Intn(7)
		b := make([]byte, length)
		for j := range b {
			b[j] = alphabet[rng.Intn(len(alphabet))]
		}
		code := string(b)

		if got, want := IsValidCode(code), referenceValid(code); got != want {
			t.Fatalf("IsValidCode(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestValidateCodes(t *testing.T) {
	tests := []struct {
		name  string
		codes []string
		want  []string
	}{
		{
			name:  "正常_全部有效",
			codes: []string{"600519", "000001", "00700", "AAPL"},
			want:  []string{"600519", "000001", "00700", "AAPL"},
		},
		{
			name:  "正常_过滤无效代码",
			codes: []string{"600519", "930000", "12345678", "000001"},
			want:  []string{"600519", "000001"},
		},
		{
			name:  "正常_去重保留首次出现",
			codes: []string{"600519", "000001", "600519", "000001"},
			want:  []string{"600519", "000001"},
		},
		{
			name:  "正常_去除首尾空白",
			codes: []string{" 600519 ", "\t000001\n"},
			want:  []string{"600519", "000001"},
		},
		{
			name:  "正常_空白后重复视为同一代码",
			codes: []string{"600519", " 600519"},
			want:  []string{"600519"},
		},
		{
			name:  "正常_美股保留原始大小写",
			codes: []string{"tsla", "AAPL"},
			want:  []string{"tsla", "AAPL"},
		},
		{
			name:  "异常_全部无效",
			codes: []string{"700000", "abc123", ""},
			want:  []string{},
		},
		{
			name:  "异常_空列表",
			codes: []string{},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateCodes(tt.codes)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ValidateCodes(%v) = %v, want %v", tt.codes, got, tt.want)
			}
		})
	}
}

func TestValidateCodes_Idempotent(t *testing.T) {
	inputs := [][]string{
		{"600519", "000001", "00700", "AAPL"},
		{"600519", "600519", " 000001", "930000", "tsla"},
		{"", "abc123", "12345678"},
	}

	for _, input := range inputs {
		once := ValidateCodes(input)
		twice := ValidateCodes(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("ValidateCodes 不幂等: 第一次 %v, 第二次 %v", once, twice)
		}
	}
}
