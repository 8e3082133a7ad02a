package util

import "testing"

// TestValidateEmail_Valid 有效邮箱
func TestValidateEmail_Valid(t *testing.T) {
	testCases := []string{
		"user@example.com",
		"a.b_c@mail.co.id",
		"x+tag@domain.org",
	}

	for _, email := range testCases {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) error = %v, want nil", email, err)
		}
	}
}

// TestValidateEmail_Invalid 无效邮箱（异常）
func TestValidateEmail_Invalid(t *testing.T) {
	testCases := []string{
		"",
		"plainaddress",
		"@no-local.com",
		"user@",
		"user @space.com",
		"user@nodot",
	}

	for _, email := range testCases {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) error = nil, want error", email)
		}
	}
}

// TestNormalizeKind 大小写统一成小写，非法取值报错
func TestNormalizeKind(t *testing.T) {
	valid := map[string]string{
		"income":  "income",
		"Income":  "income",
		"OUTCOME": "outcome",
		" outcome ": "outcome",
	}
	for in, want := range valid {
		got, err := NormalizeKind(in)
		if err != nil {
			t.Errorf("NormalizeKind(%q) error = %v, want nil", in, err)
			continue
		}
		if got != want {
			t.Errorf("NormalizeKind(%q) = %q, want %q", in, got, want)
		}
	}

	for _, in := range []string{"", "expense", "INCOME1", "both"} {
		if _, err := NormalizeKind(in); err == nil {
			t.Errorf("NormalizeKind(%q) error = nil, want error", in)
		}
	}
}

// TestParseDate 三种支持的格式都能解析
func TestParseDate(t *testing.T) {
	valid := []string{
		"2024-03-05",
		"2024-03-05T10:30:00",
		"2024-03-05T10:30:00+07:00",
	}
	for _, s := range valid {
		if _, err := ParseDate(s); err != nil {
			t.Errorf("ParseDate(%q) error = %v, want nil", s, err)
		}
	}

	invalid := []string{
		"",
		"05-03-2024",
		"2024/03/05",
		"not-a-date",
	}
	for _, s := range invalid {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) error = nil, want error", s)
		}
	}
}

// TestParseMonthYear 月份年份参数校验
func TestParseMonthYear(t *testing.T) {
	year, month, err := ParseMonthYear("3", "2024")
	if err != nil {
		t.Fatalf("ParseMonthYear error = %v, want nil", err)
	}
	if year != 2024 || month != 3 {
		t.Errorf("got %d-%d, want 2024-3", year, month)
	}

	invalid := [][2]string{
		{"", "2024"},  // 缺 month
		{"3", ""},     // 缺 year
		{"0", "2024"}, // 月份越界
		{"13", "2024"},
		{"3", "999"},
		{"abc", "2024"},
	}
	for _, tc := range invalid {
		if _, _, err := ParseMonthYear(tc[0], tc[1]); err == nil {
			t.Errorf("ParseMonthYear(%q, %q) error = nil, want error", tc[0], tc[1])
		}
	}
}

// TestValidateCategory 分类名校验
func TestValidateCategory(t *testing.T) {
	if err := ValidateCategory("food"); err != nil {
		t.Errorf("ValidateCategory(\"food\") error = %v, want nil", err)
	}
	if err := ValidateCategory(""); err == nil {
		t.Error("ValidateCategory(\"\") error = nil, want error")
	}

	long := make([]rune, 65)
	for i := range long {
		long[i] = 'x'
	}
	if err := ValidateCategory(string(long)); err == nil {
		t.Error("ValidateCategory() with 65 chars error = nil, want error")
	}
}
