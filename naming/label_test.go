package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLabel(t *testing.T) {
	patterns := DefaultPatterns()
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"strict full-width marker stops at comma", "申请人：张三，男，1980年生", "张三", true},
		{"interior space collapsed", "申请人：张 三，男", "张三", true},
		{"half-width colon full-width comma", "申请人:李四，女", "李四", true},
		{"full-width colon ascii comma", "申请人：王五,男", "王五", true},
		{"ascii colon ascii comma", "申请人:赵六,女", "赵六", true},
		{"spaced marker stops at sex", "申 请 人 ： 孙七 男 ，", "孙七", true},
		{"spaced marker name with spaces", "申 请 人: 周  八，", "周八", true},
		{"loose pattern stops at comma", "申 请 人:吴九 先生,", "吴九先生", true},
		{"ideographic space inside name", "申请人：郑　十，男", "郑十", true},
		{"surrounding whitespace trimmed", "申请人：  钱一  ，", "钱一", true},
		{"no marker", "被申请人信息缺失", "", false},
		{"marker without terminator", "申请人：", "", false},
		{"empty text", "   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractLabel(tt.text, patterns)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractLabelStrictPatternWins(t *testing.T) {
	patterns := DefaultPatterns()
	got, ok := ExtractLabel("申请人：张三，男", patterns)
	require.True(t, ok)
	assert.Equal(t, "张三", got)

	// The loosest pattern alone would run past the sex marker.
	loose := patterns[len(patterns)-1:]
	got, ok = ExtractLabel("申请人：张三男，", loose)
	require.True(t, ok)
	assert.Equal(t, "张三男", got)

	got, ok = ExtractLabel("申请人：张三男，", patterns)
	require.True(t, ok)
	assert.Equal(t, "张三男", got, "strict pattern one still matches first")

	got, ok = ExtractLabel("申 请 人：张三男，", patterns)
	require.True(t, ok)
	assert.Equal(t, "张三", got, "spaced marker falls to the sex-terminated pattern")
}

func TestExtractLabelFirstMatchEndsSearch(t *testing.T) {
	// Pattern one matches a blank name; later patterns must not be tried.
	got, ok := ExtractLabel("申请人：　，申请人:张三,", DefaultPatterns())
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestNewPatternsCustomTerminators(t *testing.T) {
	patterns := NewPatterns("男女]")
	require.Len(t, patterns, 7)
	got, ok := ExtractLabel("申 请 人：张三]", patterns)
	require.True(t, ok)
	assert.Equal(t, "张三", got)

	got, ok = ExtractLabel("申 请 人：张三男", NewPatterns(""))
	assert.False(t, ok, "without terminators a comma is required: %q", got)
}

func TestCollapse(t *testing.T) {
	assert.Equal(t, "张三", collapse(" 张 \t三\n"))
	assert.Equal(t, "张三", collapse("张\v三"))
	assert.Equal(t, "", collapse(" 　 "))
}
