package course

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transcriptHTML(rows ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table><tr><td>
<table><tr><td>学号: 141220000</td></tr></table>
<table>
<tr><th>序号</th><th>课程编号</th><th>课程名称</th><th>英文名称</th><th>类型</th><th>学分</th><th>总评</th></tr>`)
	for _, r := range rows {
		b.WriteString(r)
	}
	b.WriteString(`</table></td></tr></table></body></html>`)
	return b.String()
}

func row(name, label, credit, score string) string {
	return "<tr><td>1</td><td>00000010</td><td>" + name + "</td><td>-</td><td>" + label + "</td><td>" + credit +
		"</td><td>" + score + "</td></tr>"
}

func TestParseTranscript(t *testing.T) {
	html := transcriptHTML(
		row("微积分I", "通修", "5", "91"),
		row("数据结构", "核心", "4", "88.5"),
		row("操作系统", "平台", "4", "79"),
		row(" 中国文化 ", "通识", "2", "85"),
		row("经典导读", "阅读", "0", "90"),
	)

	rows, err := ParseTranscript(strings.NewReader(html))
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, TranscriptRow{Name: "微积分I", Label: "通修", Credit: 5, Score: 91, Category: PublicBasic, Classified: true}, rows[0])
	assert.Equal(t, ProfessionalCore, rows[1].Category)
	assert.Equal(t, 88.5, rows[1].Score)
	assert.Equal(t, ProfessionalBasic, rows[2].Category)
	assert.Equal(t, "中国文化", rows[3].Name)
	assert.Equal(t, General, rows[3].Category)
	assert.False(t, rows[4].Classified)
	assert.Equal(t, "阅读", rows[4].Label)
}

func TestParseTranscript_Errors(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{name: "non-numeric credit", html: transcriptHTML(row("微积分I", "通修", "five", "91"))},
		{name: "non-numeric score", html: transcriptHTML(row("微积分I", "通修", "5", "优秀"))},
		{name: "missing cells", html: transcriptHTML("<tr><td>1</td><td>2</td></tr>")},
		{name: "empty name", html: transcriptHTML(row("", "通修", "5", "91"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTranscript(strings.NewReader(tt.html))
			require.Error(t, err)
			assert.Equal(t, ErrMalformedTranscript, errors.Cause(err))
		})
	}
}

func TestParseTranscript_Empty(t *testing.T) {
	rows, err := ParseTranscript(strings.NewReader("<html><body><p>nothing here</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = ParseTranscript(strings.NewReader(transcriptHTML()))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
