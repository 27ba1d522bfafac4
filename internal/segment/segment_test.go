package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollect(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "chinese punctuation",
			body: "管理员可以批量删除用户账号以便减少维护成本。用户能够导出月度报表！短句。访客需要浏览公开的商品列表；",
			want: []string{
				"管理员可以批量删除用户账号以便减少维护成本",
				"用户能够导出月度报表",
				"访客需要浏览公开的商品列表",
			},
		},
		{
			name: "newlines and blank lines",
			body: "功能需求\n\n  用户可以修改自己的登录密码  \n",
			want: []string{"用户可以修改自己的登录密码"},
		},
		{
			name: "ascii terminators need trailing space",
			body: "Users can upload v1.2 files. Admins need to approve uploads! ok.",
			want: []string{"Users can upload v1.2 files", "Admins need to approve uploads"},
		},
		{
			name: "everything too short",
			body: "短句。也很短！",
			want: nil,
		},
		{
			name: "empty",
			body: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Collect(tt.body))
		})
	}
}

func TestSentences_DropsFragmentsUnderMinimum(t *testing.T) {
	// nine runes, then exactly ten runes
	body := "一二三四五六七八九。一二三四五六七八九十。"

	got := Collect(body)
	assert.Equal(t, []string{"一二三四五六七八九十"}, got)
	for _, s := range got {
		assert.GreaterOrEqual(t, len([]rune(s)), MinSentenceRunes)
	}
}

func TestSentences_Restartable(t *testing.T) {
	seq := Sentences("第一个足够长的候选句子。第二个足够长的候选句子。")

	var first, second []string
	for s := range seq {
		first = append(first, s)
	}
	for s := range seq {
		second = append(second, s)
	}

	assert.Len(t, first, 2)
	assert.Equal(t, first, second)
}

func TestSentences_EarlyBreak(t *testing.T) {
	var got []string
	for s := range Sentences("第一个足够长的候选句子。第二个足够长的候选句子。") {
		got = append(got, s)
		break
	}
	assert.Equal(t, []string{"第一个足够长的候选句子"}, got)
}
