package course

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuessCategory(t *testing.T) {
	tests := []struct {
		label  string
		want   Category
		wantOk bool
	}{
		{label: "通识", want: General, wantOk: true},
		{label: "通修", want: PublicBasic, wantOk: true},
		{label: "平台", want: ProfessionalBasic, wantOk: true},
		{label: "核心", want: ProfessionalCore, wantOk: true},
		{label: "选修", want: General, wantOk: true},
		{label: "经典阅读"},
		{label: "专业核心"},
		{label: " 通识"},
		{label: ""},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := GuessCategory(tt.label)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCategory_Text(t *testing.T) {
	for _, c := range Categories {
		text, err := c.MarshalText()
		require.NoError(t, err)

		var got Category
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, c, got)

		require.NoError(t, got.UnmarshalText([]byte(c.Label())))
		assert.Equal(t, c, got)
	}

	var c Category
	assert.Error(t, c.UnmarshalText([]byte("lol")))
	assert.Error(t, c.UnmarshalText([]byte("42")))
	assert.NoError(t, c.UnmarshalText([]byte("7")))
	assert.Equal(t, ProfessionalCore, c)

	text, err := Category(42).MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "unknown", string(text))
	assert.False(t, Category(0).IsValid())
}

func TestCategory_JSON(t *testing.T) {
	data, err := json.Marshal(Course{Name: "Calculus", Category: MathsPhysicsBasic})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"category":"maths_physics_basic"`)

	var nc NewCourse
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Data Structures","category":"专业核心","term":3,"credit":4,"score":91}`), &nc))
	assert.Equal(t, ProfessionalCore, nc.Category)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Linear Algebra","category":6}`), &nc))
	assert.Equal(t, ProfessionalBasic, nc.Category)

	var uc UpdateCourse
	require.NoError(t, json.Unmarshal([]byte(`{"category":2}`), &uc))
	require.NotNil(t, uc.Category)
	assert.Equal(t, Reading, *uc.Category)

	for _, body := range []string{`{"category":9}`, `{"category":0}`, `{"category":1.5}`, `{"category":true}`, `{"category":"lol"}`} {
		assert.Error(t, json.Unmarshal([]byte(body), &nc), body)
	}
}

func TestCategory_Scan(t *testing.T) {
	var c Category
	require.NoError(t, c.Scan(int64(2)))
	assert.Equal(t, Reading, c)
	require.NoError(t, c.Scan([]byte("8")))
	assert.Equal(t, ProfessionalOptional, c)
	assert.Error(t, c.Scan(2.5))

	v, err := PublicOptional.Value()
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestCategorySets(t *testing.T) {
	for _, c := range []Category{MathsPhysicsBasic, ProfessionalBasic, ProfessionalCore, ProfessionalOptional} {
		assert.True(t, AcademicSet.Contains(c), c.String())
	}
	for _, c := range []Category{General, Reading, PublicOptional, PublicBasic} {
		assert.False(t, AcademicSet.Contains(c), c.String())
	}
	assert.True(t, PostgradRecommendationSet.Contains(ProfessionalCore))
	assert.False(t, PostgradRecommendationSet.Contains(ProfessionalOptional))
	assert.Len(t, CategoryInfos(), 8)
}
