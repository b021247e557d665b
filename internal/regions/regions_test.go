package regions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex() *Index {
	return NewIndex([]Region{
		{Code: "32", Name: "JAWA BARAT", Type: TypeProvinsi},
		{Code: "32.04", Name: "BANDUNG", Type: TypeKabupaten, ParentCode: "32"},
		{Code: "32.73", Name: "KOTA BANDUNG", Type: TypeKota, ParentCode: "32"},
		{Code: "32.73.14", Name: "SUMUR BANDUNG", Type: TypeKecamatan, ParentCode: "32.73"},
		{Code: "32.73.14.1001", Name: "BRAGA", Type: TypeKelurahan, ParentCode: "32.73.14"},
		{Code: "33", Name: "JAWA TENGAH", Type: TypeProvinsi},
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "kota bandung", Normalize("  KOTA   Bandung "))
	assert.Equal(t, "cafe", Normalize("Café"))
	assert.Equal(t, "", Normalize(" \t"))
}

func TestIsSubsequence(t *testing.T) {
	assert.True(t, isSubsequence("bdg", "bandung"))
	assert.True(t, isSubsequence("jw brt", "jawa barat"))
	assert.False(t, isSubsequence("gdb", "bandung"))
}

func TestSearch_Scoring(t *testing.T) {
	ix := testIndex()

	res := ix.Search("bandung", 10)
	require.Len(t, res, 4)

	// exact + prefix + substring + fuzzy + type weight
	assert.Equal(t, "32.04", res[0].Code)
	assert.Equal(t, 100+50+30+10+15, res[0].Score)
	// "kota bandung" strips to "bandung", so it is an exact match as well
	assert.Equal(t, "32.73", res[1].Code)
	assert.Equal(t, res[0].Score, res[1].Score)
	assert.Equal(t, "32.73.14", res[2].Code)
	assert.Equal(t, 30+10+10, res[2].Score)
	// braga is indexed with its parents' names
	assert.Equal(t, "32.73.14.1001", res[3].Code)
	assert.Equal(t, 30+10+5, res[3].Score)
	assert.Equal(t, []string{"SUMUR BANDUNG", "KOTA BANDUNG", "JAWA BARAT"}, res[3].Path)
}

func TestSearch_FuzzyAndCode(t *testing.T) {
	ix := testIndex()

	res := ix.Search("jw brt", 10)
	require.NotEmpty(t, res)
	assert.Equal(t, "32", res[0].Code)
	assert.Equal(t, 10+20, res[0].Score)

	res = ix.Search("32.73", 10)
	require.Len(t, res, 3)
	for _, r := range res {
		assert.Contains(t, r.Code, "32.73")
	}
	assert.Equal(t, "32.73", res[0].Code)
}

func TestSearch_EdgeCases(t *testing.T) {
	ix := testIndex()

	assert.Empty(t, ix.Search("", 10))
	assert.Empty(t, ix.Search("   ", 10))

	// single rune: only prefix/exact/code count, so "a" inside "jawa" is ignored
	res := ix.Search("b", 10)
	codes := make([]string, 0, len(res))
	for _, r := range res {
		codes = append(codes, r.Code)
	}
	assert.ElementsMatch(t, []string{"32.04", "32.73", "32.73.14.1001"}, codes)

	assert.Len(t, ix.Search("b", 1), 1)

	// parents are part of the index, so children of jawa barat match too
	res = ix.Search("jawa", 0)
	require.Len(t, res, 6)
	assert.Equal(t, TypeProvinsi, res[0].Type)
	assert.Equal(t, TypeProvinsi, res[1].Type)
}

func TestSearch_LimitCapped(t *testing.T) {
	list := make([]Region, 0, 80)
	for i := 0; i < 80; i++ {
		list = append(list, Region{Code: "99", Name: "DESA MAJU", Type: TypeDesa})
	}
	assert.Len(t, NewIndex(list).Search("maju", 500), MaxLimit)
}

func TestLoad(t *testing.T) {
	ix, err := Load("")
	require.NoError(t, err)
	assert.Greater(t, ix.Len(), 100)

	res := ix.Search("menteng", 5)
	require.NotEmpty(t, res)
	assert.Equal(t, "MENTENG", res[0].Name)

	path := filepath.Join(t.TempDir(), "regions.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"code":"1","name":"X","type":"provinsi"}]`), 0o600))
	ix, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
