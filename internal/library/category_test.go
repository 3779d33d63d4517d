package library

import (
	"testing"

	"github.com/stretchr/testify/require"

	gderr "github.com/gdasset/gdasset/internal/errors"
)

func TestFindCategoryID(t *testing.T) {
	cases := []struct {
		designator string
		want       int
	}{
		{"Addons/Misc", 7},
		{"a/2d", 1},
		{"a/2D Tools", 1},
		{"proj", 9},
		{"addons_shaders", 3},
		{"p/dem", 10},
	}
	for _, c := range cases {
		id, err := FindCategoryID(c.designator)
		require.NoError(t, err, "designator %q", c.designator)
		require.Equal(t, c.want, id, "designator %q", c.designator)
	}
}

func TestFindCategoryIDAmbiguous(t *testing.T) {
	_, err := FindCategoryID("t")
	require.Error(t, err)
	require.True(t, gderr.IsCategory(err, gderr.CategoryValidation))
	require.Contains(t, err.Error(), "ambiguous")
}

func TestFindCategoryIDNoMatch(t *testing.T) {
	_, err := FindCategoryID("zzz")
	require.Error(t, err)
	require.True(t, gderr.IsCategory(err, gderr.CategoryValidation))
}

func TestCategoryName(t *testing.T) {
	require.Equal(t, "Addons/Misc", CategoryName(7))
	require.Equal(t, "Projects/Demos", CategoryName(10))
	require.Empty(t, CategoryName(99))
}

func TestResolveCategory(t *testing.T) {
	id, err := ResolveCategory("5")
	require.NoError(t, err)
	require.Equal(t, 5, id)

	id, err = ResolveCategory("Addons/Tools")
	require.NoError(t, err)
	require.Equal(t, 5, id)

	_, err = ResolveCategory("99")
	require.Error(t, err)
}

func TestGuessAssetID(t *testing.T) {
	id, err := GuessAssetID("3133")
	require.NoError(t, err)
	require.Equal(t, 3133, id)

	id, err = GuessAssetID("https://godotengine.org/asset-library/asset/3133")
	require.NoError(t, err)
	require.Equal(t, 3133, id)

	for _, bad := range []string{
		"",
		"abc",
		"-5",
		"https://godotengine.org/asset-library/asset/3133/edit",
		"https://godotengine.org/asset-library/asset",
		"https://example.org/asset-library/asset/3133",
	} {
		_, err := GuessAssetID(bad)
		require.Error(t, err, "input %q", bad)
	}
}
