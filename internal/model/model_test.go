package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsset_ValueScan(t *testing.T) {
	a := Asset{URL: "https://cdn.example/x.png", Key: "x.png", Name: "x"}
	v, err := a.Value()
	require.NoError(t, err)

	var got Asset
	require.NoError(t, got.Scan(v))
	assert.Equal(t, a, got)

	var fromBytes Asset
	require.NoError(t, fromBytes.Scan([]byte(`{"url":"u","key":"k"}`)))
	assert.Equal(t, "k", fromBytes.Key)

	assert.Error(t, got.Scan(42))
	assert.Equal(t, "", AssetKey(nil))
}

func TestEmptyListsStoreAsArrays(t *testing.T) {
	v, err := Strings(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = TechStack(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestRolePredicates(t *testing.T) {
	admin := &User{ID: "a", Role: RoleAdmin}
	user := &User{ID: "u", Role: RoleUser}

	assert.True(t, IsAdmin(admin))
	assert.False(t, IsAdmin(user))
	assert.False(t, IsAdmin(nil))

	assert.True(t, IsOwner(admin, "a"))
	assert.False(t, IsOwner(admin, "u"))
	assert.False(t, IsOwner(nil, "a"))
	assert.False(t, IsOwner(&User{}, ""))
}

func TestNormalizeImages(t *testing.T) {
	images := []ProjectImage{{ID: "a", Order: 4}, {ID: "b", Order: 9, IsCover: true}, {ID: "c", IsCover: true}}
	NormalizeImages(images)

	for i, img := range images {
		assert.Equal(t, i, img.Order)
	}
	assert.False(t, images[0].IsCover)
	assert.True(t, images[1].IsCover)
	assert.False(t, images[2].IsCover)

	none := []ProjectImage{{ID: "a"}, {ID: "b"}}
	NormalizeImages(none)
	assert.True(t, none[0].IsCover)

	NormalizeImages(nil)
}

func TestAboutAssetFields(t *testing.T) {
	a := &About{}
	asset := &Asset{Key: "k"}
	require.True(t, a.SetAssetField(AboutFieldHeroImage, asset))
	got, ok := a.AssetField(AboutFieldHeroImage)
	assert.True(t, ok)
	assert.Equal(t, asset, got)
	assert.Equal(t, []string{"k"}, a.AssetKeys())

	assert.False(t, a.SetAssetField("bogus", asset))
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	d := Day(time.Date(2026, 5, 6, 23, 59, 1, 5, loc))
	assert.Equal(t, time.Date(2026, 5, 6, 0, 0, 0, 0, loc), d)
}
