package suppliers_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/constants"
	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/suppliers"
)

func TestDefaultRegistry(t *testing.T) {
	reg, err := suppliers.Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"ls", "supplier1", "alloy"}, reg.Keys())
	assert.Equal(t, suppliers.StrategyPriority, reg.MergeStrategy())
	assert.Equal(t, []catalogs.Field{catalogs.FieldSupplierCode, catalogs.FieldName}, reg.RequiredFields())

	alloy, err := reg.Get("alloy")
	require.NoError(t, err)
	assert.Equal(t, 3, alloy.Priority)
	assert.Equal(t, "alloy_products", alloy.Staging)
	target, ok := alloy.Target("PriceCostEx")
	require.True(t, ok)
	assert.Equal(t, catalogs.FieldCostPrice, target)
	target, ok = alloy.Target("Depth")
	require.True(t, ok)
	assert.Equal(t, catalogs.FieldLength, target)
}

func TestRegistryGetUnknown(t *testing.T) {
	reg, err := suppliers.NewRegistry(nil)
	require.NoError(t, err)

	_, err = reg.Get("acme")
	require.Error(t, err)
	assert.True(t, errors.IsUnknownSupplier(err))
	assert.True(t, errors.IsConfig(err))
	assert.False(t, reg.Has("acme"))
}

func TestRegistryEnabledOrder(t *testing.T) {
	reg, err := suppliers.NewRegistry([]suppliers.Config{
		{Key: "c", Enabled: true, Priority: 2},
		{Key: "a", Enabled: true},
		{Key: "off", Enabled: false, Priority: 1},
		{Key: "b", Enabled: true, Priority: 2},
		{Key: "first", Enabled: true, Priority: 1},
	})
	require.NoError(t, err)

	var keys []string
	for _, s := range reg.Enabled() {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, []string{"first", "c", "b", "a"}, keys)

	a, err := reg.Get("a")
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultPriority, a.Priority)
	assert.Equal(t, "a", a.Name)
}

func TestRegistryImmutable(t *testing.T) {
	cfg := suppliers.Config{
		Key:      "ls",
		Enabled:  true,
		Mappings: map[string]catalogs.Field{"STOCK CODE": catalogs.FieldSupplierCode},
	}
	reg, err := suppliers.NewRegistry([]suppliers.Config{cfg})
	require.NoError(t, err)

	cfg.Mappings["NAME"] = catalogs.FieldName
	got, err := reg.Get("ls")
	require.NoError(t, err)
	assert.Len(t, got.Mappings, 1)

	got.Mappings["OTHER"] = catalogs.FieldName
	again, err := reg.Get("ls")
	require.NoError(t, err)
	assert.Len(t, again.Mappings, 1)
}

func TestRegistryValidation(t *testing.T) {
	tests := []struct {
		name string
		cfgs []suppliers.Config
		opts []suppliers.Option
		want string
	}{
		{
			name: "empty key",
			cfgs: []suppliers.Config{{Key: " "}},
			want: "supplier key is empty",
		},
		{
			name: "duplicate key",
			cfgs: []suppliers.Config{{Key: "ls"}, {Key: "ls"}},
			want: `duplicate supplier key "ls"`,
		},
		{
			name: "negative priority",
			cfgs: []suppliers.Config{{Key: "ls", Priority: -1}},
			want: "priority must be positive",
		},
		{
			name: "unknown canonical field",
			cfgs: []suppliers.Config{{Key: "ls", Mappings: map[string]catalogs.Field{"COLOUR": "colour"}}},
			want: `unknown canonical field "colour"`,
		},
		{
			name: "unknown strategy",
			opts: []suppliers.Option{suppliers.WithMergeStrategy("random")},
			want: `unknown merge strategy "random"`,
		},
		{
			name: "unknown required field",
			opts: []suppliers.Option{suppliers.WithRequiredFields("colour")},
			want: `required field "colour"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := suppliers.NewRegistry(tt.cfgs, tt.opts...)
			require.Error(t, err)
			assert.True(t, errors.IsConfig(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
merge_strategy: newest
required_fields: [supplier_code]
suppliers:
  zeta:
    name: Zeta
    staging: zeta_rows
    mappings:
      Code: supplier_code
  alpha:
    enabled: false
    priority: 4
    staging: alpha_rows
`)
	reg, err := suppliers.Parse(data, "inline.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha"}, reg.Keys())
	assert.Equal(t, suppliers.StrategyNewest, reg.MergeStrategy())
	assert.Equal(t, []catalogs.Field{catalogs.FieldSupplierCode}, reg.RequiredFields())

	zeta, err := reg.Get("zeta")
	require.NoError(t, err)
	assert.True(t, zeta.Enabled)
	assert.Equal(t, constants.DefaultPriority, zeta.Priority)
	assert.Equal(t, []string{"Code"}, zeta.SupplierFields())

	alpha, err := reg.Get("alpha")
	require.NoError(t, err)
	assert.False(t, alpha.Enabled)
	assert.Len(t, reg.Enabled(), 1)
}

func TestParseErrors(t *testing.T) {
	t.Run("zero priority", func(t *testing.T) {
		_, err := suppliers.Parse([]byte("suppliers:\n  ls:\n    priority: 0\n"), "bad.yaml")
		require.Error(t, err)
		assert.True(t, errors.IsConfig(err))
		assert.Contains(t, err.Error(), "positive")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := suppliers.Parse([]byte("suppliers: [unterminated"), "bad.yaml")
		require.Error(t, err)
		assert.True(t, errors.IsConfig(err))
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suppliers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("suppliers:\n  ls:\n    staging: ls_rows\n"), 0o644))

	reg, err := suppliers.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	_, err = suppliers.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
