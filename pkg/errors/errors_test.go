package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/supplymap/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestUnknownSupplierError(t *testing.T) {
	err := pkgerrors.NewUnknownSupplierError("acme")
	assert.Equal(t, `unknown supplier "acme"`, err.Error())
	assert.True(t, pkgerrors.IsUnknownSupplier(err))
	assert.True(t, pkgerrors.IsConfig(err))
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.False(t, pkgerrors.IsSoft(err))
	assert.False(t, pkgerrors.IsHard(err))

	wrapped := fmt.Errorf("import: %w", err)
	var target *pkgerrors.UnknownSupplierError
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "acme", target.Key)
}

func TestConfigError(t *testing.T) {
	t.Run("with component", func(t *testing.T) {
		err := pkgerrors.NewConfigError("registry", "duplicate supplier key", nil)
		assert.Equal(t, "configuration error in registry: duplicate supplier key", err.Error())
		assert.True(t, pkgerrors.IsConfig(err))
	})

	t.Run("without component", func(t *testing.T) {
		err := &pkgerrors.ConfigError{Message: "missing staging"}
		assert.Equal(t, "configuration error: missing staging", err.Error())
	})

	t.Run("unwrap", func(t *testing.T) {
		base := errors.New("boom")
		err := pkgerrors.NewConfigError("strategy", "unsupported", base)
		assert.Equal(t, base, err.Unwrap())
		assert.True(t, errors.Is(err, base))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Identity: "P1", Field: "name", Message: "required field is empty"}
		assert.Equal(t, "validation failed for P1 on field name: required field is empty", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
		assert.True(t, pkgerrors.IsSoft(err))
	})

	t.Run("message only", func(t *testing.T) {
		err := pkgerrors.NewValidationError("", nil, "bad")
		assert.Equal(t, "validation failed: bad", err.Error())
	})

	t.Run("carries value", func(t *testing.T) {
		rec := map[string]string{"supplier_code": "P1"}
		err := pkgerrors.NewValidationError("name", rec, "required field is empty")
		assert.Equal(t, rec, err.Value)
	})
}

func TestSoftErrors(t *testing.T) {
	soft := []error{
		pkgerrors.NewIdentityError("ls", 3),
		&pkgerrors.DuplicateError{Supplier: "ls", Identity: "X1"},
		pkgerrors.NewMalformedRowError(4, "expected %d columns, got %d", 3, 2),
		&pkgerrors.SupplierUnavailableError{Supplier: "alloy", Err: errors.New("table missing")},
		pkgerrors.NewMergeError("X1", []string{"ls"}, errors.New("panic")),
	}
	for _, err := range soft {
		t.Run(err.Error(), func(t *testing.T) {
			assert.True(t, pkgerrors.IsSoft(err))
			assert.False(t, pkgerrors.IsHard(err))
			assert.False(t, pkgerrors.IsConfig(err))
		})
	}
}

func TestIdentityError(t *testing.T) {
	assert.Equal(t, "supplier ls row 3: no identifying field", pkgerrors.NewIdentityError("ls", 3).Error())
	assert.Equal(t, "supplier ls: record has no identifying field", pkgerrors.NewIdentityError("ls", 0).Error())
	assert.True(t, errors.Is(pkgerrors.NewIdentityError("ls", 0), pkgerrors.ErrNoIdentity))
}

func TestStoreError(t *testing.T) {
	t.Run("formats", func(t *testing.T) {
		base := errors.New("connection reset")
		assert.Equal(t, "store upsert products[P1]: connection reset",
			pkgerrors.NewStoreError("upsert", "products", "P1", base).Error())
		assert.Equal(t, "store load alloy_products: connection reset",
			pkgerrors.NewStoreError("load", "alloy_products", "", base).Error())
		assert.Equal(t, "store begin: connection reset",
			pkgerrors.NewStoreError("begin", "", "", base).Error())
	})

	t.Run("hard", func(t *testing.T) {
		err := pkgerrors.NewStoreError("upsert", "products", "P1", pkgerrors.ErrConstraint)
		assert.True(t, pkgerrors.IsHard(err))
		assert.False(t, pkgerrors.IsSoft(err))
		assert.True(t, errors.Is(err, pkgerrors.ErrConstraint))
	})

	t.Run("wrap keeps existing store error", func(t *testing.T) {
		inner := pkgerrors.NewStoreError("upsert", "products", "P1", pkgerrors.ErrConstraint)
		assert.Same(t, inner, pkgerrors.WrapStore("commit", "", "", inner))
		assert.Nil(t, pkgerrors.WrapStore("commit", "", "", nil))
	})

	t.Run("unavailable sentinel is hard", func(t *testing.T) {
		assert.True(t, pkgerrors.IsHard(fmt.Errorf("dial: %w", pkgerrors.ErrStoreUnavailable)))
	})
}

func TestParseAndIOErrors(t *testing.T) {
	base := errors.New("unexpected EOF")

	pe := pkgerrors.NewParseError("yaml", "suppliers.yaml", "bad indent", base)
	assert.Equal(t, "parse error in yaml file suppliers.yaml: bad indent", pe.Error())
	assert.Equal(t, base, pe.Unwrap())
	pe.Line, pe.Column = 3, 7
	assert.Equal(t, "parse error in yaml at suppliers.yaml:3:7: bad indent", pe.Error())

	ioe := pkgerrors.NewIOError("read", "feed.csv", base)
	assert.Equal(t, "IO error during read of feed.csv: unexpected EOF", ioe.Error())
	assert.Nil(t, pkgerrors.WrapIO("read", "feed.csv", nil))
	assert.Nil(t, pkgerrors.WrapParse("json", "feed.json", nil))
}

func TestSoftNil(t *testing.T) {
	assert.False(t, pkgerrors.IsSoft(nil))
	assert.False(t, pkgerrors.IsHard(nil))
}
