package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("a@x.com"))
	assert.NoError(t, Email("joao.silva+tag@empresa.com.br"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("not-an-email"))
	assert.Error(t, Email("a@b"))
}

func TestTaxIDCPF(t *testing.T) {
	assert.NoError(t, TaxID("529.982.247-25"))
	assert.NoError(t, TaxID("52998224725"))
	// Wrong check digit.
	assert.Error(t, TaxID("52998224724"))
	// Repeated digits pass the arithmetic but are rejected.
	assert.Error(t, TaxID("11111111111"))
	assert.Error(t, TaxID("123"))
	assert.Error(t, TaxID(""))
}

func TestTaxIDCNPJ(t *testing.T) {
	assert.NoError(t, TaxID("11.222.333/0001-81"))
	assert.NoError(t, TaxID("11222333000181"))
	assert.Error(t, TaxID("11222333000182"))
	assert.Error(t, TaxID("00000000000000"))
}

func TestProductCode(t *testing.T) {
	assert.NoError(t, ProductCode("A1"))
	assert.Error(t, ProductCode(""))
	assert.Error(t, ProductCode("   "))
	assert.Error(t, ProductCode("A 1"))
}

func TestName(t *testing.T) {
	assert.NoError(t, Name("João Silva"))
	assert.Error(t, Name("  "))
}
