package domain

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
)

var internalCodePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

func TestGenerateInternalCode_FirstFree(t *testing.T) {
	calls := 0
	code, err := GenerateInternalCode(context.Background(), func(ctx context.Context, code string) (bool, error) {
		calls++
		return false, nil
	})

	require.NoError(t, err)
	assert.Regexp(t, internalCodePattern, code)
	assert.Equal(t, 1, calls)
}

func TestGenerateInternalCode_RetriesTakenCodes(t *testing.T) {
	calls := 0
	code, err := GenerateInternalCode(context.Background(), func(ctx context.Context, code string) (bool, error) {
		calls++
		return calls < 4, nil
	})

	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.Equal(t, 4, calls)
}

func TestGenerateInternalCode_Exhausted(t *testing.T) {
	calls := 0
	_, err := GenerateInternalCode(context.Background(), func(ctx context.Context, code string) (bool, error) {
		calls++
		return true, nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCodeGeneration)
	assert.Equal(t, InternalCodeAttempts, calls)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CODE_GENERATION_EXHAUSTED", appErr.Code)
}

func TestGenerateInternalCode_LookupError(t *testing.T) {
	boom := errors.New("store down")
	_, err := GenerateInternalCode(context.Background(), func(ctx context.Context, code string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestNormalizeBarcodes(t *testing.T) {
	got := NormalizeBarcodes([]string{" A123 ", "B456", "", "A123", "  ", "C789", "B456"})
	assert.Equal(t, []string{"A123", "B456", "C789"}, got)

	assert.NotNil(t, NormalizeBarcodes(nil))
	assert.Empty(t, NormalizeBarcodes(nil))
}

func TestValidatePrincipalBarcode(t *testing.T) {
	assert.NoError(t, ValidatePrincipalBarcode("", nil))
	assert.NoError(t, ValidatePrincipalBarcode("A123", []string{"B456", "A123"}))

	err := ValidatePrincipalBarcode("Z999", []string{"A123"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_PRINCIPAL_BARCODE", appErr.Code)
}

func TestAssertBarcodesUnique(t *testing.T) {
	owners := map[string]string{"A123": "p1"}
	lookup := func(ctx context.Context, barcode string) (string, bool, error) {
		id, ok := owners[barcode]
		return id, ok, nil
	}
	ctx := context.Background()

	assert.NoError(t, AssertBarcodesUnique(ctx, "", []string{"B456"}, lookup))
	assert.NoError(t, AssertBarcodesUnique(ctx, "p1", []string{"A123", "B456"}, lookup))

	err := AssertBarcodesUnique(ctx, "p2", []string{"B456", "A123"}, lookup)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateBarcode)

	err = AssertBarcodesUnique(ctx, "", []string{"A123"}, lookup)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateBarcode)
}

func TestNextSlug(t *testing.T) {
	assert.Equal(t, "vinilos-textiles", NextSlug("", "", "Vinilos Textiles"))
	assert.Equal(t, "custom", NextSlug("custom", "Vinilos", "Vinilos"))
	assert.Equal(t, "telas-nino", NextSlug("vinilos", "Vinilos", "Telas Niño"))
}
