package domain

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
	"github.com/maticamisay/eldisco-ecommerce/pkg/slug"
)

// Internal code generation parameters.
const (
	InternalCodeAttempts = 5
	InternalCodeLength   = 8
	internalCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// CodeExistsFunc reports whether an internal code is already taken.
type CodeExistsFunc func(ctx context.Context, code string) (bool, error)

// BarcodeOwnerFunc returns the id of the product owning barcode, if any.
type BarcodeOwnerFunc func(ctx context.Context, barcode string) (productID string, found bool, err error)

// GenerateInternalCode draws random codes until exists reports a free one,
// giving up after InternalCodeAttempts draws.
func GenerateInternalCode(ctx context.Context, exists CodeExistsFunc) (string, error) {
	for attempt := 0; attempt < InternalCodeAttempts; attempt++ {
		code, err := randomCode(InternalCodeLength)
		if err != nil {
			return "", fmt.Errorf("draw internal code: %w", err)
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check internal code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", apperrors.CodeGenerationExhausted(InternalCodeAttempts)
}

func randomCode(n int) (string, error) {
	size := big.NewInt(int64(len(internalCodeAlphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b.WriteByte(internalCodeAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

// NormalizeBarcodes trims every barcode, drops blanks and removes duplicates
// keeping the first occurrence. The result is never nil.
func NormalizeBarcodes(barcodes []string) []string {
	out := make([]string, 0, len(barcodes))
	seen := make(map[string]struct{}, len(barcodes))
	for _, b := range barcodes {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		if _, dup := seen[b]; dup {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}

// ValidatePrincipalBarcode checks that a set principal barcode is one of the
// product's barcodes.
func ValidatePrincipalBarcode(principal string, barcodes []string) error {
	if principal == "" {
		return nil
	}
	for _, b := range barcodes {
		if b == principal {
			return nil
		}
	}
	return &apperrors.AppError{
		Code:    "INVALID_PRINCIPAL_BARCODE",
		Message: fmt.Sprintf("principal barcode %q is not one of the product barcodes", principal),
		Status:  http.StatusBadRequest,
		Err:     apperrors.ErrInvalidInput,
	}
}

// AssertBarcodesUnique fails with DUPLICATE_BARCODE when any barcode belongs
// to a product other than productID. productID is empty for new products.
// The store's unique constraint remains authoritative.
func AssertBarcodesUnique(ctx context.Context, productID string, barcodes []string, lookup BarcodeOwnerFunc) error {
	for _, b := range barcodes {
		owner, found, err := lookup(ctx, b)
		if err != nil {
			return fmt.Errorf("look up barcode %q: %w", b, err)
		}
		if found && owner != productID {
			return apperrors.DuplicateBarcode(b)
		}
	}
	return nil
}

// NextSlug returns the slug to persist after a name change. The slug is
// derived again when the name changed or no slug exists yet.
func NextSlug(currentSlug, previousName, name string) string {
	if currentSlug == "" || previousName != name {
		return slug.Generate(name)
	}
	return currentSlug
}
