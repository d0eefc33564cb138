package mongo

import (
	"errors"
	"regexp"
	"strings"

	mongodriver "go.mongodb.org/mongo-driver/mongo"

	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
)

var dupBarcodeRegexp = regexp.MustCompile(`codigosBarras: "([^"]*)"`)

// uniqueKey names a uniquely indexed field and the value being written.
type uniqueKey struct {
	key   string
	field string
	value string
}

// mapWriteError translates duplicate-key violations into domain errors.
func mapWriteError(err error, resource string, keys ...uniqueKey) error {
	if err == nil || !mongodriver.IsDuplicateKeyError(err) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "codigosBarras") {
		barcode := ""
		if m := dupBarcodeRegexp.FindStringSubmatch(msg); m != nil {
			barcode = m[1]
		}
		return apperrors.DuplicateBarcode(barcode)
	}
	for _, k := range keys {
		if strings.Contains(msg, k.key) {
			return apperrors.AlreadyExists(resource, k.field, k.value)
		}
	}
	return apperrors.Wrap(apperrors.ErrAlreadyExists, resource)
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongodriver.ErrNoDocuments)
}
