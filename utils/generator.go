package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mwangikibui/cert_track/models"
	"gorm.io/gorm"
)

const certificateSuffixLength = 8
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCertificateNumber returns a number like CT-2026-9X4KQ2BF that is
// unique among issued certificates.
func GenerateCertificateNumber(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, certificateSuffixLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		number := fmt.Sprintf("CT-%d-%s", time.Now().Year(), string(b))

		var cert models.Certificate
		err := tx.Where("number = ?", number).First(&cert).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return number, nil
			}
			return "", err
		}
	}
}
