package ersa

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/TheusHen/ersa/ersa/adapter"
	"github.com/TheusHen/ersa/ersa/keycodec"
)

// Config is the immutable state of an RSA facade. It is copied by New.
type Config struct {
	// PublicKey and PrivateKey are used whenever a call passes an empty key.
	PublicKey  string
	PrivateKey string
	// ModulusLength is the default key size for CreateKeyPair. Zero selects
	// 2048; anything else must be at least 512.
	ModulusLength int
	// Adapter performs the RSA operations. Nil selects adapter.NewNative().
	Adapter adapter.Adapter
	// Logger receives one debug entry per call. Nil discards.
	Logger logrus.FieldLogger
}

// Validate reports every problem with the configuration at once.
// Default keys are only checked for their armor lines, like the
// keycodec validity helpers.
func (c Config) Validate() error {
	var result *multierror.Error

	if c.ModulusLength != 0 && c.ModulusLength < adapter.MinModulusLength {
		result = multierror.Append(result, fmt.Errorf("%w: %d is below %d bits", adapter.ErrInvalidModulusLength, c.ModulusLength, adapter.MinModulusLength))
	}
	if c.PublicKey != "" && !hasArmor(c.PublicKey) {
		result = multierror.Append(result, fmt.Errorf("%w: default public key is not PEM", keycodec.ErrInvalidKeyFormat))
	}
	if c.PrivateKey != "" && !hasArmor(c.PrivateKey) {
		result = multierror.Append(result, fmt.Errorf("%w: default private key is not PEM", keycodec.ErrInvalidKeyFormat))
	}

	return result.ErrorOrNil()
}

// hasArmor accepts any BEGIN/END pair so PKCS#1 defaults work with the
// native adapter.
func hasArmor(key string) bool {
	return strings.Contains(key, "-----BEGIN ") && strings.Contains(key, "-----END ")
}

func (c Config) withDefaults() Config {
	if c.ModulusLength == 0 {
		c.ModulusLength = adapter.DefaultModulusLength
	}
	if c.Adapter == nil {
		c.Adapter = adapter.NewNative()
	}
	if c.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.Logger = l
	}
	return c
}
